package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/prnudge/prnudge/internal/api"
	"github.com/prnudge/prnudge/internal/calendar"
	"github.com/prnudge/prnudge/internal/core"
	"github.com/prnudge/prnudge/internal/metrics"
	"github.com/prnudge/prnudge/internal/reminder"
	"github.com/prnudge/prnudge/internal/scheduler"
	"github.com/prnudge/prnudge/internal/server"
	"github.com/prnudge/prnudge/internal/slackclient"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := server.LoadConfig()
	if cfg.SlackBotToken == "" || cfg.SlackSigningSecret == "" {
		slog.Error("refusing to start without Slack credentials", "hint", "set SLACK_BOT_TOKEN and SLACK_SIGNING_SECRET")
		os.Exit(1)
	}
	if cfg.ChannelID == "" {
		slog.Warn("CHANNEL_ID not set; the daily top-up tick has no channel to scan and will no-op")
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cal, err := calendar.New(cfg.Timezone, cfg.BusinessHoursStart, cfg.BusinessHoursEnd, nil)
	if err != nil {
		slog.Error("invalid business calendar", "error", err)
		os.Exit(1)
	}

	metrics.Init(core.Version)

	chat := slackclient.New(cfg.SlackBotToken)
	orch := reminder.NewOrchestrator(chat, cal, reminder.Options{
		Channel:       cfg.ChannelID,
		IntervalHours: cfg.ReminderIntervalHours,
		WindowDays:    cfg.WindowSize,
		Template:      cfg.ReminderText,
		ApprovalEmoji: cfg.ApprovalEmoji,
	}, nil)

	// Rolling-window top-up on a cron cadence.
	tick, err := scheduler.New(cfg.TopUpCron, func(ctx context.Context) error {
		if cfg.ChannelID == "" {
			return nil
		}
		return orch.HandleTick(ctx)
	})
	if err != nil {
		slog.Error("invalid top-up cron expression", "error", err)
		os.Exit(1)
	}
	tick.Start()
	defer tick.Stop()

	webhook := api.NewHandler(orch, cfg.SlackSigningSecret, orch.ApprovalEmoji())
	router := server.NewRouter(webhook)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		slog.Info("prnudge server listening", "port", cfg.Port, "version", core.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// gRPC health server for host-platform probes.
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("prnudge", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			slog.Error("failed to listen for gRPC", "port", cfg.GRPCPort, "error", err)
			os.Exit(1)
		}
		slog.Info("prnudge gRPC health listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	tick.Stop()
	grpcServer.GracefulStop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
