package server

import (
	"os"
	"strconv"
	"time"

	"github.com/prnudge/prnudge/internal/core"
	"github.com/prnudge/prnudge/internal/reminder"
)

// Config holds server configuration from environment variables.
type Config struct {
	Port     string
	GRPCPort string

	SlackBotToken      string
	SlackSigningSecret string

	// ChannelID scopes the daily top-up listing.
	ChannelID string

	WindowSize            int
	ReminderIntervalHours int
	BusinessHoursStart    int
	BusinessHoursEnd      int
	Timezone              string
	ReminderText          string
	ApprovalEmoji         string

	// TopUpCron is the cron expression for the rolling-window top-up tick.
	TopUpCron string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoadConfig reads configuration from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		Port:     getEnv("PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "9090"),

		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		ChannelID:          os.Getenv("CHANNEL_ID"),

		WindowSize:            getEnvInt("WINDOW_SIZE", 2),
		ReminderIntervalHours: getEnvInt("REMINDER_INTERVAL_HOURS", 3),
		BusinessHoursStart:    getEnvInt("BUSINESS_HOURS_START", 9),
		BusinessHoursEnd:      getEnvInt("BUSINESS_HOURS_END", 17),
		Timezone:              getEnv("TIMEZONE", "Australia/Melbourne"),
		ReminderText:          getEnv("REMINDER_TEXT", reminder.DefaultTemplate),
		ApprovalEmoji:         getEnv("APPROVAL_EMOJI", reminder.DefaultApprovalEmoji),

		// Weekday mornings before business hours open.
		TopUpCron: getEnv("TOPUP_CRON", "0 7 * * 1-5"),

		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// Validate checks the parts of the configuration that can be rejected
// before any external call is made. Calendar bounds are validated again,
// with the same taxonomy, when the calendar itself is constructed.
func (c Config) Validate() error {
	if c.WindowSize < 1 {
		return core.NewConfigError("WINDOW_SIZE must be at least 1 business day", map[string]any{"window_size": c.WindowSize})
	}
	if c.ReminderIntervalHours < 1 {
		return core.NewConfigError("REMINDER_INTERVAL_HOURS must be at least 1", map[string]any{"interval_hours": c.ReminderIntervalHours})
	}
	if c.BusinessHoursStart < 0 || c.BusinessHoursEnd <= c.BusinessHoursStart || c.BusinessHoursEnd > 24 {
		return core.NewConfigError("business hours must satisfy 0 <= start < end <= 24", map[string]any{
			"start": c.BusinessHoursStart,
			"end":   c.BusinessHoursEnd,
		})
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
