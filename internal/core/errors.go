package core

import (
	"errors"
	"fmt"
)

// Error codes for the nudge error taxonomy.
const (
	ErrCodeTransient        = "transient_external"
	ErrCodeAlreadySatisfied = "already_satisfied"
	ErrCodeMalformedInput   = "malformed_input"
	ErrCodeConfiguration    = "configuration_error"
)

// NudgeError is the error type used across the service. Every failure from
// the chat platform or from input parsing is classified into one of the
// codes above so call sites can decide between retry, skip and fail.
type NudgeError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`

	cause error
}

func (e *NudgeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *NudgeError) Unwrap() error {
	return e.cause
}

// NewTransientError wraps a retryable external failure (rate limit, timeout).
func NewTransientError(message string, cause error) *NudgeError {
	return &NudgeError{
		Code:      ErrCodeTransient,
		Message:   message,
		Retryable: true,
		cause:     cause,
	}
}

// NewAlreadySatisfiedError marks an operation whose desired outcome already
// holds (already_reacted, delete of an already-delivered message). Callers
// treat it as success; it doubles as the idempotency signal.
func NewAlreadySatisfiedError(message string, cause error) *NudgeError {
	return &NudgeError{
		Code:    ErrCodeAlreadySatisfied,
		Message: message,
		cause:   cause,
	}
}

// NewMalformedInputError marks unparseable input (bad marker, unrecognized
// subject URL). Never fatal to a batch; skipped and logged.
func NewMalformedInputError(message string, details map[string]any) *NudgeError {
	return &NudgeError{
		Code:    ErrCodeMalformedInput,
		Message: message,
		Details: details,
	}
}

// NewConfigError marks invalid startup configuration. Fatal.
func NewConfigError(message string, details map[string]any) *NudgeError {
	return &NudgeError{
		Code:    ErrCodeConfiguration,
		Message: message,
		Details: details,
	}
}

func codeOf(err error) string {
	var ne *NudgeError
	if errors.As(err, &ne) {
		return ne.Code
	}
	return ""
}

// IsTransient reports whether err is a retryable external failure.
func IsTransient(err error) bool {
	return codeOf(err) == ErrCodeTransient
}

// IsAlreadySatisfied reports whether err means the desired state already
// holds and the operation should be treated as a success.
func IsAlreadySatisfied(err error) bool {
	return codeOf(err) == ErrCodeAlreadySatisfied
}

// IsMalformedInput reports whether err is an input parse failure.
func IsMalformedInput(err error) bool {
	return codeOf(err) == ErrCodeMalformedInput
}
