package generator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrNoBackend means no provider is configured.
	ErrNoBackend = errors.New("no response generation backend configured")
	// ErrEmptyResponse means the provider returned no usable text.
	ErrEmptyResponse = errors.New("empty response from backend")
)

// ErrorType classifies backend failures for logs and metrics.
type ErrorType string

const (
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeTimeout   ErrorType = "timeout"
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error is a classified backend failure.
type Error struct {
	Type  ErrorType
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Type, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Classify wraps err in an *Error with its best-guess type.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Type: ErrorTypeTimeout, Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Type: ErrorTypeTimeout, Cause: err}
		}
		return &Error{Type: ErrorTypeNetwork, Cause: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "authentication"):
		return &Error{Type: ErrorTypeAuth, Cause: err}
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") || strings.Contains(msg, "too many requests"):
		return &Error{Type: ErrorTypeRateLimit, Cause: err}
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return &Error{Type: ErrorTypeTimeout, Cause: err}
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") || strings.Contains(msg, "504") || strings.Contains(msg, "overloaded"):
		return &Error{Type: ErrorTypeServer, Cause: err}
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "connection reset"):
		return &Error{Type: ErrorTypeNetwork, Cause: err}
	default:
		return &Error{Type: ErrorTypeUnknown, Cause: err}
	}
}
