package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HerbHall/themeforge/pkg/theme"
)

// statusError represents an HTTP error response from the completion API.
type statusError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("engine: %d %s: %s", e.StatusCode, e.Type, e.Message)
}

// mapError translates transport and API errors into typed theme.ServiceError
// values so the orchestrator can classify retryability without string
// sniffing.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return theme.NewServiceError(theme.ErrCodeTimeout, "request timed out or cancelled", err)
	}

	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == 401:
			return theme.NewServiceError(theme.ErrCodeAuthentication, "invalid api key", err)
		case se.StatusCode == 403:
			return theme.NewServiceError(theme.ErrCodeAuthentication, "forbidden", err)
		case se.StatusCode == 429:
			return theme.NewServiceError(theme.ErrCodeRateLimit, se.Message, err)
		case se.StatusCode >= 500:
			return theme.NewServiceError(theme.ErrCodeServerError, se.Message, err)
		case se.StatusCode >= 400:
			return theme.NewServiceError(theme.ErrCodeInvalidRequest, se.Message, err)
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return theme.NewServiceError(theme.ErrCodeServerError, "ai service unreachable", err)
	}

	return theme.NewServiceError(theme.ErrCodeServerError, "ai service error", err)
}
