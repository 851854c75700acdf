package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

var (
	// ErrNoCredential is returned when no API key is configured for the provider.
	ErrNoCredential = errors.New("llm: no credential configured")
	// ErrEmptyResponse is returned when the backend answers with no text.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// BackendError wraps every failure that crosses the gateway boundary.
type BackendError struct {
	Provider string
	Op       string
	Err      error
}

func (e *BackendError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s backend: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s backend (%s): %v", e.Provider, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// statusCode extracts the HTTP status from either provider's API error.
func statusCode(err error) int {
	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		return oaiErr.StatusCode
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return antErr.StatusCode
	}
	return 0
}

// IsRateLimited reports whether err is a provider 429.
func IsRateLimited(err error) bool {
	return statusCode(err) == http.StatusTooManyRequests
}

func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNoCredential) {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.DebugContext(ctx, "llm error not retryable: context cancelled or deadline exceeded")
		return false
	}

	if code := statusCode(err); code != 0 {
		switch {
		case code == http.StatusTooManyRequests:
			slog.WarnContext(ctx, "llm rate limited", "status_code", code)
			return true
		case code >= 500:
			slog.WarnContext(ctx, "llm server error", "status_code", code)
			return true
		default:
			slog.ErrorContext(ctx, "llm client error, not retryable", "status_code", code)
			return false
		}
	}

	if errors.Is(err, ErrEmptyResponse) {
		return true
	}

	// Network errors (no API response) are generally retryable
	slog.WarnContext(ctx, "llm network error", "error", err)
	return true
}
