package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrAuthentication    = errors.New("authentication failed")
	ErrRateLimit         = errors.New("rate limit exceeded")
	ErrTimeout           = errors.New("request timed out")
	ErrConnection        = errors.New("connection failed")
	ErrServer            = errors.New("server error")
	ErrBadRequest        = errors.New("request rejected")
	ErrMalformedResponse = errors.New("malformed response")
)

// GenerationError is a failure reported by a generation backend. Kind is
// one of the sentinel errors above and can be matched with errors.Is.
type GenerationError struct {
	Kind     error
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrServer)
}

// Hint returns an actionable message for the non-recoverable error kinds.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrAuthentication):
		return "check the API key for the configured provider (ANTHROPIC_API_KEY or OPENAI_API_KEY)"
	case errors.Is(err, ErrBadRequest):
		return "check the model name and max_tokens settings"
	case errors.Is(err, ErrRateLimit):
		return "the provider is rate limiting requests, wait a minute and try again"
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrConnection):
		return "check your network connection or the provider base URL"
	default:
		return ""
	}
}

// classifyStatus maps an HTTP status from a provider to an error kind.
func classifyStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrAuthentication
	case status == 408:
		return ErrTimeout
	case status == 429:
		return ErrRateLimit
	case status >= 500:
		return ErrServer
	case status >= 400:
		return ErrBadRequest
	default:
		return ErrMalformedResponse
	}
}

// classify wraps a raw backend error into a GenerationError.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) || errors.Is(err, context.Canceled) {
		return err
	}
	return &GenerationError{Kind: kindOf(err), Provider: provider, Err: err}
}

func kindOf(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrConnection
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "401", "403", "unauthorized", "authentication", "invalid x-api-key", "api key"):
		return ErrAuthentication
	case containsAny(msg, "429", "rate limit", "rate_limit", "too many requests"):
		return ErrRateLimit
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return ErrTimeout
	case containsAny(msg, "connection refused", "no such host", "connection reset", "eof"):
		return ErrConnection
	case containsAny(msg, "500", "502", "503", "529", "overloaded", "internal server error", "bad gateway"):
		return ErrServer
	case containsAny(msg, "400", "404", "invalid_request", "bad request"):
		return ErrBadRequest
	default:
		return ErrServer
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
