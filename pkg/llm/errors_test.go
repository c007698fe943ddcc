package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"unauthorized", errors.New("API returned unexpected status code: 401"), ErrAuthentication},
		{"rate limit", errors.New("429 Too Many Requests"), ErrRateLimit},
		{"refused", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), ErrConnection},
		{"overloaded", errors.New("overloaded_error"), ErrServer},
		{"bad request", errors.New("invalid_request_error: max_tokens too large"), ErrBadRequest},
		{"unknown", errors.New("something odd"), ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("anthropic", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.Nil(t, classify("x", nil))
	assert.Equal(t, context.Canceled, classify("x", context.Canceled))

	genErr := &GenerationError{Kind: ErrRateLimit, Provider: "openai"}
	wrapped := fmt.Errorf("outer: %w", genErr)
	assert.Same(t, wrapped, classify("anthropic", wrapped))
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, ErrAuthentication, classifyStatus(401))
	assert.Equal(t, ErrAuthentication, classifyStatus(403))
	assert.Equal(t, ErrTimeout, classifyStatus(408))
	assert.Equal(t, ErrRateLimit, classifyStatus(429))
	assert.Equal(t, ErrBadRequest, classifyStatus(404))
	assert.Equal(t, ErrServer, classifyStatus(529))
}

func TestRetryableAndHint(t *testing.T) {
	assert.True(t, Retryable(&GenerationError{Kind: ErrTimeout}))
	assert.True(t, Retryable(&GenerationError{Kind: ErrConnection}))
	assert.False(t, Retryable(&GenerationError{Kind: ErrAuthentication}))
	assert.False(t, Retryable(context.Canceled))

	assert.Contains(t, Hint(&GenerationError{Kind: ErrAuthentication}), "API key")
	assert.Empty(t, Hint(errors.New("plain")))
}

func TestGenerationError_Error(t *testing.T) {
	err := &GenerationError{Kind: ErrTimeout, Provider: "ollama", Err: errors.New("slow")}
	assert.Equal(t, "ollama: request timed out: slow", err.Error())
	assert.Equal(t, "openai: rate limit exceeded", (&GenerationError{Kind: ErrRateLimit, Provider: "openai"}).Error())
}
