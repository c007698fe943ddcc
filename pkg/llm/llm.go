package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderOffline   = "offline"
)

// Prompt is one system + user message pair sent to the generation service.
type Prompt struct {
	System string
	User   string
}

// Chunk is one fragment of a streamed response. A chunk with Err set is the
// last value sent before the channel closes; a close without an error chunk
// means the response completed normally.
type Chunk struct {
	Text string
	Err  error
}

// Generator is a text-generation service.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Stream(ctx context.Context, prompt Prompt) (<-chan Chunk, error)
}

// ProviderConfig selects and configures a Generator backend.
type ProviderConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewFromConfig builds the Generator for cfg.Provider.
func NewFromConfig(cfg ProviderConfig) (Generator, error) {
	switch cfg.Provider {
	case ProviderAnthropic, ProviderOllama, "":
		return NewWithConfig(ChatConfig{
			Provider:    cfg.Provider,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	case ProviderOpenAI:
		return NewOpenAIEngine(OpenAIConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	case ProviderOffline:
		return NewScriptedGenerator(ScriptedConfig{}), nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

// sendChunk delivers c unless ctx is cancelled first.
func sendChunk(ctx context.Context, out chan<- Chunk, c Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
