package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Provider    string // anthropic or ollama
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string
	Timeout     time.Duration
}

// ChatEngine generates guide text through a langchaingo model.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Provider == "" {
		config.Provider = ProviderAnthropic
	}
	if config.Temperature < 0 || config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 3000
	}
	if config.Timeout == 0 {
		config.Timeout = 2 * time.Minute
	}

	var (
		model llms.Model
		err   error
	)
	switch config.Provider {
	case ProviderAnthropic:
		if config.APIKey == "" {
			return nil, &GenerationError{Kind: ErrAuthentication, Provider: config.Provider, Err: fmt.Errorf("ANTHROPIC_API_KEY not set")}
		}
		if config.Model == "" {
			config.Model = "claude-sonnet-4-20250514"
		}
		opts := []anthropic.Option{
			anthropic.WithToken(config.APIKey),
			anthropic.WithModel(config.Model),
			anthropic.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
		}
		if config.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(config.BaseURL))
		}
		model, err = anthropic.New(opts...)
	case ProviderOllama:
		if config.Model == "" {
			config.Model = "mistral"
		}
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
		model, err = ollama.New(ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL),
			ollama.WithHTTPClient(&http.Client{Timeout: config.Timeout}))
	default:
		return nil, fmt.Errorf("chat engine does not support provider %s", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    model,
	}, nil
}

func (ce *ChatEngine) messages(prompt Prompt) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompt.System),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt.User),
	}
}

func (ce *ChatEngine) callOptions() []llms.CallOption {
	return []llms.CallOption{
		llms.WithMaxTokens(ce.config.MaxTokens),
		llms.WithTemperature(ce.config.Temperature),
	}
}

// Generate returns the complete response in one call.
func (ce *ChatEngine) Generate(ctx context.Context, prompt Prompt) (string, error) {
	response, err := ce.llm.GenerateContent(ctx, ce.messages(prompt), ce.callOptions()...)
	if err != nil {
		return "", classify(ce.config.Provider, err)
	}

	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", &GenerationError{Kind: ErrMalformedResponse, Provider: ce.config.Provider, Err: fmt.Errorf("no choices in response")}
	}

	return response.Choices[0].Content, nil
}

// Stream delivers the response fragment by fragment. The channel is closed
// when the response completes; a failure is sent as a final Chunk with Err.
func (ce *ChatEngine) Stream(ctx context.Context, prompt Prompt) (<-chan Chunk, error) {
	resultChan := make(chan Chunk)

	go func() {
		defer close(resultChan)

		opts := append(ce.callOptions(), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			if !sendChunk(ctx, resultChan, Chunk{Text: string(chunk)}) {
				return ctx.Err()
			}
			return nil
		}))

		_, err := ce.llm.GenerateContent(ctx, ce.messages(prompt), opts...)
		if err != nil {
			sendChunk(ctx, resultChan, Chunk{Err: classify(ce.config.Provider, err)})
		}
	}()

	return resultChan, nil
}
