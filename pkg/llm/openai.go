package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig configures an OpenAI-compatible chat completions backend.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// OpenAIEngine generates guide text with the official openai-go SDK.
type OpenAIEngine struct {
	config OpenAIConfig
	client openai.Client
}

func NewOpenAIEngine(config OpenAIConfig) (*OpenAIEngine, error) {
	if config.APIKey == "" {
		return nil, &GenerationError{Kind: ErrAuthentication, Provider: ProviderOpenAI, Err: errors.New("OPENAI_API_KEY not set")}
	}
	if config.Model == "" {
		config.Model = "gpt-4o"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 3000
	}
	if config.Timeout == 0 {
		config.Timeout = 2 * time.Minute
	}

	// Retries are handled by the Retrying decorator.
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(config.Timeout),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIEngine{
		config: config,
		client: openai.NewClient(opts...),
	}, nil
}

func (o *OpenAIEngine) params(prompt Prompt) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		MaxTokens:   openai.Int(int64(o.config.MaxTokens)),
		Temperature: openai.Float(o.config.Temperature),
	}
}

func (o *OpenAIEngine) Generate(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, o.params(prompt))
	if err != nil {
		return "", o.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Kind: ErrMalformedResponse, Provider: ProviderOpenAI, Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIEngine) Stream(ctx context.Context, prompt Prompt) (<-chan Chunk, error) {
	out := make(chan Chunk)

	go func() {
		defer close(out)

		stream := o.client.Chat.Completions.NewStreaming(ctx, o.params(prompt))
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !sendChunk(ctx, out, Chunk{Text: chunk.Choices[0].Delta.Content}) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			sendChunk(ctx, out, Chunk{Err: o.classify(err)})
		}
	}()

	return out, nil
}

func (o *OpenAIEngine) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &GenerationError{
			Kind:     classifyStatus(apiErr.StatusCode),
			Provider: ProviderOpenAI,
			Err:      fmt.Errorf("status %d: %w", apiErr.StatusCode, err),
		}
	}
	return classify(ProviderOpenAI, err)
}
