package oracle

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider completes prompts with the OpenAI Chat Completions API or a compatible server.
type OpenAIProvider struct {
	client *openai.Client
	opts   Options
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(opts Options) (*OpenAIProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		opts:   opts,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends prompt as a single user message.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.opts.MaxTokens,
		Temperature: float32(p.opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
