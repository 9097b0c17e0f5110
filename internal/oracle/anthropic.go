package oracle

import (
	"context"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider completes prompts with the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropicsdk.Client
	opts   Options
}

// NewAnthropicProvider creates a provider. Returns an error if the API key is missing.
func NewAnthropicProvider(opts Options) (*AnthropicProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("anthropic: missing API key")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("anthropic: model must be specified")
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &AnthropicProvider{
		client: anthropicsdk.NewClient(reqOpts...),
		opts:   opts,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete sends prompt as a single user message and joins the text blocks of the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	maxTokens := int64(p.opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	msg, err := p.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(p.opts.Model),
		MaxTokens: maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
		Temperature: anthropicsdk.Float(p.opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
