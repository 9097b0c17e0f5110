package oracle

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider completes prompts with the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	opts   Options
}

// NewGeminiProvider creates a provider. Returns an error if the API key is missing.
func NewGeminiProvider(ctx context.Context, opts Options) (*GeminiProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &GeminiProvider{client: client, opts: opts}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string { return "gemini" }

// Complete generates a single non-streaming response.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(p.opts.Temperature)),
	}
	if p.opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.opts.MaxTokens)
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.opts.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return resp.Text(), nil
}
