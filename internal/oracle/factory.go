package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/kensho/internal/config"
	"github.com/hyperjump/kensho/internal/limiter"
	"go.uber.org/zap"
)

// NewProvider creates the model provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.OracleConfig) (Provider, error) {
	opts := Options{
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey(),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TimeoutSecs: cfg.TimeoutSecs,
	}
	switch strings.ToLower(cfg.Provider) {
	case "ollama", "":
		return NewOllamaProvider(opts)
	case "openai":
		return NewOpenAIProvider(opts)
	case "anthropic":
		return NewAnthropicProvider(opts)
	case "gemini":
		return NewGeminiProvider(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s (supported: ollama, openai, anthropic, gemini, static)", cfg.Provider)
	}
}

// NewVerifier builds the configured verifier: a Judge over the provider with retries
// and rate limiting, wrapped in a verdict cache when cache_ttl_secs > 0.
// lim may be nil to disable rate limiting.
func NewVerifier(ctx context.Context, cfg config.OracleConfig, lim *limiter.Limiter, logger *zap.Logger) (Verifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.EqualFold(cfg.Provider, "static") {
		return NewStaticVerifier(cfg.StaticLabel, cfg.StaticRationale), nil
	}

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s oracle: %w", cfg.Provider, err)
	}

	judgeOpts := []JudgeOption{
		WithRetries(cfg.Retries(), time.Duration(cfg.RetryBackoffMs)*time.Millisecond),
		WithLogger(logger),
	}
	if lim != nil {
		lim.SetRate(limiter.ServiceOracle, cfg.RequestsPerSecond, cfg.Burst)
		judgeOpts = append(judgeOpts, WithLimiter(lim))
	}

	var v Verifier = NewJudge(provider, judgeOpts...)
	if cfg.CacheTTLSecs > 0 {
		v = NewCachedVerifier(v, time.Duration(cfg.CacheTTLSecs)*time.Second)
	}
	return v, nil
}
