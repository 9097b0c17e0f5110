package embedding

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/kensho/internal/config"
	"github.com/hyperjump/kensho/internal/limiter"
)

// NewEmbedder creates the configured provider and layers rate limiting and caching on top.
// lim may be nil to disable rate limiting.
func NewEmbedder(cfg config.EmbeddingConfig, lim *limiter.Limiter) (Embedder, error) {
	var (
		base Embedder
		err  error
	)
	switch strings.ToLower(cfg.Provider) {
	case "ollama", "":
		base, err = NewOllamaEmbedder(cfg.BaseURL, cfg.Model, time.Duration(cfg.TimeoutSecs)*time.Second, cfg.BatchSize)
	case "openai":
		base, err = NewOpenAIEmbedder(cfg.APIKey(), cfg.BaseURL, cfg.Model, cfg.BatchSize)
	case "onnx":
		base, err = NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
	case "mock":
		base = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: ollama, openai, onnx, mock)", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s embedder: %w", cfg.Provider, err)
	}

	if lim != nil {
		lim.SetRate(limiter.ServiceEmbedding, cfg.RequestsPerSecond, cfg.Burst)
		base = NewRateLimitedEmbedder(base, lim)
	}
	if cfg.CacheSize > 0 {
		base = NewCachedEmbedder(base, cfg.CacheSize)
	}
	return base, nil
}
