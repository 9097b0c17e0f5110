package embedding

import (
	"context"

	"github.com/hyperjump/kensho/internal/limiter"
)

// RateLimitedEmbedder waits on a shared limiter before each call to the wrapped embedder.
type RateLimitedEmbedder struct {
	Embedder
	limiter *limiter.Limiter
}

// NewRateLimitedEmbedder wraps e so every Embed or EmbedBatch call takes one token
// from the limiter's embedding bucket.
func NewRateLimitedEmbedder(e Embedder, l *limiter.Limiter) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{Embedder: e, limiter: l}
}

// Embed waits for clearance and embeds text.
func (r *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx, limiter.ServiceEmbedding); err != nil {
		return nil, err
	}
	return r.Embedder.Embed(ctx, text)
}

// EmbedBatch waits for clearance and embeds texts.
func (r *RateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx, limiter.ServiceEmbedding); err != nil {
		return nil, err
	}
	return r.Embedder.EmbedBatch(ctx, texts)
}
