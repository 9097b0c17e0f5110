// Package embedding provides text embedding providers, caching, and rate limiting.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

type batchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// inBatches calls fn over consecutive slices of at most size texts and concatenates
// the results. size <= 0 sends everything in one call.
func inBatches(ctx context.Context, texts []string, size int, fn batchFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if size <= 0 {
		size = len(texts)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := fn(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, errBatchSize(end-start, len(vecs))
		}
		out = append(out, vecs...)
	}
	for i := 1; i < len(out); i++ {
		if len(out[i]) != len(out[0]) {
			return nil, fmt.Errorf("inconsistent embedding dimensions: %d and %d", len(out[0]), len(out[i]))
		}
	}
	return out, nil
}

func errBatchSize(want, got int) error {
	return fmt.Errorf("expected %d embeddings, got %d", want, got)
}
