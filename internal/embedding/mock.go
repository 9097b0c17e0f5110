package embedding

import (
	"context"
	"math"
	"sync"
)

// MockEmbedder is a deterministic embedder for tests. It returns a fixed-dimension
// vector derived from the text hash so that the same text always gets the same embedding.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a deterministic embedding based on the text hash.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := HashString(text)
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

// FuncEmbedder embeds text with a caller-supplied function and counts calls.
// Tests use it to script similarities and inject failures.
type FuncEmbedder struct {
	dimensions int
	fn         func(text string) ([]float32, error)

	mu         sync.Mutex
	calls      int
	batchCalls int
}

// NewFuncEmbedder returns an embedder backed by fn.
func NewFuncEmbedder(dimensions int, fn func(text string) ([]float32, error)) *FuncEmbedder {
	return &FuncEmbedder{dimensions: dimensions, fn: fn}
}

// Embed returns fn(text).
func (e *FuncEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return e.fn(text)
}

// EmbedBatch applies fn to each text; any error fails the whole batch.
func (e *FuncEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.batchCalls++
	e.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.fn(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Calls returns how many times Embed and EmbedBatch were invoked.
func (e *FuncEmbedder) Calls() (single, batch int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls, e.batchCalls
}

// Dimensions returns the embedding dimension.
func (e *FuncEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *FuncEmbedder) Close() error {
	return nil
}
