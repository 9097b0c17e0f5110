// Package vector provides the per-document vector index and similarity helpers.
package vector

import (
	"context"
	"errors"

	"github.com/hyperjump/kensho/internal/models"
)

// ErrDimensionMismatch is returned when a vector does not match the index dimensionality.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ErrEmptyIndex is returned when an index is built from no chunks.
var ErrEmptyIndex = errors.New("no chunks to index")

// Index answers nearest-neighbour queries over a fixed set of chunks.
// Implementations are immutable once built.
type Index interface {
	Nearest(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Size() int
	Dimensions() int
	Close() error
}

// VectorResult is a single nearest-neighbour hit.
type VectorResult struct {
	Chunk *models.Chunk
	Score float64 // cosine similarity
}
