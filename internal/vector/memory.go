package vector

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/pkg/utils"
)

// MemoryIndex is an in-memory vector index using brute-force inner product search
// over unit vectors. It is built once from a document's chunks and never mutated.
type MemoryIndex struct {
	dimensions int
	chunks     []*models.Chunk
}

// NewMemoryIndex builds an index from chunks. Vectors are copied and normalized;
// chunks are ordered by SeqNum so ties resolve to the earlier chunk.
func NewMemoryIndex(chunks []models.Chunk) (*MemoryIndex, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	dims := len(chunks[0].Vector)
	if dims == 0 {
		return nil, fmt.Errorf("chunk %s has no vector", chunks[0].ID)
	}
	stored := make([]*models.Chunk, len(chunks))
	for i := range chunks {
		c := chunks[i]
		if len(c.Vector) != dims {
			return nil, fmt.Errorf("%w: chunk %s has %d, expected %d", ErrDimensionMismatch, c.ID, len(c.Vector), dims)
		}
		vec := make([]float32, dims)
		copy(vec, c.Vector)
		utils.NormalizeL2(vec)
		c.Vector = vec
		stored[i] = &c
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].SeqNum < stored[j].SeqNum })
	return &MemoryIndex{dimensions: dims, chunks: stored}, nil
}

// Nearest returns the min(k, Size()) chunks most similar to query, by decreasing
// cosine similarity with ties broken by ascending SeqNum.
func (m *MemoryIndex) Nearest(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), m.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := make([]float32, len(query))
	copy(q, query)
	utils.NormalizeL2(q)

	scores := make([]*VectorResult, len(m.chunks))
	for i, c := range m.chunks {
		scores[i] = &VectorResult{Chunk: c, Score: InnerProduct(q, c.Vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Chunk.SeqNum < scores[j].Chunk.SeqNum
	})
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// Chunks returns the indexed chunks in SeqNum order.
func (m *MemoryIndex) Chunks() []*models.Chunk {
	return m.chunks
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	return len(m.chunks)
}

// Dimensions returns the vector dimensionality.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Close releases the chunks so the index can be collected.
func (m *MemoryIndex) Close() error {
	m.chunks = nil
	return nil
}
