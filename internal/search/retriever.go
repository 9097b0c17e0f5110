package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/kensho/internal/keyword"
	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/vector"
)

// Retriever returns the chunks of the current document most relevant to a claim.
// query is the claim's normalized embedding.
type Retriever interface {
	Retrieve(ctx context.Context, claim string, query []float32, k int) ([]*models.Chunk, error)
}

// Dense ranks chunks by cosine similarity alone.
type Dense struct {
	Index vector.Index
}

// Retrieve returns the k nearest chunks.
func (d *Dense) Retrieve(ctx context.Context, _ string, query []float32, k int) ([]*models.Chunk, error) {
	results, err := d.Index.Nearest(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}
	out := make([]*models.Chunk, len(results))
	for i, r := range results {
		out[i] = r.Chunk
	}
	return out, nil
}

// Hybrid fuses max-normalized BM25 scores with cosine similarity over every chunk.
type Hybrid struct {
	Index          *vector.MemoryIndex
	Keywords       keyword.KeywordIndex
	KeywordWeight  float64
	SemanticWeight float64
	// Fuzziness > 0 lets keyword terms match within that many edits (OCR noise, name variants).
	Fuzziness int
}

// Retrieve returns the k chunks with the highest fused score.
func (h *Hybrid) Retrieve(ctx context.Context, claim string, query []float32, k int) ([]*models.Chunk, error) {
	n := h.Index.Size()
	semantic, err := h.Index.Nearest(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}
	var opts *keyword.SearchOptions
	if h.Fuzziness > 0 {
		opts = &keyword.SearchOptions{FuzzyEnabled: true, Fuzziness: h.Fuzziness}
	}
	kw, err := h.Keywords.Search(ctx, claim, n, opts)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	byID := make(map[string]*models.Chunk, n)
	seq := make(map[string]int, n)
	for _, c := range h.Index.Chunks() {
		byID[c.ID] = c
		seq[c.ID] = c.SeqNum
	}
	fused := Fuse(NormalizeKeywordScores(kw), NormalizeSemanticScores(semantic), h.KeywordWeight, h.SemanticWeight, seq)
	if k > len(fused) {
		k = len(fused)
	}
	out := make([]*models.Chunk, 0, k)
	for _, f := range fused[:k] {
		if c, ok := byID[f.ChunkID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// JoinContext concatenates chunk texts in rank order with sep between them.
func JoinContext(chunks []*models.Chunk, sep string) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, sep)
}
