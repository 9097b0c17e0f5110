package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/kensho/internal/embedding"
	"github.com/hyperjump/kensho/internal/keyword"
	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/vector"
	"go.uber.org/zap"
)

// ErrNoChunks is returned when a document yields no chunk long enough to index.
var ErrNoChunks = errors.New("document produced no chunks")

// Indexer splits, embeds, and indexes one document at a time.
type Indexer struct {
	splitter *Splitter
	embedder embedding.Embedder
	keywords bool
	logger   *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output and dropped-paragraph warnings.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithKeywordIndex also builds an in-memory keyword index per document.
func WithKeywordIndex(enabled bool) IndexerOption {
	return func(idx *Indexer) { idx.keywords = enabled }
}

// NewIndexer creates an indexer that splits with opts and embeds with embedder.
func NewIndexer(embedder embedding.Embedder, opts SplitterOptions, options ...IndexerOption) *Indexer {
	idx := &Indexer{embedder: embedder, logger: zap.NewNop()}
	for _, opt := range options {
		opt(idx)
	}
	idx.splitter = NewSplitter(embedder, opts, idx.logger)
	return idx
}

// DocumentIndex holds everything built for one document. Close it before
// building the next one.
type DocumentIndex struct {
	Chunks   []models.Chunk
	Vectors  *vector.MemoryIndex
	Keywords *keyword.ChunkIndex // nil unless keyword indexing is enabled
}

// Close releases the vector and keyword indexes.
func (d *DocumentIndex) Close() error {
	var err error
	if d.Keywords != nil {
		err = d.Keywords.Close()
		d.Keywords = nil
	}
	if d.Vectors != nil {
		_ = d.Vectors.Close()
		d.Vectors = nil
	}
	d.Chunks = nil
	return err
}

// Ingest splits text and embeds every chunk in one batch. Vectors are normalized and
// chunks get IDs row_0, row_1, ... in splitter order.
func (idx *Indexer) Ingest(ctx context.Context, text string) ([]models.Chunk, error) {
	candidates, err := idx.splitter.Split(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to split document: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoChunks
	}
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	vecs, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vecs) != len(candidates) {
		return nil, fmt.Errorf("failed to generate embeddings: got %d for %d chunks", len(vecs), len(candidates))
	}
	chunks := make([]models.Chunk, len(candidates))
	for i, c := range candidates {
		chunks[i] = models.Chunk{
			ID:      fmt.Sprintf("row_%d", i),
			SeqNum:  i,
			Text:    c.Text,
			Chapter: c.Chapter,
			Vector:  vector.Normalize(vecs[i]),
		}
	}
	idx.logger.Debug("document ingested", zap.Int("chunks", len(chunks)))
	return chunks, nil
}

// IndexDocument ingests text and builds the document's search indexes.
func (idx *Indexer) IndexDocument(ctx context.Context, text string) (*DocumentIndex, error) {
	chunks, err := idx.Ingest(ctx, text)
	if err != nil {
		return nil, err
	}
	vectors, err := vector.NewMemoryIndex(chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to index vectors: %w", err)
	}
	doc := &DocumentIndex{Chunks: chunks, Vectors: vectors}
	if idx.keywords {
		kw, err := keyword.NewChunkIndex(chunks)
		if err != nil {
			_ = vectors.Close()
			return nil, fmt.Errorf("failed to index keywords: %w", err)
		}
		doc.Keywords = kw
	}
	return doc, nil
}
