// Package indexer turns a document's text into an in-memory searchable index.
package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/kensho/internal/embedding"
	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/vector"
	"go.uber.org/zap"
)

// SplitterOptions configures the hybrid splitter. Lengths are in characters.
type SplitterOptions struct {
	SimilarityThreshold float64
	MinChunkChars       int
	MaxChunkChars       int
	OverlapChars        int
	ChapterScanChars    int
	DefaultChapter      string
}

// DefaultSplitterOptions returns the stock thresholds.
func DefaultSplitterOptions() SplitterOptions {
	return SplitterOptions{
		SimilarityThreshold: 0.8,
		MinChunkChars:       200,
		MaxChunkChars:       1000,
		OverlapChars:        300,
		ChapterScanChars:    300,
		DefaultChapter:      "Prologue/Introduction",
	}
}

// Splitter splits text into chunks along paragraph and meaning boundaries.
// Consecutive sentences stay together while their embeddings remain similar.
type Splitter struct {
	embedder embedding.Embedder
	opts     SplitterOptions
	logger   *zap.Logger
}

// NewSplitter creates a splitter that embeds sentences with embedder. logger may be nil.
func NewSplitter(embedder embedding.Embedder, opts SplitterOptions, logger *zap.Logger) *Splitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Splitter{embedder: embedder, opts: opts, logger: logger}
}

// Split returns chunk candidates in document order, each tagged with the most recent
// chapter heading seen. A paragraph that fails to split is dropped; only context
// cancellation aborts the whole split.
func (s *Splitter) Split(ctx context.Context, text string) ([]models.Candidate, error) {
	var semantic []string
	for i, p := range SplitParagraphs(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks, err := s.splitParagraph(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("skipping paragraph", zap.Int("paragraph", i), zap.Error(err))
			continue
		}
		semantic = append(semantic, chunks...)
	}

	var windows []string
	for _, c := range semantic {
		if charLen(strings.TrimSpace(c)) < s.opts.MinChunkChars {
			continue
		}
		if charLen(c) <= s.opts.MaxChunkChars {
			windows = append(windows, c)
			continue
		}
		for _, w := range CharacterSafetySplit(c, s.opts.MaxChunkChars, s.opts.OverlapChars) {
			if charLen(strings.TrimSpace(w)) >= s.opts.MinChunkChars {
				windows = append(windows, w)
			}
		}
	}

	out := make([]models.Candidate, len(windows))
	chapter := s.opts.DefaultChapter
	for i, w := range windows {
		if m := MatchChapter(w, s.opts.ChapterScanChars); m != "" {
			chapter = m
		}
		out[i] = models.Candidate{Text: w, Chapter: chapter}
	}
	return out, nil
}

func (s *Splitter) splitParagraph(ctx context.Context, paragraph string) (chunks []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while splitting paragraph: %v", r)
		}
	}()
	sentences := SplitSentences(paragraph)
	if len(sentences) <= 1 {
		return []string{paragraph}, nil
	}
	vecs, err := s.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("failed to embed sentences: %w", err)
	}
	if len(vecs) != len(sentences) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d sentences", len(vecs), len(sentences))
	}
	current := []string{sentences[0]}
	for i := 1; i < len(sentences); i++ {
		if vector.CosineSimilarity(vecs[i-1], vecs[i]) < s.opts.SimilarityThreshold {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
		}
		current = append(current, sentences[i])
	}
	return append(chunks, strings.Join(current, " ")), nil
}
