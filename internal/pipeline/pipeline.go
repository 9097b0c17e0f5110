// Package pipeline verifies claims book by book: each book is indexed once, its
// pending claims are checked against retrieved passages, and the results are
// persisted together when the book is done.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kensho/internal/checkpoint"
	"github.com/hyperjump/kensho/internal/claims"
	"github.com/hyperjump/kensho/internal/docstore"
	"github.com/hyperjump/kensho/internal/embedding"
	"github.com/hyperjump/kensho/internal/indexer"
	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/oracle"
	"github.com/hyperjump/kensho/internal/search"
	"github.com/hyperjump/kensho/internal/vector"
	"go.uber.org/zap"
)

// Retrieval modes.
const (
	ModeDense  = "dense"
	ModeHybrid = "hybrid"
)

// Options controls retrieval for each claim.
type Options struct {
	TopK           int
	Separator      string
	Mode           string
	KeywordWeight  float64
	SemanticWeight float64
	Fuzziness      int
}

// Hybrid reports whether Mode selects keyword plus dense retrieval.
func (o Options) Hybrid() bool {
	return strings.EqualFold(strings.TrimSpace(o.Mode), ModeHybrid)
}

// Pipeline runs claims through retrieval and the oracle. It processes one book and
// one claim at a time.
type Pipeline struct {
	docs       *docstore.Store
	indexer    *indexer.Indexer
	embedder   embedding.Embedder
	verifier   oracle.Verifier
	checkpoint *checkpoint.Manager
	opts       Options
	runID      string
	logger     *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for progress and per-book warnings.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRunID sets the id recorded on every result. A random UUID is used otherwise.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// New creates a pipeline. The indexer must build keyword indexes when opts.Mode is hybrid.
func New(docs *docstore.Store, idx *indexer.Indexer, embedder embedding.Embedder, verifier oracle.Verifier, cp *checkpoint.Manager, opts Options, options ...Option) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.Separator == "" {
		opts.Separator = "\n---\n"
	}
	p := &Pipeline{
		docs:       docs,
		indexer:    idx,
		embedder:   embedder,
		verifier:   verifier,
		checkpoint: cp,
		opts:       opts,
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	return p
}

// RunID returns the id recorded on results written by this pipeline.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID string `json:"run_id"`
	// Books is the number of distinct books referenced by the claims.
	Books int `json:"books"`
	// Processed is the number of results written.
	Processed int `json:"processed"`
	// AlreadyDone is the number of claims skipped because they already had a result.
	AlreadyDone int `json:"already_done"`
	// SkippedBooks have no document; their claims stay pending.
	SkippedBooks []string `json:"skipped_books,omitempty"`
	// FailedBooks were aborted by an error; their claims stay pending.
	FailedBooks []string      `json:"failed_books,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Failed reports whether any book was aborted by an error.
func (s *Summary) Failed() bool {
	return len(s.FailedBooks) > 0
}

// Run verifies every pending claim. A missing document skips its book and a failing
// book is recorded in the summary; either way the run continues with the next book.
// Only context cancellation stops the run early.
func (p *Pipeline) Run(ctx context.Context, all []models.Claim) (*Summary, error) {
	start := time.Now()
	groups := claims.GroupByBook(all)
	summary := &Summary{RunID: p.runID, Books: len(groups)}
	p.logger.Info("run started",
		zap.String("run_id", p.runID),
		zap.Int("claims", len(all)),
		zap.Int("books", len(groups)))

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
		pending := p.checkpoint.Pending(g.Claims)
		for _, c := range g.Claims {
			if p.checkpoint.IsProcessed(c.ID) {
				summary.AlreadyDone++
			}
		}
		if len(pending) == 0 {
			p.logger.Debug("book already verified", zap.String("book", g.Name))
			continue
		}

		n, err := p.processBook(ctx, g, pending)
		switch {
		case err == nil:
			summary.Processed += n
		case ctx.Err() != nil:
			summary.Duration = time.Since(start)
			return summary, ctx.Err()
		case errors.Is(err, docstore.ErrNotFound):
			p.logger.Warn("no document for book, skipping its claims",
				zap.String("book", g.Name), zap.Int("claims", len(pending)))
			summary.SkippedBooks = append(summary.SkippedBooks, g.Name)
		default:
			p.logger.Error("book failed, its claims stay pending",
				zap.String("book", g.Name), zap.Int("claims", len(pending)), zap.Error(err))
			summary.FailedBooks = append(summary.FailedBooks, g.Name)
		}
	}

	summary.Duration = time.Since(start)
	p.logger.Info("run finished",
		zap.String("run_id", p.runID),
		zap.Int("processed", summary.Processed),
		zap.Int("already_done", summary.AlreadyDone),
		zap.Int("skipped_books", len(summary.SkippedBooks)),
		zap.Int("failed_books", len(summary.FailedBooks)),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// processBook indexes the book, verifies each pending claim in order, and persists all
// results in one batch. Nothing is persisted when any claim fails.
func (p *Pipeline) processBook(ctx context.Context, g claims.Group, pending []models.Claim) (int, error) {
	path, err := p.docs.Resolve(g.Key)
	if err != nil {
		return 0, err
	}
	text, err := p.docs.Load(path)
	if err != nil {
		return 0, err
	}

	// A document without chunks still gets verdicts; the oracle sees an empty context.
	var retriever search.Retriever
	started := time.Now()
	doc, err := p.indexer.IndexDocument(ctx, text)
	switch {
	case errors.Is(err, indexer.ErrNoChunks):
		p.logger.Warn("document produced no chunks, verifying without context",
			zap.String("book", g.Name), zap.Int("pending", len(pending)))
	case err != nil:
		return 0, err
	default:
		defer func() { _ = doc.Close() }()
		p.logger.Info("book indexed",
			zap.String("book", g.Name),
			zap.Int("chunks", len(doc.Chunks)),
			zap.Int("pending", len(pending)),
			zap.Duration("took", time.Since(started)))
		retriever = p.retriever(doc)
	}

	results := make([]models.Result, 0, len(pending))
	for _, c := range pending {
		verdict, err := p.verify(ctx, retriever, c)
		if err != nil {
			return 0, fmt.Errorf("claim %s: %w", c.ID, err)
		}
		p.logger.Debug("claim verified",
			zap.String("id", c.ID), zap.Int("label", verdict.Label))
		results = append(results, models.Result{
			StoryID:    c.ID,
			Prediction: verdict.Label,
			Rationale:  verdict.Rationale,
			Book:       g.Name,
			RunID:      p.runID,
		})
	}

	n, err := p.checkpoint.RecordBatch(ctx, results)
	if err != nil {
		return 0, err
	}
	p.logger.Info("book verified", zap.String("book", g.Name), zap.Int("results", n))
	return n, nil
}

// verify retrieves context for c and asks the oracle. A nil retriever means the
// document had no chunks.
func (p *Pipeline) verify(ctx context.Context, r search.Retriever, c models.Claim) (models.Verdict, error) {
	if r == nil {
		return p.verifier.Verify(ctx, "", c.Content)
	}
	vec, err := p.embedder.Embed(ctx, c.Content)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("failed to embed claim: %w", err)
	}
	chunks, err := r.Retrieve(ctx, c.Content, vector.Normalize(vec), p.opts.TopK)
	if err != nil {
		return models.Verdict{}, err
	}
	return p.verifier.Verify(ctx, search.JoinContext(chunks, p.opts.Separator), c.Content)
}

func (p *Pipeline) retriever(doc *indexer.DocumentIndex) search.Retriever {
	if p.opts.Hybrid() && doc.Keywords != nil {
		return &search.Hybrid{
			Index:          doc.Vectors,
			Keywords:       doc.Keywords,
			KeywordWeight:  p.opts.KeywordWeight,
			SemanticWeight: p.opts.SemanticWeight,
			Fuzziness:      p.opts.Fuzziness,
		}
	}
	return &search.Dense{Index: doc.Vectors}
}
