package main

import (
	"context"
	"fmt"

	"github.com/hyperjump/kensho/internal/checkpoint"
	"github.com/hyperjump/kensho/internal/claims"
	"github.com/hyperjump/kensho/internal/config"
	"github.com/hyperjump/kensho/internal/docstore"
	"github.com/hyperjump/kensho/internal/embedding"
	"github.com/hyperjump/kensho/internal/indexer"
	"github.com/hyperjump/kensho/internal/limiter"
	"github.com/hyperjump/kensho/internal/oracle"
	"github.com/hyperjump/kensho/internal/pipeline"
	"github.com/hyperjump/kensho/internal/storage"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Config     *config.Config
	Store      storage.ResultStore
	Checkpoint *checkpoint.Manager
	Embedder   embedding.Embedder
	Verifier   oracle.Verifier
	Documents  *docstore.Store
	Indexer    *indexer.Indexer

	logger *zap.Logger
}

// Close releases the embedder and the result store.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func splitterOptions(cfg config.ChunkingConfig) indexer.SplitterOptions {
	return indexer.SplitterOptions{
		SimilarityThreshold: cfg.SimilarityThreshold,
		MinChunkChars:       cfg.MinChunkChars,
		MaxChunkChars:       cfg.MaxChunkChars,
		OverlapChars:        cfg.OverlapChars,
		ChapterScanChars:    cfg.ChapterScanChars,
		DefaultChapter:      cfg.DefaultChapter,
	}
}

func pipelineOptions(cfg config.RetrievalConfig) pipeline.Options {
	return pipeline.Options{
		TopK:           cfg.TopK,
		Separator:      cfg.Separator,
		Mode:           cfg.Mode,
		KeywordWeight:  cfg.KeywordWeight,
		SemanticWeight: cfg.SemanticWeight,
		Fuzziness:      cfg.Fuzziness,
	}
}

func openStore(cfg *config.Config) (storage.ResultStore, error) {
	store, err := storage.Open(cfg.Output.Backend, cfg.Output.ResultsPath, cfg.Output.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}
	return store, nil
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	c := &Components{Config: cfg, Store: store, logger: logger}

	c.Checkpoint, err = checkpoint.NewManager(ctx, store)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	// One limiter keyed per service; providers set their own rates.
	lim := limiter.NewLimiter(0, 1)

	c.Embedder, err = embedding.NewEmbedder(cfg.Embedding, lim)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Verifier, err = oracle.NewVerifier(ctx, cfg.Oracle, lim, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Documents = docstore.NewStore(cfg.Input.DocumentsDir, cfg.Input.DocumentExtensions)
	c.Indexer = indexer.NewIndexer(
		c.Embedder,
		splitterOptions(cfg.Chunking),
		indexer.WithLogger(logger),
		indexer.WithKeywordIndex(pipelineOptions(cfg.Retrieval).Hybrid()),
	)

	logger.Info("components initialized",
		zap.String("backend", cfg.Output.Backend),
		zap.String("embedder", cfg.Embedding.Provider),
		zap.String("oracle", cfg.Oracle.Provider),
		zap.String("mode", cfg.Retrieval.Mode),
		zap.Int("already_processed", c.Checkpoint.Count()),
	)
	return c, nil
}

// Run loads the claims table and verifies every pending claim. Each call gets a
// fresh run id; the checkpoint is shared so completed claims are never redone.
func (c *Components) Run(ctx context.Context) (*pipeline.Summary, error) {
	all, err := claims.Load(c.Config.Input.ClaimsPath)
	if err != nil {
		return nil, err
	}
	p := pipeline.New(
		c.Documents,
		c.Indexer,
		c.Embedder,
		c.Verifier,
		c.Checkpoint,
		pipelineOptions(c.Config.Retrieval),
		pipeline.WithLogger(c.logger),
	)
	c.logger.Debug("claims loaded",
		zap.String("run_id", p.RunID()),
		zap.Int("claims", len(all)),
		zap.String("claims_path", c.Config.Input.ClaimsPath),
	)
	return p.Run(ctx, all)
}
