// Package storage persists verification results in an append-only log.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/kensho/internal/models"
)

// ErrNotFound is returned by Get when no result exists for a story id.
var ErrNotFound = errors.New("result not found")

// ResultStore is an append-only log of verification results. Results are never
// rewritten once appended.
type ResultStore interface {
	// Load returns every persisted result in write order.
	Load(ctx context.Context) ([]models.Result, error)
	// Append persists results as one unit: either the whole batch is written or none of it is.
	Append(ctx context.Context, results []models.Result) error
	Get(ctx context.Context, storyID string) (*models.Result, error)
	List(ctx context.Context, offset, limit int) ([]models.Result, error)
	Count(ctx context.Context) (int64, error)

	Close() error
}

// Open returns the store selected by backend ("csv" or "sqlite").
func Open(backend, csvPath, sqlitePath string) (ResultStore, error) {
	switch strings.ToLower(backend) {
	case "csv", "":
		return NewCSVStore(csvPath)
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported output backend: %s (supported: csv, sqlite)", backend)
	}
}

func page(results []models.Result, offset, limit int) []models.Result {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []models.Result{}
	}
	end := len(results)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return results[offset:end]
}

func validate(results []models.Result) error {
	for _, r := range results {
		if r.StoryID == "" {
			return errors.New("result has empty story id")
		}
		if r.Prediction != models.LabelContradict && r.Prediction != models.LabelConsistent {
			return fmt.Errorf("result %s: invalid prediction %d", r.StoryID, r.Prediction)
		}
	}
	return nil
}
