// Package checkpoint tracks which claims already have a persisted result so that a
// run can be restarted without redoing or duplicating work.
package checkpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/storage"
)

// Manager holds the set of processed claim ids, seeded from the result store. The
// set only grows.
type Manager struct {
	store     storage.ResultStore
	mu        sync.RWMutex
	processed map[string]struct{}
}

// NewManager loads every persisted result from store and builds the processed set.
func NewManager(ctx context.Context, store storage.ResultStore) (*Manager, error) {
	results, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	processed := make(map[string]struct{}, len(results))
	for _, r := range results {
		processed[r.StoryID] = struct{}{}
	}
	return &Manager{store: store, processed: processed}, nil
}

// IsProcessed reports whether id already has a persisted result.
func (m *Manager) IsProcessed(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.processed[id]
	return ok
}

// Pending returns the claims without a persisted result, in input order. Repeated
// ids are returned once.
func (m *Manager) Pending(claims []models.Claim) []models.Claim {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{}, len(claims))
	var pending []models.Claim
	for _, c := range claims {
		if _, ok := m.processed[c.ID]; ok {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		pending = append(pending, c)
	}
	return pending
}

// RecordBatch persists results as one append and marks their ids processed. Results
// for ids that are already processed, or repeated within the batch, are dropped.
// It returns the number of results written. When the append fails nothing is marked.
func (m *Manager) RecordBatch(ctx context.Context, results []models.Result) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh := make([]models.Result, 0, len(results))
	batch := make(map[string]struct{}, len(results))
	for _, r := range results {
		if _, ok := m.processed[r.StoryID]; ok {
			continue
		}
		if _, ok := batch[r.StoryID]; ok {
			continue
		}
		batch[r.StoryID] = struct{}{}
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := m.store.Append(ctx, fresh); err != nil {
		return 0, fmt.Errorf("failed to persist %d results: %w", len(fresh), err)
	}
	for id := range batch {
		m.processed[id] = struct{}{}
	}
	return len(fresh), nil
}

// Count returns the number of processed claim ids.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.processed)
}
