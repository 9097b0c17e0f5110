package checkpoint

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/storage"
)

type failingStore struct {
	storage.ResultStore
	err error
}

func (f *failingStore) Append(ctx context.Context, results []models.Result) error {
	return f.err
}

func newStore(t *testing.T) *storage.CSVStore {
	t.Helper()
	s, err := storage.NewCSVStore(filepath.Join(t.TempDir(), "results.csv"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestManager_SeedsFromStore(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if err := store.Append(ctx, []models.Result{
		{StoryID: "1", Prediction: 0, Rationale: "a"},
		{StoryID: "2", Prediction: 1, Rationale: "b"},
	}); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsProcessed("1") || !m.IsProcessed("2") {
		t.Error("persisted ids should be processed")
	}
	if m.IsProcessed("3") {
		t.Error("id 3 should not be processed")
	}
	if m.Count() != 2 {
		t.Errorf("Count = %d, want 2", m.Count())
	}
}

func TestManager_Pending(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	_ = store.Append(ctx, []models.Result{{StoryID: "2", Prediction: 1, Rationale: "b"}})
	m, err := NewManager(ctx, store)
	if err != nil {
		t.Fatal(err)
	}

	claims := []models.Claim{
		{ID: "1", BookName: "Foo"},
		{ID: "2", BookName: "Foo"},
		{ID: "3", BookName: "Foo"},
		{ID: "1", BookName: "Foo"},
	}
	pending := m.Pending(claims)
	if len(pending) != 2 || pending[0].ID != "1" || pending[1].ID != "3" {
		t.Errorf("Pending = %+v", pending)
	}
}

func TestManager_RecordBatch(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	m, err := NewManager(ctx, store)
	if err != nil {
		t.Fatal(err)
	}

	n, err := m.RecordBatch(ctx, []models.Result{
		{StoryID: "1", Prediction: 0, Rationale: "first"},
		{StoryID: "1", Prediction: 1, Rationale: "duplicate"},
		{StoryID: "2", Prediction: 1, Rationale: "second"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("wrote %d results, want 2", n)
	}

	// Already processed ids are never rewritten
	n, err = m.RecordBatch(ctx, []models.Result{{StoryID: "1", Prediction: 1, Rationale: "again"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("wrote %d results, want 0", n)
	}

	results, _ := store.Load(ctx)
	if len(results) != 2 || results[0].Rationale != "first" {
		t.Errorf("store = %+v", results)
	}

	// A fresh manager sees the same state
	m2, err := NewManager(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if m2.Count() != 2 || !m2.IsProcessed("2") {
		t.Errorf("reloaded manager count = %d", m2.Count())
	}
}

func TestManager_RecordBatchFailureMarksNothing(t *testing.T) {
	boom := errors.New("disk full")
	store := &failingStore{ResultStore: newStore(t), err: boom}
	ctx := context.Background()
	m, err := NewManager(ctx, store)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.RecordBatch(ctx, []models.Result{{StoryID: "1", Prediction: 1}}); !errors.Is(err, boom) {
		t.Fatalf("Expected disk full error, got %v", err)
	}
	if m.IsProcessed("1") {
		t.Error("failed batch must not mark ids processed")
	}
}
