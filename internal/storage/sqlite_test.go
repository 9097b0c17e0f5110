package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kensho/internal/models"
)

func TestSQLiteStore_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	err = store.Append(ctx, []models.Result{
		{StoryID: "1", Prediction: 0, Rationale: "no", Book: "foo", RunID: "run-1"},
		{StoryID: "2", Prediction: 1, Rationale: "yes", Book: "foo", RunID: "run-1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Existing ids are never overwritten
	err = store.Append(ctx, []models.Result{
		{StoryID: "1", Prediction: 1, Rationale: "changed", RunID: "run-2"},
		{StoryID: "3", Prediction: 1, Rationale: "new", RunID: "run-2"},
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Prediction != 0 || results[0].Rationale != "no" || results[0].RunID != "run-1" {
		t.Errorf("result 1 was modified: %+v", results[0])
	}
	if results[2].StoryID != "3" {
		t.Errorf("expected insertion order, got %+v", results)
	}

	got, err := store.Get(ctx, "2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Book != "foo" {
		t.Errorf("got %+v", got)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	list, err := store.List(ctx, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].StoryID != "2" {
		t.Errorf("List(1,0) = %+v", list)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Count = %d, want 3", count)
	}
}

func TestSQLiteStore_RejectsInvalidPrediction(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	err = store.Append(ctx, []models.Result{
		{StoryID: "1", Prediction: 1, Rationale: "ok"},
		{StoryID: "2", Prediction: 5, Rationale: "bad"},
	})
	if err == nil {
		t.Fatal("expected error for invalid prediction")
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("failed batch should leave no rows, got %d", n)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("csv", filepath.Join(dir, "r.csv"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*CSVStore); !ok {
		t.Errorf("Expected *CSVStore, got %T", s)
	}
	s, err = Open("sqlite", "", filepath.Join(dir, "r.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Expected *SQLiteStore, got %T", s)
	}
	if _, err := Open("parquet", "", ""); err == nil {
		t.Error("expected error for unsupported backend")
	}
}
