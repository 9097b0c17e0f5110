package keyword

import (
	"context"
	"testing"

	"github.com/hyperjump/kensho/internal/models"
)

func testChunks() []models.Chunk {
	return []models.Chunk{
		{ID: "row_0", SeqNum: 0, Text: "Edmond Dantes sailed into Marseilles aboard the Pharaon.", Chapter: "Chapter I"},
		{ID: "row_1", SeqNum: 1, Text: "Mercedes waited for him in the village of the Catalans.", Chapter: "Chapter II"},
		{ID: "row_2", SeqNum: 2, Text: "The prison of the Chateau d'If stood on a rock in the bay.", Chapter: "Chapter VIII"},
	}
}

func TestChunkIndex_SearchFindsText(t *testing.T) {
	idx, err := NewChunkIndex(testChunks())
	if err != nil {
		t.Fatalf("NewChunkIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()

	n, err := idx.DocCount()
	if err != nil || n != 3 {
		t.Fatalf("DocCount = %d, %v", n, err)
	}

	results, err := idx.Search(context.Background(), "Mercedes Catalans", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one keyword result")
	}
	if results[0].ID != "row_1" {
		t.Errorf("first result ID = %q, want row_1", results[0].ID)
	}
}

func TestChunkIndex_FuzzySearch(t *testing.T) {
	idx, err := NewChunkIndex(testChunks())
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = idx.Close()
	}()

	exact, err := idx.Search(context.Background(), "Dantez", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(exact) != 0 {
		t.Errorf("exact search should miss a misspelling, got %d results", len(exact))
	}
	fuzzy, err := idx.Search(context.Background(), "Dantez", 10, &SearchOptions{FuzzyEnabled: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(fuzzy) == 0 || fuzzy[0].ID != "row_0" {
		t.Errorf("fuzzy search should find row_0, got %v", fuzzy)
	}
}

func TestChunkIndex_EmptyQuery(t *testing.T) {
	idx, err := NewChunkIndex(testChunks())
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = idx.Close()
	}()
	results, err := idx.Search(context.Background(), "   ", 10, nil)
	if err != nil || results != nil {
		t.Errorf("empty query: got %v, %v", results, err)
	}
}
