package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/kensho/internal/models"
)

func chunk(seq int, vec ...float32) models.Chunk {
	return models.Chunk{ID: "row_" + string(rune('a'+seq)), SeqNum: seq, Vector: vec}
}

func TestMemoryIndex_Nearest(t *testing.T) {
	idx, err := NewMemoryIndex([]models.Chunk{
		chunk(0, 1, 0, 0),
		chunk(1, 0.9, 0.1, 0),
		chunk(2, 0, 1, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	if idx.Size() != 3 || idx.Dimensions() != 3 {
		t.Errorf("Size=%d Dimensions=%d", idx.Size(), idx.Dimensions())
	}

	results, err := idx.Nearest(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.SeqNum != 0 || results[1].Chunk.SeqNum != 1 {
		t.Errorf("unexpected order: %d, %d", results[0].Chunk.SeqNum, results[1].Chunk.SeqNum)
	}
	if results[0].Score < results[1].Score {
		t.Error("scores should be non-increasing")
	}
}

func TestMemoryIndex_NearestReturnsMinKN(t *testing.T) {
	idx, err := NewMemoryIndex([]models.Chunk{chunk(0, 1, 0), chunk(1, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{1, 2, 5} {
		results, err := idx.Nearest(context.Background(), []float32{1, 1}, k)
		if err != nil {
			t.Fatal(err)
		}
		want := k
		if want > 2 {
			want = 2
		}
		if len(results) != want {
			t.Errorf("k=%d: got %d results, want %d", k, len(results), want)
		}
	}
}

func TestMemoryIndex_TiesBreakBySeqNum(t *testing.T) {
	// Built out of order on purpose; identical vectors must come back by seq_num.
	idx, err := NewMemoryIndex([]models.Chunk{
		chunk(3, 0, 1),
		chunk(1, 0, 1),
		chunk(2, 0, 1),
		chunk(0, 1, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	results, err := idx.Nearest(context.Background(), []float32{0, 5}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []int{1, 2, 3} {
		if results[i].Chunk.SeqNum != want {
			t.Errorf("results[%d].SeqNum = %d, want %d", i, results[i].Chunk.SeqNum, want)
		}
	}
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	_, err := NewMemoryIndex([]models.Chunk{chunk(0, 1, 0), chunk(1, 1, 0, 0)})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	idx, _ := NewMemoryIndex([]models.Chunk{chunk(0, 1, 0)})
	if _, err := idx.Nearest(context.Background(), []float32{1, 0, 0}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for query, got %v", err)
	}
}

func TestMemoryIndex_Empty(t *testing.T) {
	if _, err := NewMemoryIndex(nil); !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestMemoryIndex_DoesNotAliasInput(t *testing.T) {
	chunks := []models.Chunk{chunk(0, 3, 4)}
	idx, err := NewMemoryIndex(chunks)
	if err != nil {
		t.Fatal(err)
	}
	if chunks[0].Vector[0] != 3 {
		t.Error("input vector was modified")
	}
	if got := L2Norm(idx.Chunks()[0].Vector); got < 0.999 || got > 1.001 {
		t.Errorf("stored vector norm = %f, want 1", got)
	}
}
