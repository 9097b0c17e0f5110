package search

import (
	"testing"

	"github.com/hyperjump/kensho/internal/keyword"
	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/vector"
)

func TestNormalizeKeywordScores(t *testing.T) {
	results := []*keyword.KeywordResult{
		{ID: "a", Score: 2},
		{ID: "b", Score: 4},
		{ID: "c", Score: 1},
	}
	m := NormalizeKeywordScores(results)
	if m["b"] != 1.0 {
		t.Errorf("max score should be 1.0, got %f", m["b"])
	}
	if m["a"] != 0.5 {
		t.Errorf("a should be 0.5, got %f", m["a"])
	}
	if len(m) != 3 {
		t.Errorf("expected 3 entries, got %d", len(m))
	}
}

func TestNormalizeSemanticScores(t *testing.T) {
	results := []*vector.VectorResult{
		{Chunk: &models.Chunk{ID: "c1"}, Score: 0.9},
		{Chunk: &models.Chunk{ID: "c2"}, Score: 0.5},
	}
	m := NormalizeSemanticScores(results)
	if m["c1"] != 0.9 || m["c2"] != 0.5 {
		t.Errorf("unexpected map %v", m)
	}
}

func TestFuse(t *testing.T) {
	kw := map[string]float64{"a": 1.0, "b": 0.5}
	sem := map[string]float64{"b": 0.9, "c": 0.8}
	seq := map[string]int{"a": 0, "b": 1, "c": 2}
	got := Fuse(kw, sem, 0.5, 0.5, seq)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ChunkID != "b" {
		t.Errorf("b matches both and should rank first, got %s", got[0].ChunkID)
	}
	if got[0].KeywordScore != 0.5 || got[0].SemanticScore != 0.9 {
		t.Errorf("component scores not kept: %+v", got[0])
	}
}

func TestFuse_TiesBreakBySeqNum(t *testing.T) {
	sem := map[string]float64{"z": 0.5, "y": 0.5, "x": 0.5}
	seq := map[string]int{"x": 2, "y": 0, "z": 1}
	got := Fuse(nil, sem, 0.3, 0.7, seq)
	for i, want := range []string{"y", "z", "x"} {
		if got[i].ChunkID != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ChunkID, want)
		}
	}
}
