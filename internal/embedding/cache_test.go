package embedding

import (
	"context"
	"errors"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestCachedEmbedder_EmbedsOnlyMisses(t *testing.T) {
	inner := NewFuncEmbedder(2, func(text string) ([]float32, error) {
		return []float32{float32(len(text)), 1}, nil
	})
	c := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	first, err := c.EmbedBatch(ctx, []string{"a", "bb"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.EmbedBatch(ctx, []string{"bb", "ccc", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if second[0][0] != first[1][0] || second[2][0] != first[0][0] || second[1][0] != 3 {
		t.Errorf("unexpected vectors: %v", second)
	}
	if _, batch := inner.Calls(); batch != 2 {
		t.Errorf("expected 2 batch calls, got %d", batch)
	}
	if _, err := c.EmbedBatch(ctx, []string{"a", "ccc"}); err != nil {
		t.Fatal(err)
	}
	if _, batch := inner.Calls(); batch != 2 {
		t.Errorf("fully cached batch should not reach the provider, got %d calls", batch)
	}
}

func TestCachedEmbedder_PropagatesErrors(t *testing.T) {
	inner := NewFuncEmbedder(2, func(string) ([]float32, error) {
		return nil, errors.New("boom")
	})
	c := NewCachedEmbedder(inner, 10)
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := c.cache.Get("x"); ok {
		t.Error("failed embeddings must not be cached")
	}
}
