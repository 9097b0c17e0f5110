package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOllamaEmbedder_EmbedBatch(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("Expected path /api/embed, got %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "mxbai-embed-large" {
			t.Errorf("unexpected model %s", req.Model)
		}
		requests++
		resp := ollamaEmbedResponse{Model: req.Model}
		for _, in := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(len(in)), 0, 1})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e, err := NewOllamaEmbedder(server.URL+"/", "mxbai-embed-large", 5*time.Second, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vecs) != 3 || vecs[2][0] != 3 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
	if requests != 2 {
		t.Errorf("batch size 2 over 3 texts should take 2 requests, got %d", requests)
	}
	if e.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}
}

func TestOllamaEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	e, _ := NewOllamaEmbedder(server.URL, "missing", time.Second, 0)
	_, err := e.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error should carry the API message, got %v", err)
	}
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer server.Close()

	e, _ := NewOllamaEmbedder(server.URL, "m", time.Second, 0)
	if _, err := e.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error when the server returns fewer embeddings than inputs")
	}
}

func TestNewOllamaEmbedder_RequiresModel(t *testing.T) {
	if _, err := NewOllamaEmbedder("", "", 0, 0); err == nil {
		t.Fatal("expected error for empty model")
	}
}
