package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaEmbedder calls the Ollama /api/embed endpoint.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	batchSize  int
	dimensions int
	httpClient *http.Client
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaEmbedder creates an embedder for a model served by Ollama at baseURL.
// batchSize <= 0 sends each batch in one request.
func NewOllamaEmbedder(baseURL, model string, timeout time.Duration, batchSize int) (*OllamaEmbedder, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama embedding model must be specified (e.g., mxbai-embed-large)")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &OllamaEmbedder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		batchSize:  batchSize,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Embed returns the embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns embeddings for texts in order.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := inBatches(ctx, texts, e.batchSize, e.embed)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(vecs) > 0 {
		e.dimensions = len(vecs[0])
	}
	return vecs, nil
}

func (e *OllamaEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp.Embeddings, nil
}

// Dimensions returns the dimensionality of the last embeddings returned, or 0 before the first call.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close releases idle connections.
func (e *OllamaEmbedder) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}
