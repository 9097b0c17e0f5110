package embedding

import (
	"context"
	"fmt"
	"sort"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	batchSize  int
	dimensions int
}

// NewOpenAIEmbedder creates an embedder. baseURL may be empty for the public API.
func NewOpenAIEmbedder(apiKey, baseURL, model string, batchSize int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		batchSize: batchSize,
	}, nil
}

// Embed returns the embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns embeddings for texts in order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := inBatches(ctx, texts, e.batchSize, e.embed)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(vecs) > 0 {
		e.dimensions = len(vecs[0])
	}
	return vecs, nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	out := make([][]float32, len(data))
	for i, d := range data {
		out[i] = d.Embedding
	}
	return out, nil
}

// Dimensions returns the dimensionality of the last embeddings returned, or 0 before the first call.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
