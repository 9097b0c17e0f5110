//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/kensho/pkg/utils"
	ort "github.com/yalue/onnxruntime_go"
)

// Tensor names of a standard Hugging Face BERT-family export.
var (
	onnxInputNames  = []string{"input_ids", "attention_mask", "token_type_ids"}
	onnxOutputNames = []string{"last_hidden_state"}
)

// ONNXEmbedder runs a local sentence-embedding model with ONNX Runtime. Token states
// are mean-pooled over the attention mask and L2-normalized. It requires CGO and the
// onnxruntime shared library.
type ONNXEmbedder struct {
	mu         sync.Mutex
	session    *ort.AdvancedSession
	tokenizer  Tokenizer
	dimensions int
	maxTokens  int

	ids, mask, types *ort.Tensor[int64]
	hidden           *ort.Tensor[float32]
}

func destroyTensors(tensors ...ort.ArbitraryTensor) {
	for _, t := range tensors {
		if t != nil {
			_ = t.Destroy()
		}
	}
}

// NewONNXEmbedder loads the model at modelPath. Inputs are padded to maxTokens and the
// model must produce dimensions-wide token states. Caching is layered on by NewEmbedder.
func NewONNXEmbedder(modelPath string, dimensions, maxTokens int) (*ONNXEmbedder, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("onnx embedder requires a model path")
	}
	if dimensions <= 0 || maxTokens <= 0 {
		return nil, fmt.Errorf("onnx embedder requires positive dimensions and max tokens, got %d and %d", dimensions, maxTokens)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	e := &ONNXEmbedder{tokenizer: &HashTokenizer{}, dimensions: dimensions, maxTokens: maxTokens}
	inputShape := ort.NewShape(1, int64(maxTokens))
	var err error
	if e.ids, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
		return nil, fmt.Errorf("failed to allocate input_ids: %w", err)
	}
	if e.mask, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
		e.release()
		return nil, fmt.Errorf("failed to allocate attention_mask: %w", err)
	}
	if e.types, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
		e.release()
		return nil, fmt.Errorf("failed to allocate token_type_ids: %w", err)
	}
	if e.hidden, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(maxTokens), int64(dimensions))); err != nil {
		e.release()
		return nil, fmt.Errorf("failed to allocate %s: %w", onnxOutputNames[0], err)
	}

	e.session, err = ort.NewAdvancedSession(modelPath, onnxInputNames, onnxOutputNames,
		[]ort.ArbitraryTensor{e.ids, e.mask, e.types},
		[]ort.ArbitraryTensor{e.hidden},
		nil,
	)
	if err != nil {
		e.release()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", modelPath, err)
	}
	return e, nil
}

// Embed returns the unit-length embedding for text.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, fmt.Errorf("onnx embedder is closed")
	}

	ids, mask, types := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.ids.GetData(), ids)
	copy(e.mask.GetData(), mask)
	copy(e.types.GetData(), types)
	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := meanPool(e.hidden.GetData(), mask, e.dimensions)
	utils.NormalizeL2(out)
	return out, nil
}

// meanPool averages the token states whose mask is set. hidden is row-major [tokens][dims].
func meanPool(hidden []float32, mask []int64, dims int) []float32 {
	out := make([]float32, dims)
	var n float32
	for tok, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[tok*dims : (tok+1)*dims]
		for i, v := range row {
			out[i] += v
		}
		n++
	}
	if n > 0 {
		for i := range out {
			out[i] /= n
		}
	}
	return out
}

// EmbedBatch embeds texts one at a time; the session is sized for a single sequence.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = emb
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and its tensors.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	e.release()
	return err
}

func (e *ONNXEmbedder) release() {
	var tensors []ort.ArbitraryTensor
	if e.ids != nil {
		tensors = append(tensors, e.ids)
	}
	if e.mask != nil {
		tensors = append(tensors, e.mask)
	}
	if e.types != nil {
		tensors = append(tensors, e.types)
	}
	if e.hidden != nil {
		tensors = append(tensors, e.hidden)
	}
	destroyTensors(tensors...)
	e.ids, e.mask, e.types, e.hidden = nil, nil, nil, nil
}
