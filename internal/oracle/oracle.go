// Package oracle asks a language model whether a claim is compatible with retrieved context.
package oracle

import (
	"context"

	"github.com/hyperjump/kensho/internal/models"
)

// Verifier judges one claim against its retrieved context. Implementations fail open:
// a malformed or missing answer yields label 1 with a rationale describing the failure.
// Only context cancellation is returned as an error.
type Verifier interface {
	Verify(ctx context.Context, evidence, claim string) (models.Verdict, error)
}

// Provider sends a prompt to a model and returns its raw completion.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options holds the model settings shared by every provider.
type Options struct {
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
	TimeoutSecs int
}
