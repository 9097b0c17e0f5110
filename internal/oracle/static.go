package oracle

import (
	"context"

	"github.com/hyperjump/kensho/internal/models"
)

// StaticVerifier returns the same verdict for every claim. It backs the "static"
// provider used for dry runs and tests.
type StaticVerifier struct {
	Verdict models.Verdict
}

// NewStaticVerifier returns a verifier that always answers label with rationale.
func NewStaticVerifier(label int, rationale string) *StaticVerifier {
	return &StaticVerifier{Verdict: models.Verdict{Label: label, Rationale: rationale}}
}

// Verify returns the configured verdict.
func (s *StaticVerifier) Verify(ctx context.Context, _, _ string) (models.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return models.Verdict{}, err
	}
	return s.Verdict, nil
}
