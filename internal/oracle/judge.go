package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/kensho/internal/limiter"
	"github.com/hyperjump/kensho/internal/models"
	"go.uber.org/zap"
)

// Judge is the Verifier backed by a model Provider. Transport failures are retried
// with linear backoff and then fail open.
type Judge struct {
	provider Provider
	retries  int
	backoff  time.Duration
	limiter  *limiter.Limiter
	logger   *zap.Logger
}

// JudgeOption configures a Judge.
type JudgeOption func(*Judge)

// WithRetries sets how many times a failed completion is retried and the base backoff.
func WithRetries(retries int, backoff time.Duration) JudgeOption {
	return func(j *Judge) {
		j.retries = retries
		j.backoff = backoff
	}
}

// WithLimiter makes every completion wait on the oracle bucket of l.
func WithLimiter(l *limiter.Limiter) JudgeOption {
	return func(j *Judge) { j.limiter = l }
}

// WithLogger sets a logger for retry and fail-open warnings.
func WithLogger(l *zap.Logger) JudgeOption {
	return func(j *Judge) { j.logger = l }
}

// NewJudge creates a Judge over provider.
func NewJudge(provider Provider, opts ...JudgeOption) *Judge {
	j := &Judge{provider: provider, backoff: time.Second, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Verify prompts the model and parses its answer.
func (j *Judge) Verify(ctx context.Context, evidence, claim string) (models.Verdict, error) {
	raw, err := j.complete(ctx, BuildPrompt(evidence, claim))
	if err != nil {
		if ctx.Err() != nil {
			return models.Verdict{}, ctx.Err()
		}
		j.logger.Warn("oracle unavailable, failing open",
			zap.String("provider", j.provider.Name()), zap.Error(err))
		return models.Verdict{
			Label:     models.LabelConsistent,
			Rationale: fmt.Sprintf("Oracle error: %v", err),
			Degraded:  true,
		}, nil
	}
	return ParseResponse(raw), nil
}

func (j *Judge) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= j.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * j.backoff
			j.logger.Debug("retrying oracle call",
				zap.Int("attempt", attempt), zap.Duration("backoff", wait), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
		if j.limiter != nil {
			if err := j.limiter.Wait(ctx, limiter.ServiceOracle); err != nil {
				return "", err
			}
		}
		raw, err := j.provider.Complete(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("%s failed after %d attempts: %w", j.provider.Name(), j.retries+1, lastErr)
}
