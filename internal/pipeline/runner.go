package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunFunc performs one complete run.
type RunFunc func(ctx context.Context) (*Summary, error)

// RunStatus describes the runner's current and most recent run.
type RunStatus struct {
	Running   bool      `json:"running"`
	Queued    bool      `json:"queued"`
	Runs      int       `json:"runs"`
	Last      *Summary  `json:"last,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	LastEnded time.Time `json:"last_ended,omitempty"`
}

// Runner serializes runs triggered from the watcher or the HTTP API. A trigger that
// arrives during a run queues exactly one follow-up run.
type Runner struct {
	ctx    context.Context
	run    RunFunc
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	queued  bool
	status  RunStatus
	wg      sync.WaitGroup
}

// NewRunner returns a runner whose runs use ctx.
func NewRunner(ctx context.Context, run RunFunc, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{ctx: ctx, run: run, logger: logger}
}

// Trigger starts a run in the background. It returns false when a run is already
// active, in which case one more run is queued to follow it.
func (r *Runner) Trigger() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.queued = true
		return false
	}
	r.running = true
	r.wg.Add(1)
	go r.loop()
	return true
}

func (r *Runner) loop() {
	defer r.wg.Done()
	for {
		summary, err := r.run(r.ctx)
		r.mu.Lock()
		r.status.Runs++
		r.status.Last = summary
		r.status.LastError = ""
		if err != nil {
			r.status.LastError = err.Error()
		}
		r.status.LastEnded = time.Now()
		again := r.queued && r.ctx.Err() == nil
		r.queued = false
		r.running = again
		r.mu.Unlock()

		if err != nil {
			r.logger.Error("run failed", zap.Error(err))
		}
		if !again {
			return
		}
		r.logger.Info("changes arrived during run, running again")
	}
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status
	s.Running = r.running
	s.Queued = r.queued
	return s
}

// Wait blocks until no run is active.
func (r *Runner) Wait() {
	r.wg.Wait()
}
