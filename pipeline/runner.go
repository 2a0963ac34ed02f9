package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/wudi/docscan/capture"
)

// Runner serializes pipeline runs. The capture device tolerates only
// one scan at a time, so a single-slot non-blocking worker pool backs
// the policy: an overlapping request is rejected with
// ErrScanInProgress instead of queuing unboundedly.
type Runner struct {
	pipeline *Pipeline
	pool     *ants.Pool
}

// NewRunner wraps p in a single-flight runner.
func NewRunner(p *Pipeline) (*Runner, error) {
	pool, err := ants.NewPool(1, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("pipeline: create runner pool: %w", err)
	}
	return &Runner{pipeline: p, pool: pool}, nil
}

// Run executes one scan, blocking the caller until it completes. A
// second concurrent call is rejected immediately.
func (r *Runner) Run(ctx context.Context, src capture.Source) (*Result, error) {
	done := make(chan *Result, 1)
	err := r.pool.Submit(func() {
		done <- r.pipeline.Run(ctx, src)
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			return nil, ErrScanInProgress
		}
		return nil, fmt.Errorf("pipeline: submit scan: %w", err)
	}
	return <-done, nil
}

// Busy reports whether a scan is currently running.
func (r *Runner) Busy() bool { return r.pool.Running() > 0 }

// Close releases the runner's worker pool.
func (r *Runner) Close() { r.pool.Release() }
