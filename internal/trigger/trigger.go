// Package trigger gates the ingestion cycle on the request path: at most one
// cycle runs at a time, started only when the configured interval has elapsed
// since the last completed run.
package trigger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between completed cycles.
const DefaultInterval = 30 * time.Minute

// Runner is one full pipeline cycle, executed off the request path.
type Runner func(ctx context.Context) error

// Ingestor fetches and processes new postings.
type Ingestor interface {
	UpdateJobSource(ctx context.Context) bool
}

// Reconciler merges ingested jobs into company profiles.
type Reconciler interface {
	UpdateCompanyProfiles(ctx context.Context) bool
}

// Cycle composes ingestion and reconciliation in their required order.
// Reconciliation depends on ingestion's output, so it always runs second.
func Cycle(in Ingestor, rec Reconciler) Runner {
	return func(ctx context.Context) error {
		fetched := in.UpdateJobSource(ctx)
		reconciled := rec.UpdateCompanyProfiles(ctx)
		log.Printf("trigger: cycle complete (fetched=%t reconciled=%t)", fetched, reconciled)
		return nil
	}
}

// Trigger owns the shared "last run" state behind its lock and dispatches
// cycles to a single worker goroutine whose errors are logged.
type Trigger struct {
	interval time.Duration
	tasks    chan Runner
	stop     chan struct{}
	stopOne  sync.Once
	now      func() time.Time

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// New creates a trigger and starts its worker. The runner is required.
func New(interval time.Duration, run Runner) (*Trigger, error) {
	if run == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	t := &Trigger{
		interval: interval,
		tasks:    make(chan Runner, 1),
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	go t.worker(run)
	return t, nil
}

// MaybeRun is evaluated once per inbound unit of work. It returns true when a
// cycle was dispatched: no run has ever completed, or the interval elapsed
// since the last completed run, and no run is currently in flight. The caller
// is never blocked for the duration of the cycle.
func (t *Trigger) MaybeRun() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return false
	}
	if !t.lastRun.IsZero() && t.now().Sub(t.lastRun) < t.interval {
		return false
	}

	select {
	case t.tasks <- nil: // worker runs its own runner; the value is a wake-up
		t.running = true
		return true
	default:
		return false
	}
}

// LastRun returns the completion time of the most recent cycle. Readers may
// observe a slightly stale value; the next request simply re-checks.
func (t *Trigger) LastRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRun
}

// Close stops the worker. A cycle already in flight is allowed to finish.
func (t *Trigger) Close() {
	t.stopOne.Do(func() { close(t.stop) })
}

func (t *Trigger) worker(run Runner) {
	for {
		select {
		case <-t.stop:
			return
		case <-t.tasks:
			if err := run(context.Background()); err != nil {
				log.Printf("trigger: cycle failed: %v", err)
			}
			t.mu.Lock()
			t.lastRun = t.now()
			t.running = false
			t.mu.Unlock()
		}
	}
}
