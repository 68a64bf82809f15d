// Package lockout throttles abusive probing per request source. Failures
// accumulate in a store-backed counter; a source is blocked once it reaches
// the failure threshold inside the sliding window anchored at its last
// attempt.
package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/database"
)

// Guard applies the lockout policy over a counter store.
type Guard struct {
	counters  database.CounterStore
	threshold int
	window    time.Duration
}

// NewGuard creates a lockout guard with the configured threshold and window.
func NewGuard(counters database.CounterStore, cfg config.LockoutConfig) *Guard {
	return &Guard{
		counters:  counters,
		threshold: cfg.FailureThreshold,
		window:    cfg.Window,
	}
}

// RecordFailure counts a recognition failure against source. Counts keep
// accumulating even while the source is already over the threshold; only
// window expiry clears them. A successful match deliberately does not reset
// the counter.
func (g *Guard) RecordFailure(ctx context.Context, source string, now time.Time) error {
	if _, err := g.counters.RecordFailure(ctx, source, now); err != nil {
		return fmt.Errorf("lockout: %w", err)
	}
	return nil
}

// IsBlocked reports whether source is currently locked out. An
// over-threshold counter whose window has elapsed is deleted here: the reset
// is a side effect of the check, not of the passage of time alone.
func (g *Guard) IsBlocked(ctx context.Context, source string, now time.Time) (bool, error) {
	counter, err := g.counters.Get(ctx, source)
	if err != nil {
		return false, fmt.Errorf("lockout: %w", err)
	}
	if counter == nil || counter.Attempts < g.threshold {
		return false, nil
	}

	if now.Sub(counter.LastAttempt) < g.window {
		return true, nil
	}

	if err := g.counters.Delete(ctx, source); err != nil {
		return false, fmt.Errorf("lockout: %w", err)
	}
	return false, nil
}
