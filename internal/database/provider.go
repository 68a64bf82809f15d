package database

import (
	"context"
	"time"
)

// IdentityStore persists enrolled identities.
type IdentityStore interface {
	// Insert enrolls a new identity and returns the stored record.
	Insert(ctx context.Context, name string, embedding []float32) (Identity, error)
	// List returns all enrolled identities in a fixed, stable order (by id).
	// The matcher relies on this ordering for its tie-break semantics.
	List(ctx context.Context) ([]Identity, error)
	// Count returns the number of enrolled identities.
	Count(ctx context.Context) (int, error)
}

// SessionStore persists access sessions and executes state transitions.
type SessionStore interface {
	// Transition drives the state machine for a subject at time now. The
	// read-decide-write sequence runs inside a single transaction; the
	// at-most-one-OPEN-session invariant is additionally enforced by a
	// storage-level unique constraint so it holds across processes.
	Transition(ctx context.Context, subjectID int64, now time.Time, minDwell time.Duration) (Transition, error)

	// Latest returns the most recently created session for a subject,
	// ordered by entry_time descending, or nil when none exists.
	Latest(ctx context.Context, subjectID int64) (*AccessSession, error)

	// EntriesSince returns sessions with entry_time >= since joined with
	// subject names, ordered by subject name then entry_time ascending.
	EntriesSince(ctx context.Context, since time.Time) ([]SessionRow, error)

	// EntriesBetween returns sessions with entry_time in [from, to) joined
	// with subject names, ordered by subject name then entry_time ascending.
	EntriesBetween(ctx context.Context, from, to time.Time) ([]SessionRow, error)
}

// CounterStore persists per-source failure counters. Window policy lives in
// the lockout guard; the store is plain keyed storage.
type CounterStore interface {
	// RecordFailure upserts the counter for source: attempts+1 and
	// last_attempt_time refreshed to now, regardless of window state.
	// Returns the counter after the update.
	RecordFailure(ctx context.Context, source string, now time.Time) (FailureCounter, error)
	// Get returns the counter for source, or nil when absent.
	Get(ctx context.Context, source string) (*FailureCounter, error)
	// Delete removes the counter for source. Deleting an absent counter is
	// not an error.
	Delete(ctx context.Context, source string) error
}

// Store aggregates the three repositories of one storage backend.
type Store interface {
	Identities() IdentityStore
	Sessions() SessionStore
	Counters() CounterStore
	// Ping verifies the backend is reachable. Used by the health endpoint.
	Ping(ctx context.Context) error
	Close() error
}
