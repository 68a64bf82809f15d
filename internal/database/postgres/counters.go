package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jjaoguedes/facegate/internal/database"
)

// CounterRepository provides PostgreSQL-backed failure counter storage.
// Window policy lives in the lockout guard; this repository is plain keyed
// storage with an atomic upsert.
type CounterRepository struct {
	pool *Pool
}

// NewCounterRepository creates a new PostgreSQL counter repository.
func NewCounterRepository(pool *Pool) *CounterRepository {
	return &CounterRepository{pool: pool}
}

// RecordFailure upserts the counter for source: attempts+1 with the attempt
// time refreshed, regardless of window state.
func (r *CounterRepository) RecordFailure(ctx context.Context, source string, now time.Time) (database.FailureCounter, error) {
	query := `
		INSERT INTO failure_counters (source_key, attempts, last_attempt_time)
		VALUES ($1, 1, $2)
		ON CONFLICT (source_key) DO UPDATE SET
			attempts = failure_counters.attempts + 1,
			last_attempt_time = EXCLUDED.last_attempt_time
		RETURNING attempts, last_attempt_time
	`

	counter := database.FailureCounter{Source: source}
	err := r.pool.QueryRow(ctx, query, source, now).Scan(&counter.Attempts, &counter.LastAttempt)
	if err != nil {
		return database.FailureCounter{}, fmt.Errorf("record failure: %w", err)
	}
	return counter, nil
}

// Get returns the counter for source, or nil when absent.
func (r *CounterRepository) Get(ctx context.Context, source string) (*database.FailureCounter, error) {
	query := `
		SELECT source_key, attempts, last_attempt_time
		FROM failure_counters
		WHERE source_key = $1
	`

	var counter database.FailureCounter
	err := r.pool.QueryRow(ctx, query, source).Scan(&counter.Source, &counter.Attempts, &counter.LastAttempt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get failure counter: %w", err)
	}
	return &counter, nil
}

// Delete removes the counter for source.
func (r *CounterRepository) Delete(ctx context.Context, source string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM failure_counters WHERE source_key = $1", source); err != nil {
		return fmt.Errorf("delete failure counter: %w", err)
	}
	return nil
}
