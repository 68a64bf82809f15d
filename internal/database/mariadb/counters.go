package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jjaoguedes/facegate/internal/database"
)

// CounterRepository provides MariaDB-backed failure counter storage.
type CounterRepository struct {
	pool *Pool
}

// NewCounterRepository creates a new MariaDB counter repository.
func NewCounterRepository(pool *Pool) *CounterRepository {
	return &CounterRepository{pool: pool}
}

// RecordFailure upserts the counter for source inside one transaction, since
// MySQL upserts cannot return the updated row.
func (r *CounterRepository) RecordFailure(ctx context.Context, source string, now time.Time) (database.FailureCounter, error) {
	now = now.UTC()

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return database.FailureCounter{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO failure_counters (source_key, attempts, last_attempt_time)
		VALUES (?, 1, ?)
		ON DUPLICATE KEY UPDATE
			attempts = attempts + 1,
			last_attempt_time = VALUES(last_attempt_time)
	`, source, now)
	if err != nil {
		return database.FailureCounter{}, fmt.Errorf("record failure: %w", err)
	}

	counter := database.FailureCounter{Source: source}
	err = tx.QueryRowContext(ctx,
		"SELECT attempts, last_attempt_time FROM failure_counters WHERE source_key = ?",
		source,
	).Scan(&counter.Attempts, &counter.LastAttempt)
	if err != nil {
		return database.FailureCounter{}, fmt.Errorf("read back failure counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return database.FailureCounter{}, fmt.Errorf("commit failure counter: %w", err)
	}
	return counter, nil
}

// Get returns the counter for source, or nil when absent.
func (r *CounterRepository) Get(ctx context.Context, source string) (*database.FailureCounter, error) {
	var counter database.FailureCounter
	err := r.pool.QueryRow(ctx,
		"SELECT source_key, attempts, last_attempt_time FROM failure_counters WHERE source_key = ?",
		source,
	).Scan(&counter.Source, &counter.Attempts, &counter.LastAttempt)
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
	if _, err := r.pool.Exec(ctx, "DELETE FROM failure_counters WHERE source_key = ?", source); err != nil {
		return fmt.Errorf("delete failure counter: %w", err)
	}
	return nil
}
