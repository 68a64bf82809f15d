package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/database"
	"github.com/lib/pq"
)

// Store bundles the PostgreSQL-backed repositories.
type Store struct {
	pool       *Pool
	identities *IdentityRepository
	sessions   *SessionRepository
	counters   *CounterRepository
}

// Open connects to PostgreSQL, runs pending migrations and returns the store.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		pool:       pool,
		identities: NewIdentityRepository(pool),
		sessions:   NewSessionRepository(pool),
		counters:   NewCounterRepository(pool),
	}, nil
}

func (s *Store) Identities() database.IdentityStore { return s.identities }
func (s *Store) Sessions() database.SessionStore    { return s.sessions }
func (s *Store) Counters() database.CounterStore    { return s.counters }

// Pool exposes the underlying pool.
func (s *Store) Pool() *Pool { return s.pool }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
