package mariadb

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/database"
)

// schema holds the DDL applied at startup. MariaDB has no partial indexes
// and no functional key parts, so the one-OPEN-session invariant uses a
// generated column that is NULL for CLOSED rows with a plain unique key on
// it. Unique keys ignore NULLs, so any number of CLOSED rows coexist while a
// second OPEN row for the same subject is rejected.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS identities (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL UNIQUE,
		embedding   BLOB NOT NULL,
		created_at  DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)
	)`,
	`CREATE TABLE IF NOT EXISTS access_sessions (
		id              CHAR(36) PRIMARY KEY,
		subject_id      BIGINT NOT NULL,
		entry_time      DATETIME(3) NOT NULL,
		exit_time       DATETIME(3) NULL,
		accumulated_ms  BIGINT NOT NULL DEFAULT 0,
		status          VARCHAR(10) NOT NULL,
		open_subject    BIGINT AS (CASE WHEN status = 'OPEN' THEN subject_id END) VIRTUAL,
		KEY access_sessions_subject_entry_idx (subject_id, entry_time DESC),
		KEY access_sessions_entry_idx (entry_time),
		UNIQUE KEY access_sessions_one_open_idx (open_subject),
		CONSTRAINT fk_access_sessions_subject
			FOREIGN KEY (subject_id) REFERENCES identities (id)
	)`,
	`CREATE TABLE IF NOT EXISTS failure_counters (
		source_key         VARCHAR(255) PRIMARY KEY,
		attempts           INT NOT NULL,
		last_attempt_time  DATETIME(3) NOT NULL
	)`,
}

// Store bundles the MariaDB-backed repositories.
type Store struct {
	pool       *Pool
	identities *IdentityRepository
	sessions   *SessionRepository
	counters   *CounterRepository
}

// Open connects to MariaDB, ensures the schema and returns the store.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	pool, err := NewPool(cfg.URL, cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err != nil {
		return nil, fmt.Errorf("failed to create MariaDB pool: %w", err)
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
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

// Pool exposes the underlying pool for health checks.
func (s *Store) Pool() *Pool { return s.pool }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// isDuplicateEntry reports whether err is a MySQL duplicate key error (1062).
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
