package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jjaoguedes/facegate/internal/database"
)

// SessionRepository provides PostgreSQL-backed access session storage.
type SessionRepository struct {
	pool *Pool
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(pool *Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Transition drives the state machine for one subject. The latest session is
// read under FOR UPDATE so the decision and the write commit atomically; the
// partial unique index on (subject_id) WHERE status='OPEN' catches the
// remaining first-entry race between transactions that both saw no row.
func (r *SessionRepository) Transition(ctx context.Context, subjectID int64, now time.Time, minDwell time.Duration) (database.Transition, error) {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return database.Transition{}, err
	}
	defer tx.Rollback()

	latest, err := scanLatestForUpdate(ctx, tx, subjectID)
	if err != nil {
		return database.Transition{}, err
	}

	decision := database.DecideTransition(latest, now, minDwell)

	var result database.Transition
	switch decision.Kind {
	case database.TransitionEntry:
		session := database.AccessSession{
			ID:        uuid.New(),
			SubjectID: subjectID,
			EntryTime: now,
			Status:    database.StatusOpen,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO access_sessions (id, subject_id, entry_time, status)
			VALUES ($1, $2, $3, $4)
		`, session.ID, subjectID, now, database.StatusOpen)
		if isUniqueViolation(err) {
			return database.Transition{}, database.ErrOpenSessionExists
		}
		if err != nil {
			return database.Transition{}, fmt.Errorf("open session: %w", err)
		}
		result = database.Transition{Kind: database.TransitionEntry, Session: session}

	case database.TransitionExit:
		res, err := tx.ExecContext(ctx, `
			UPDATE access_sessions
			SET exit_time = $1, accumulated_ms = accumulated_ms + $2, status = $3
			WHERE id = $4 AND status = $5
		`, now, decision.Stay.Milliseconds(), database.StatusClosed, latest.ID, database.StatusOpen)
		if err != nil {
			return database.Transition{}, fmt.Errorf("close session: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return database.Transition{}, fmt.Errorf("close session rows affected: %w", err)
		}
		if affected == 0 {
			// The row lock makes this unreachable; treat it as a storage fault.
			return database.Transition{}, fmt.Errorf("close session: open row %s vanished", latest.ID)
		}
		closed := *latest
		closed.ExitTime = &now
		closed.Accumulated += decision.Stay
		closed.Status = database.StatusClosed
		result = database.Transition{Kind: database.TransitionExit, Session: closed, Stay: closed.Accumulated}

	case database.TransitionBounce:
		result = database.Transition{Kind: database.TransitionBounce, Session: *latest}
	}

	if err := tx.Commit(); err != nil {
		return database.Transition{}, fmt.Errorf("commit transition: %w", err)
	}
	return result, nil
}

// scanLatestForUpdate locks and returns the most recent session for a
// subject, or nil when the subject has none.
func scanLatestForUpdate(ctx context.Context, tx *sql.Tx, subjectID int64) (*database.AccessSession, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, subject_id, entry_time, exit_time, accumulated_ms, status
		FROM access_sessions
		WHERE subject_id = $1
		ORDER BY entry_time DESC
		LIMIT 1
		FOR UPDATE
	`, subjectID)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest session: %w", err)
	}
	return session, nil
}

// Latest returns the most recent session for a subject without locking.
func (r *SessionRepository) Latest(ctx context.Context, subjectID int64) (*database.AccessSession, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, subject_id, entry_time, exit_time, accumulated_ms, status
		FROM access_sessions
		WHERE subject_id = $1
		ORDER BY entry_time DESC
		LIMIT 1
	`, subjectID)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest session: %w", err)
	}
	return session, nil
}

// EntriesSince returns sessions entered at or after since, joined with
// subject names, ordered by name then entry time.
func (r *SessionRepository) EntriesSince(ctx context.Context, since time.Time) ([]database.SessionRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.subject_id, s.entry_time, s.exit_time, s.accumulated_ms, s.status, i.name
		FROM access_sessions s
		JOIN identities i ON i.id = s.subject_id
		WHERE s.entry_time >= $1
		ORDER BY i.name, s.entry_time
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query sessions since: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// EntriesBetween returns sessions entered in [from, to), joined with subject
// names, ordered by name then entry time.
func (r *SessionRepository) EntriesBetween(ctx context.Context, from, to time.Time) ([]database.SessionRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.subject_id, s.entry_time, s.exit_time, s.accumulated_ms, s.status, i.name
		FROM access_sessions s
		JOIN identities i ON i.id = s.subject_id
		WHERE s.entry_time >= $1 AND s.entry_time < $2
		ORDER BY i.name, s.entry_time
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query sessions between: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*database.AccessSession, error) {
	var session database.AccessSession
	var exitTime sql.NullTime
	var accumulatedMs int64
	if err := s.Scan(
		&session.ID, &session.SubjectID, &session.EntryTime,
		&exitTime, &accumulatedMs, &session.Status,
	); err != nil {
		return nil, err
	}
	if exitTime.Valid {
		t := exitTime.Time
		session.ExitTime = &t
	}
	session.Accumulated = time.Duration(accumulatedMs) * time.Millisecond
	return &session, nil
}

func scanSessionRows(rows *sql.Rows) ([]database.SessionRow, error) {
	var result []database.SessionRow
	for rows.Next() {
		var row database.SessionRow
		var exitTime sql.NullTime
		var accumulatedMs int64
		if err := rows.Scan(
			&row.ID, &row.SubjectID, &row.EntryTime,
			&exitTime, &accumulatedMs, &row.Status, &row.SubjectName,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if exitTime.Valid {
			t := exitTime.Time
			row.ExitTime = &t
		}
		row.Accumulated = time.Duration(accumulatedMs) * time.Millisecond
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return result, nil
}
