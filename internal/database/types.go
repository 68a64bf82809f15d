package database

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of an access session.
type SessionStatus string

const (
	StatusOpen   SessionStatus = "OPEN"
	StatusClosed SessionStatus = "CLOSED"
)

// Identity is an enrolled subject. Identities are immutable: they are created
// at enrollment and loaded wholesale into the in-memory snapshot, never
// mutated in place.
type Identity struct {
	ID        int64
	Name      string
	Embedding []float32
	CreatedAt time.Time
}

// AccessSession is one open-to-close interval of presence for a subject.
// All timestamps are timezone-qualified (TIMESTAMPTZ in storage, time.Time
// with location in Go); naive timestamps never enter this core.
type AccessSession struct {
	ID          uuid.UUID
	SubjectID   int64
	EntryTime   time.Time
	ExitTime    *time.Time // nil while the session is OPEN
	Accumulated time.Duration
	Status      SessionStatus
}

// SessionRow is an access session joined with the subject name, as consumed
// by the report aggregator.
type SessionRow struct {
	AccessSession
	SubjectName string
}

// StayDuration returns the duration this row contributes to reports: the
// accumulated duration when finalized, otherwise exit_time - entry_time,
// and zero for a still-open session.
func (r *SessionRow) StayDuration() time.Duration {
	if r.Accumulated > 0 {
		return r.Accumulated
	}
	if r.ExitTime != nil {
		return r.ExitTime.Sub(r.EntryTime)
	}
	return 0
}

// FailureCounter tracks recognition failures per request source. It is only
// meaningful relative to a sliding window anchored at LastAttempt.
type FailureCounter struct {
	Source      string
	Attempts    int
	LastAttempt time.Time
}
