package database

import "time"

// TransitionKind classifies the outcome of driving the session state machine
// with a recognized subject.
type TransitionKind string

const (
	// TransitionEntry opened a new session (NO_SESSION -> OPEN).
	TransitionEntry TransitionKind = "entry"
	// TransitionExit closed the open session (OPEN -> CLOSED).
	TransitionExit TransitionKind = "exit"
	// TransitionBounce left the open session untouched because the
	// recognition arrived inside the minimum dwell interval.
	TransitionBounce TransitionKind = "bounce"
)

// Decision is the pure outcome of the state machine transition table, before
// any write is attempted.
type Decision struct {
	Kind TransitionKind
	// Stay is now - entry_time for an exit decision, zero otherwise.
	Stay time.Duration
}

// Transition is a committed state change for a subject.
type Transition struct {
	Kind    TransitionKind
	Session AccessSession
	// Stay carries the accumulated duration of the stay on exit.
	Stay time.Duration
}

// DecideTransition applies the state machine transition table to the most
// recent session of a subject. A nil latest session, or one already CLOSED,
// means NO_SESSION and produces an entry. An OPEN session produces an exit
// once now - entry_time has reached minDwell, and a bounce (no-op) before
// that. minDwell of zero disables the anti-bounce guard.
//
// Store implementations call this inside the same transaction that read the
// latest session, so the decision and the write commit as one atomic unit.
func DecideTransition(latest *AccessSession, now time.Time, minDwell time.Duration) Decision {
	if latest == nil || latest.Status == StatusClosed {
		return Decision{Kind: TransitionEntry}
	}

	stay := now.Sub(latest.EntryTime)
	if stay < minDwell {
		return Decision{Kind: TransitionBounce}
	}
	return Decision{Kind: TransitionExit, Stay: stay}
}
