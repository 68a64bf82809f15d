// Package mock provides in-memory store implementations for tests. The
// session store reproduces the storage contract faithfully, including the
// one-OPEN-session constraint, so service and handler tests exercise the
// same semantics as the SQL backends.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jjaoguedes/facegate/internal/database"
)

// Store is an in-memory database.Store.
type Store struct {
	identities *IdentityStore
	sessions   *SessionStore
	counters   *CounterStore

	// FailPing, when set, makes Ping return this error.
	FailPing error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	identities := &IdentityStore{}
	return &Store{
		identities: identities,
		sessions:   &SessionStore{identities: identities},
		counters:   &CounterStore{counters: make(map[string]database.FailureCounter)},
	}
}

func (s *Store) Identities() database.IdentityStore { return s.identities }
func (s *Store) Sessions() database.SessionStore    { return s.sessions }
func (s *Store) Counters() database.CounterStore    { return s.counters }
func (s *Store) Ping(ctx context.Context) error     { return s.FailPing }
func (s *Store) Close() error                       { return nil }

// IdentityStore is an in-memory identity repository.
type IdentityStore struct {
	mu     sync.Mutex
	nextID int64
	items  []database.Identity
}

func (s *IdentityStore) Insert(ctx context.Context, name string, embedding []float32) (database.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, identity := range s.items {
		if identity.Name == name {
			return database.Identity{}, database.ErrDuplicateIdentity
		}
	}

	s.nextID++
	identity := database.Identity{
		ID:        s.nextID,
		Name:      name,
		Embedding: append([]float32(nil), embedding...),
		CreatedAt: time.Now(),
	}
	s.items = append(s.items, identity)
	return identity, nil
}

func (s *IdentityStore) List(ctx context.Context) ([]database.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.Identity(nil), s.items...), nil
}

func (s *IdentityStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

// name returns the subject name for reports, empty when unknown.
func (s *IdentityStore) name(subjectID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.items {
		if identity.ID == subjectID {
			return identity.Name
		}
	}
	return ""
}

// SessionStore is an in-memory session repository.
type SessionStore struct {
	mu         sync.Mutex
	identities *IdentityStore
	items      []database.AccessSession

	// FailTransition, when set, makes Transition return this error. Used to
	// simulate storage faults in tests.
	FailTransition error
}

func (s *SessionStore) Transition(ctx context.Context, subjectID int64, now time.Time, minDwell time.Duration) (database.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailTransition != nil {
		return database.Transition{}, s.FailTransition
	}

	latest := s.latestLocked(subjectID)
	decision := database.DecideTransition(latest, now, minDwell)

	switch decision.Kind {
	case database.TransitionEntry:
		for _, session := range s.items {
			if session.SubjectID == subjectID && session.Status == database.StatusOpen {
				return database.Transition{}, database.ErrOpenSessionExists
			}
		}
		session := database.AccessSession{
			ID:        uuid.New(),
			SubjectID: subjectID,
			EntryTime: now,
			Status:    database.StatusOpen,
		}
		s.items = append(s.items, session)
		return database.Transition{Kind: database.TransitionEntry, Session: session}, nil

	case database.TransitionExit:
		for i := range s.items {
			if s.items[i].ID == latest.ID {
				exit := now
				s.items[i].ExitTime = &exit
				s.items[i].Accumulated += decision.Stay
				s.items[i].Status = database.StatusClosed
				return database.Transition{
					Kind:    database.TransitionExit,
					Session: s.items[i],
					Stay:    s.items[i].Accumulated,
				}, nil
			}
		}
		return database.Transition{}, database.ErrNotFound

	default:
		return database.Transition{Kind: database.TransitionBounce, Session: *latest}, nil
	}
}

func (s *SessionStore) latestLocked(subjectID int64) *database.AccessSession {
	var latest *database.AccessSession
	for i := range s.items {
		session := &s.items[i]
		if session.SubjectID != subjectID {
			continue
		}
		if latest == nil || session.EntryTime.After(latest.EntryTime) {
			latest = session
		}
	}
	if latest == nil {
		return nil
	}
	copied := *latest
	return &copied
}

func (s *SessionStore) Latest(ctx context.Context, subjectID int64) (*database.AccessSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestLocked(subjectID), nil
}

func (s *SessionStore) EntriesSince(ctx context.Context, since time.Time) ([]database.SessionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []database.SessionRow
	for _, session := range s.items {
		if session.EntryTime.Before(since) {
			continue
		}
		rows = append(rows, database.SessionRow{
			AccessSession: session,
			SubjectName:   s.identities.name(session.SubjectID),
		})
	}
	sortRows(rows)
	return rows, nil
}

func (s *SessionStore) EntriesBetween(ctx context.Context, from, to time.Time) ([]database.SessionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []database.SessionRow
	for _, session := range s.items {
		if session.EntryTime.Before(from) || !session.EntryTime.Before(to) {
			continue
		}
		rows = append(rows, database.SessionRow{
			AccessSession: session,
			SubjectName:   s.identities.name(session.SubjectID),
		})
	}
	sortRows(rows)
	return rows, nil
}

// OpenCount returns the number of OPEN sessions for a subject. Test helper.
func (s *SessionStore) OpenCount(subjectID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, session := range s.items {
		if session.SubjectID == subjectID && session.Status == database.StatusOpen {
			count++
		}
	}
	return count
}

func sortRows(rows []database.SessionRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SubjectName != rows[j].SubjectName {
			return rows[i].SubjectName < rows[j].SubjectName
		}
		return rows[i].EntryTime.Before(rows[j].EntryTime)
	})
}

// CounterStore is an in-memory failure counter repository.
type CounterStore struct {
	mu       sync.Mutex
	counters map[string]database.FailureCounter
}

func (s *CounterStore) RecordFailure(ctx context.Context, source string, now time.Time) (database.FailureCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[source]
	if !ok {
		counter = database.FailureCounter{Source: source}
	}
	counter.Attempts++
	counter.LastAttempt = now
	s.counters[source] = counter
	return counter, nil
}

func (s *CounterStore) Get(ctx context.Context, source string) (*database.FailureCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[source]
	if !ok {
		return nil, nil
	}
	copied := counter
	return &copied, nil
}

func (s *CounterStore) Delete(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, source)
	return nil
}
