package matcher

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jjaoguedes/facegate/internal/database"
)

// Snapshot holds the in-memory view of enrolled identities. It is read-only
// after publish: Reload builds a fresh candidate slice and swaps the pointer
// atomically, so concurrent readers always see a consistent version and
// matching never takes a lock.
type Snapshot struct {
	store   database.IdentityStore
	current atomic.Pointer[[]Candidate]
}

// NewSnapshot creates an empty snapshot backed by an identity store.
func NewSnapshot(store database.IdentityStore) *Snapshot {
	s := &Snapshot{store: store}
	empty := make([]Candidate, 0)
	s.current.Store(&empty)
	return s
}

// Reload loads all identities from the store and publishes them as the new
// snapshot. Returns the number of loaded identities.
func (s *Snapshot) Reload(ctx context.Context) (int, error) {
	identities, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("reload identity snapshot: %w", err)
	}

	candidates := make([]Candidate, 0, len(identities))
	for _, identity := range identities {
		candidates = append(candidates, Candidate{
			ID:        identity.ID,
			Name:      identity.Name,
			Embedding: identity.Embedding,
		})
	}

	s.current.Store(&candidates)
	return len(candidates), nil
}

// Candidates returns the published candidate slice. Callers must not mutate
// it.
func (s *Snapshot) Candidates() []Candidate {
	return *s.current.Load()
}
