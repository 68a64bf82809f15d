package access

import (
	"context"
	"fmt"

	"github.com/jjaoguedes/facegate/internal/database"
	"github.com/jjaoguedes/facegate/internal/imaging"
)

// Enroll registers a new identity from a reference photo. The photo must
// contain exactly one face; the stored name is canonicalized so later
// enrollments of the same person collide on the unique name constraint.
// The published snapshot is refreshed so the new identity matches
// immediately.
func (s *Service) Enroll(ctx context.Context, name string, image []byte) (database.Identity, error) {
	canonical := CanonicalName(name)
	if canonical == "" {
		return database.Identity{}, fmt.Errorf("%w: empty name", ErrInvalidInput)
	}

	probe, err := imaging.NormalizeProbe(image)
	if err != nil {
		return database.Identity{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	embeddings, err := s.extractor.Extract(ctx, probe)
	if err != nil {
		return database.Identity{}, fmt.Errorf("extract embeddings: %w", err)
	}
	if len(embeddings) == 0 {
		return database.Identity{}, ErrNoFaceDetected
	}
	if len(embeddings) > 1 {
		return database.Identity{}, fmt.Errorf("%w: expected one face, found %d", ErrInvalidInput, len(embeddings))
	}
	if len(embeddings[0]) != s.dim {
		return database.Identity{}, fmt.Errorf("%w: embedding has %d dimensions, want %d", ErrInvalidInput, len(embeddings[0]), s.dim)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	identity, err := s.store.Identities().Insert(opCtx, canonical, embeddings[0])
	if err != nil {
		return database.Identity{}, fmt.Errorf("enroll %q: %w", canonical, err)
	}

	if _, err := s.ReloadSnapshot(ctx); err != nil {
		return identity, fmt.Errorf("identity stored but snapshot reload failed: %w", err)
	}
	return identity, nil
}
