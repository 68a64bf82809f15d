package postgres

import (
	"context"
	"fmt"

	"github.com/jjaoguedes/facegate/internal/database"
	"github.com/pgvector/pgvector-go"
)

// IdentityRepository provides PostgreSQL-backed identity storage. Embeddings
// are stored as pgvector vectors.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Insert enrolls a new identity.
func (r *IdentityRepository) Insert(ctx context.Context, name string, embedding []float32) (database.Identity, error) {
	query := `
		INSERT INTO identities (name, embedding)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	identity := database.Identity{Name: name, Embedding: embedding}
	err := r.pool.QueryRow(ctx, query, name, pgvector.NewVector(embedding)).
		Scan(&identity.ID, &identity.CreatedAt)
	if isUniqueViolation(err) {
		return database.Identity{}, database.ErrDuplicateIdentity
	}
	if err != nil {
		return database.Identity{}, fmt.Errorf("insert identity: %w", err)
	}

	return identity, nil
}

// List returns all enrolled identities ordered by id. The stable ordering is
// part of the matcher contract (first-seen tie-break).
func (r *IdentityRepository) List(ctx context.Context) ([]database.Identity, error) {
	query := `
		SELECT id, name, embedding, created_at
		FROM identities
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []database.Identity
	for rows.Next() {
		var identity database.Identity
		var vec pgvector.Vector
		if err := rows.Scan(&identity.ID, &identity.Name, &vec, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identity.Embedding = vec.Slice()
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}

	return identities, nil
}

// Count returns the number of enrolled identities.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}
