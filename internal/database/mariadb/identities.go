package mariadb

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/jjaoguedes/facegate/internal/database"
)

// IdentityRepository provides MariaDB-backed identity storage. Embeddings
// are stored as little-endian float32 blobs.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new MariaDB identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// encodeEmbedding packs a float32 vector into a little-endian blob.
func encodeEmbedding(embedding []float32) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, embedding); err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeEmbedding unpacks a little-endian blob into a float32 vector.
func decodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	embedding := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &embedding); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	return embedding, nil
}

// Insert enrolls a new identity.
func (r *IdentityRepository) Insert(ctx context.Context, name string, embedding []float32) (database.Identity, error) {
	blob, err := encodeEmbedding(embedding)
	if err != nil {
		return database.Identity{}, err
	}

	res, err := r.pool.Exec(ctx, "INSERT INTO identities (name, embedding) VALUES (?, ?)", name, blob)
	if isDuplicateEntry(err) {
		return database.Identity{}, database.ErrDuplicateIdentity
	}
	if err != nil {
		return database.Identity{}, fmt.Errorf("insert identity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return database.Identity{}, fmt.Errorf("insert identity id: %w", err)
	}

	identity := database.Identity{ID: id, Name: name, Embedding: embedding}
	err = r.pool.QueryRow(ctx, "SELECT created_at FROM identities WHERE id = ?", id).Scan(&identity.CreatedAt)
	if err != nil {
		return database.Identity{}, fmt.Errorf("read back identity: %w", err)
	}
	return identity, nil
}

// List returns all enrolled identities ordered by id.
func (r *IdentityRepository) List(ctx context.Context) ([]database.Identity, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, embedding, created_at FROM identities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []database.Identity
	for rows.Next() {
		var identity database.Identity
		var blob []byte
		if err := rows.Scan(&identity.ID, &identity.Name, &blob, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		if identity.Embedding, err = decodeEmbedding(blob); err != nil {
			return nil, err
		}
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
