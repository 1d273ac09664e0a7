package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fwojciec/kbase"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ kbase.VectorStore = (*Store)(nil)

// Store implements kbase.VectorStore using SQLite. Embeddings are stored
// as little-endian float32 BLOBs; similarity search scans the collection
// and ranks by cosine similarity in Go. Collections here are small enough
// that a linear scan beats maintaining an index.
type Store struct {
	db *DB
}

// NewStore creates a new Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// EnsureCollection returns the named collection, creating it if needed.
func (s *Store) EnsureCollection(ctx context.Context, name string) (*kbase.Collection, error) {
	if name == "" {
		return nil, kbase.Errorf(kbase.EINVALID, "collection name required")
	}

	collection, err := s.findCollection(ctx, name)
	if err == nil {
		return collection, nil
	}
	if kbase.ErrorCode(err) != kbase.ENOTFOUND {
		return nil, err
	}

	now := time.Now().UTC()
	collection = &kbase.Collection{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, collection.ID, collection.Name,
		collection.CreatedAt.Format(time.RFC3339), collection.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	return collection, nil
}

// DeleteCollection removes a collection and all its chunks.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return kbase.Errorf(kbase.ENOTFOUND, "collection %q not found", name)
	}

	return nil
}

// Collections lists all collections ordered by name.
func (s *Store) Collections(ctx context.Context) ([]*kbase.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM collections
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []*kbase.Collection
	for rows.Next() {
		collection, err := scanCollection(rows.Scan)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}

	return collections, rows.Err()
}

// Upsert writes chunks into the collection, inserting or updating by
// (origin, ordinal). All chunks are written in one transaction.
func (s *Store) Upsert(ctx context.Context, collection string, chunks []*kbase.Chunk) error {
	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
		if len(chunk.Embedding) == 0 {
			return kbase.Errorf(kbase.EINVALID, "chunk %s[%d] has no embedding", chunk.Origin, chunk.Ordinal)
		}
	}

	col, err := s.findCollection(ctx, collection)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (collection_id, origin, ordinal, chunk_id, kind, language, content, embedding, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (collection_id, origin, ordinal) DO UPDATE SET
				chunk_id = excluded.chunk_id,
				kind = excluded.kind,
				language = excluded.language,
				content = excluded.content,
				embedding = excluded.embedding,
				updated_at = excluded.updated_at
		`, col.ID, chunk.Origin, chunk.Ordinal, chunk.ID, string(chunk.Kind), chunk.Language,
			chunk.Text, encodeVector(chunk.Embedding), now)
		if err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE collections SET updated_at = ? WHERE id = ?
	`, now, col.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// Count returns the number of chunks stored in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	col, err := s.findCollection(ctx, collection)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection_id = ?", col.ID).Scan(&count)
	return count, err
}

// Query returns the topK chunks most similar to the vector, ranked by
// descending cosine similarity.
func (s *Store) Query(ctx context.Context, collection string, vector []float32, topK int) ([]kbase.SearchResult, error) {
	if len(vector) == 0 {
		return nil, kbase.Errorf(kbase.EINVALID, "query vector required")
	}
	if topK <= 0 {
		return nil, kbase.Errorf(kbase.EINVALID, "topK must be positive")
	}

	col, err := s.findCollection(ctx, collection)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT origin, ordinal, chunk_id, kind, language, content, embedding
		FROM chunks
		WHERE collection_id = ?
	`, col.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []kbase.SearchResult
	for rows.Next() {
		var chunk kbase.Chunk
		var kind string
		var blob []byte

		if err := rows.Scan(&chunk.Origin, &chunk.Ordinal, &chunk.ID, &kind, &chunk.Language,
			&chunk.Text, &blob); err != nil {
			return nil, err
		}
		chunk.Kind = kbase.SourceKind(kind)
		chunk.Embedding = decodeVector(blob)

		results = append(results, kbase.SearchResult{
			Chunk: &chunk,
			Score: cosineSimilarity(vector, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// findCollection retrieves a collection by name.
func (s *Store) findCollection(ctx context.Context, name string) (*kbase.Collection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM collections
		WHERE name = ?
	`, name)

	collection, err := scanCollection(row.Scan)
	if err == sql.ErrNoRows {
		return nil, kbase.Errorf(kbase.ENOTFOUND, "collection %q not found", name)
	}
	if err != nil {
		return nil, err
	}

	return collection, nil
}

// scanCollection scans one collections row, parsing the timestamps.
func scanCollection(scan func(dest ...any) error) (*kbase.Collection, error) {
	var collection kbase.Collection
	var createdAt, updatedAt string

	if err := scan(&collection.ID, &collection.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	collection.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	collection.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &collection, nil
}

// encodeVector serializes a vector as little-endian float32 bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector deserializes little-endian float32 bytes.
func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
