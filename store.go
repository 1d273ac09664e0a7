package kbase

import (
	"context"
	"strings"
	"time"
)

// Collection is a named persistent grouping of chunk vectors and metadata
// representing one knowledge base.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the collection contains invalid fields.
func (c *Collection) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "collection name required")
	}
	return nil
}

// NormalizeCollectionName converts a knowledge-base name into its stored
// collection name: lowercased with a "_docs" suffix.
func NormalizeCollectionName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if !strings.HasSuffix(name, "_docs") {
		name += "_docs"
	}
	return name
}

// SearchResult is one ranked match from a similarity query.
type SearchResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float32 `json:"score"`
}

// VectorStore persists chunk vectors grouped into named collections.
// Upserts key on (origin, ordinal), so re-running ingestion for the same
// sources updates chunks in place instead of duplicating them.
type VectorStore interface {
	// EnsureCollection returns the named collection, creating it if needed.
	EnsureCollection(ctx context.Context, name string) (*Collection, error)

	// DeleteCollection removes a collection and all its chunks.
	// Returns ENOTFOUND if the collection does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// Collections lists all collections.
	Collections(ctx context.Context) ([]*Collection, error)

	// Upsert writes chunks into the collection, inserting or updating by
	// (origin, ordinal).
	Upsert(ctx context.Context, collection string, chunks []*Chunk) error

	// Count returns the number of chunks stored in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// Query returns the topK chunks most similar to the vector,
	// ranked by descending score.
	Query(ctx context.Context, collection string, vector []float32, topK int) ([]SearchResult, error)
}
