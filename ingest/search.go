package ingest

import (
	"context"

	"github.com/fwojciec/kbase"
)

// DefaultTopK is the default number of search results returned.
const DefaultTopK = 5

// Searcher is the verification read path for an ingested collection: it
// embeds a query and returns the most similar stored chunks. It has no
// write access to the store.
type Searcher struct {
	Embedder kbase.Embedder
	Store    kbase.VectorStore
}

// Search returns the topK chunks most similar to the query, ranked by
// descending score. topK <= 0 uses DefaultTopK.
func (s *Searcher) Search(ctx context.Context, name, query string, topK int) ([]kbase.SearchResult, error) {
	collection := kbase.NormalizeCollectionName(name)
	if collection == "" {
		return nil, kbase.Errorf(kbase.EINVALID, "knowledge base name required")
	}
	if query == "" {
		return nil, kbase.Errorf(kbase.EINVALID, "query required")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := s.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, kbase.Errorf(kbase.EINTERNAL, "embedder returned %d vectors for 1 query", len(vectors))
	}

	return s.Store.Query(ctx, collection, vectors[0], topK)
}
