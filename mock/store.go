package mock

import (
	"context"

	"github.com/fwojciec/kbase"
)

var _ kbase.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of kbase.VectorStore.
type VectorStore struct {
	EnsureCollectionFn func(ctx context.Context, name string) (*kbase.Collection, error)
	DeleteCollectionFn func(ctx context.Context, name string) error
	CollectionsFn      func(ctx context.Context) ([]*kbase.Collection, error)
	UpsertFn           func(ctx context.Context, collection string, chunks []*kbase.Chunk) error
	CountFn            func(ctx context.Context, collection string) (int, error)
	QueryFn            func(ctx context.Context, collection string, vector []float32, topK int) ([]kbase.SearchResult, error)
}

func (s *VectorStore) EnsureCollection(ctx context.Context, name string) (*kbase.Collection, error) {
	return s.EnsureCollectionFn(ctx, name)
}

func (s *VectorStore) DeleteCollection(ctx context.Context, name string) error {
	return s.DeleteCollectionFn(ctx, name)
}

func (s *VectorStore) Collections(ctx context.Context) ([]*kbase.Collection, error) {
	return s.CollectionsFn(ctx)
}

func (s *VectorStore) Upsert(ctx context.Context, collection string, chunks []*kbase.Chunk) error {
	return s.UpsertFn(ctx, collection, chunks)
}

func (s *VectorStore) Count(ctx context.Context, collection string) (int, error) {
	return s.CountFn(ctx, collection)
}

func (s *VectorStore) Query(ctx context.Context, collection string, vector []float32, topK int) ([]kbase.SearchResult, error) {
	return s.QueryFn(ctx, collection, vector, topK)
}
