package kbase

import "context"

// Embedder converts text batches into fixed-dimension vectors.
// The returned vectors are in the same order as the input texts.
// Authentication to the upstream model is managed by the caller.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
