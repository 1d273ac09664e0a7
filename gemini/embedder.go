// Package gemini provides Google Gemini implementations of kbase services.
package gemini

import (
	"context"

	"github.com/fwojciec/kbase"
	"google.golang.org/genai"
)

const embeddingModel = "text-embedding-004"

// Compile-time interface verification.
var _ kbase.Embedder = (*Embedder)(nil)

// Embedder implements kbase.Embedder using the Gemini embedding API.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new Embedder using the default embedding model.
func NewEmbedder(client *genai.Client) *Embedder {
	return &Embedder{client: client, model: embeddingModel}
}

// Embed converts texts into embedding vectors, one per input, in input
// order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, kbase.Errorf(kbase.EINVALID, "at least one text required")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		if text == "" {
			return nil, kbase.Errorf(kbase.EINVALID, "text at index %d is empty", i)
		}
		contents[i] = genai.NewContentFromText(text, "user")
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, kbase.Errorf(kbase.EINTERNAL, "gemini returned %d embeddings for %d texts",
			embeddingCount(result), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func embeddingCount(result *genai.EmbedContentResponse) int {
	if result == nil {
		return 0
	}
	return len(result.Embeddings)
}
