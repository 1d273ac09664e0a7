package ingest_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/kbase"
	"github.com/fwojciec/kbase/ingest"
	"github.com/fwojciec/kbase/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(upserts *[][]*kbase.Chunk) *mock.VectorStore {
	return &mock.VectorStore{
		EnsureCollectionFn: func(ctx context.Context, name string) (*kbase.Collection, error) {
			return &kbase.Collection{ID: "c1", Name: name}, nil
		},
		DeleteCollectionFn: func(ctx context.Context, name string) error {
			return nil
		},
		UpsertFn: func(ctx context.Context, collection string, chunks []*kbase.Chunk) error {
			if upserts != nil {
				*upserts = append(*upserts, chunks)
			}
			return nil
		},
	}
}

func testEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{float32(len(texts[i])), 1}
			}
			return vectors, nil
		},
	}
}

func webCrawler(pages ...*kbase.Page) *mock.SiteCrawler {
	return &mock.SiteCrawler{
		CrawlSiteFn: func(ctx context.Context, rootURL string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error) {
			return &kbase.CrawlResult{Pages: pages}, nil
		},
	}
}

func TestIngestor_Ingest(t *testing.T) {
	t.Parallel()

	var upserts [][]*kbase.Chunk
	ing := &ingest.Ingestor{
		Crawler: webCrawler(
			&kbase.Page{Origin: "https://example.com/a", Kind: kbase.SourceWeb, Text: "alpha content"},
			&kbase.Page{Origin: "https://example.com/b", Kind: kbase.SourceWeb, Text: "beta content"},
		),
		Embedder: testEmbedder(),
		Store:    testStore(&upserts),
	}

	summary, err := ing.Ingest(context.Background(), "SEPA", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{})
	require.NoError(t, err)

	assert.Equal(t, "sepa_docs", summary.Collection)
	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, 2, summary.ChunksWritten)
	assert.Equal(t, 0, summary.ChunksFailed)
	assert.Empty(t, summary.SourcesFailed)

	require.Len(t, upserts, 1)
	chunks := upserts[0]
	require.Len(t, chunks, 2)
	assert.Equal(t, kbase.ChunkID("https://example.com/a", 0), chunks[0].ID)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, "alpha content", chunks[0].Text)
	assert.NotEmpty(t, chunks[0].Embedding)
}

func TestIngestor_Validation(t *testing.T) {
	t.Parallel()

	ing := &ingest.Ingestor{}

	tests := []struct {
		name    string
		kbName  string
		sources []kbase.Source
	}{
		{"empty name", "", []kbase.Source{kbase.WebSource("https://example.com")}},
		{"no sources", "docs", nil},
		{"invalid web URL", "docs", []kbase.Source{kbase.WebSource("://bad")}},
		{"empty pdf path", "docs", []kbase.Source{kbase.PDFSource("")}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ing.Ingest(context.Background(), tt.kbName, tt.sources, ingest.Options{})
			require.Error(t, err)
			assert.Equal(t, kbase.EINVALID, kbase.ErrorCode(err))
		})
	}
}

func TestIngestor_OverwriteDeletesCollection(t *testing.T) {
	t.Parallel()

	var deleted []string
	store := testStore(nil)
	store.DeleteCollectionFn = func(ctx context.Context, name string) error {
		deleted = append(deleted, name)
		return kbase.Errorf(kbase.ENOTFOUND, "collection %q not found", name)
	}

	ing := &ingest.Ingestor{
		Crawler:  webCrawler(&kbase.Page{Origin: "https://example.com/a", Kind: kbase.SourceWeb, Text: "text"}),
		Embedder: testEmbedder(),
		Store:    store,
	}

	// ENOTFOUND from delete is not an error: there was nothing to replace.
	_, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs_docs"}, deleted)
}

func TestIngestor_OverwriteStoreErrorIsFatal(t *testing.T) {
	t.Parallel()

	store := testStore(nil)
	store.DeleteCollectionFn = func(ctx context.Context, name string) error {
		return kbase.Errorf(kbase.EINTERNAL, "disk error")
	}

	ing := &ingest.Ingestor{Store: store}

	_, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{Overwrite: true})
	require.Error(t, err)
	assert.Equal(t, kbase.EINTERNAL, kbase.ErrorCode(err))
}

func TestIngestor_NoOverwriteSkipsDelete(t *testing.T) {
	t.Parallel()

	store := testStore(nil)
	store.DeleteCollectionFn = func(ctx context.Context, name string) error {
		t.Fatal("DeleteCollection should not be called without overwrite")
		return nil
	}

	ing := &ingest.Ingestor{
		Crawler:  webCrawler(),
		Embedder: testEmbedder(),
		Store:    store,
	}

	_, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{})
	require.NoError(t, err)
}

func TestIngestor_SourceFailureIsIsolated(t *testing.T) {
	t.Parallel()

	var upserts [][]*kbase.Chunk
	ing := &ingest.Ingestor{
		Crawler: &mock.SiteCrawler{
			CrawlSiteFn: func(ctx context.Context, rootURL string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error) {
				if rootURL == "https://down.example.com" {
					return nil, kbase.Errorf(kbase.EUNAVAILABLE, "host unreachable")
				}
				return &kbase.CrawlResult{Pages: []*kbase.Page{
					{Origin: rootURL + "/page", Kind: kbase.SourceWeb, Text: "content"},
				}}, nil
			},
		},
		Parser: &mock.DocumentParser{
			ParseFn: func(ctx context.Context, path string) ([]*kbase.Page, error) {
				return nil, kbase.Errorf(kbase.EINTERNAL, "corrupt pdf")
			},
		},
		Embedder: testEmbedder(),
		Store:    testStore(&upserts),
	}

	sources := []kbase.Source{
		kbase.WebSource("https://down.example.com"),
		kbase.WebSource("https://up.example.com"),
		kbase.PDFSource("/docs/broken.pdf"),
	}

	summary, err := ing.Ingest(context.Background(), "docs", sources, ingest.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://down.example.com", "/docs/broken.pdf"}, summary.SourcesFailed)
	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, 1, summary.ChunksWritten)
}

func TestIngestor_DeduplicatesPagesByOrigin(t *testing.T) {
	t.Parallel()

	var upserts [][]*kbase.Chunk
	ing := &ingest.Ingestor{
		Crawler: &mock.SiteCrawler{
			CrawlSiteFn: func(ctx context.Context, rootURL string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error) {
				// Both roots discover the same shared page.
				return &kbase.CrawlResult{Pages: []*kbase.Page{
					{Origin: "https://example.com/shared", Kind: kbase.SourceWeb, Text: "from " + rootURL},
					{Origin: rootURL + "/own", Kind: kbase.SourceWeb, Text: "own page"},
				}}, nil
			},
		},
		Embedder: testEmbedder(),
		Store:    testStore(&upserts),
	}

	sources := []kbase.Source{
		kbase.WebSource("https://a.example.com"),
		kbase.WebSource("https://b.example.com"),
	}

	summary, err := ing.Ingest(context.Background(), "docs", sources, ingest.Options{})
	require.NoError(t, err)

	// The shared page counts once, first occurrence wins.
	assert.Equal(t, 3, summary.Pages)
	require.Len(t, upserts, 1)
	for _, c := range upserts[0] {
		if c.Origin == "https://example.com/shared" {
			assert.Equal(t, "from https://a.example.com", c.Text)
		}
	}
}

func TestIngestor_SkipsEmptyPages(t *testing.T) {
	t.Parallel()

	ing := &ingest.Ingestor{
		Crawler: webCrawler(
			&kbase.Page{Origin: "https://example.com/empty", Kind: kbase.SourceWeb},
			&kbase.Page{Origin: "https://example.com/full", Kind: kbase.SourceWeb, Text: "content"},
		),
		Embedder: testEmbedder(),
		Store:    testStore(nil),
	}

	summary, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Pages)
}

func TestIngestor_EmbedBatching(t *testing.T) {
	t.Parallel()

	pages := make([]*kbase.Page, 5)
	for i := range pages {
		pages[i] = &kbase.Page{
			Origin: "https://example.com/" + strings.Repeat("x", i+1),
			Kind:   kbase.SourceWeb,
			Text:   "page content",
		}
	}

	var batchSizes []int
	var upserts [][]*kbase.Chunk
	ing := &ingest.Ingestor{
		Crawler: webCrawler(pages...),
		Embedder: &mock.Embedder{
			EmbedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				batchSizes = append(batchSizes, len(texts))
				vectors := make([][]float32, len(texts))
				for i := range vectors {
					vectors[i] = []float32{1}
				}
				return vectors, nil
			},
		},
		Store:     testStore(&upserts),
		BatchSize: 2,
	}

	summary, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, batchSizes)
	assert.Len(t, upserts, 3)
	assert.Equal(t, 5, summary.ChunksWritten)
}

func TestIngestor_EmbedFailureCountsBatchAndContinues(t *testing.T) {
	t.Parallel()

	pages := []*kbase.Page{
		{Origin: "https://example.com/a", Kind: kbase.SourceWeb, Text: "first"},
		{Origin: "https://example.com/b", Kind: kbase.SourceWeb, Text: "second"},
	}

	attempts := 0
	var upserts [][]*kbase.Chunk
	ing := &ingest.Ingestor{
		Crawler: webCrawler(pages...),
		Embedder: &mock.Embedder{
			EmbedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				if texts[0] == "first" {
					attempts++
					return nil, kbase.Errorf(kbase.EUNAVAILABLE, "rate limited")
				}
				return [][]float32{{1}}, nil
			},
		},
		Store:           testStore(&upserts),
		BatchSize:       1,
		EmbedAttempts:   2,
		EmbedRetryDelay: time.Millisecond,
	}

	summary, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, summary.ChunksFailed)
	assert.Equal(t, 1, summary.ChunksWritten)
	require.Len(t, upserts, 1)
	assert.Equal(t, "second", upserts[0][0].Text)
}

func TestIngestor_UpsertErrorIsFatal(t *testing.T) {
	t.Parallel()

	store := testStore(nil)
	store.UpsertFn = func(ctx context.Context, collection string, chunks []*kbase.Chunk) error {
		return kbase.Errorf(kbase.EINTERNAL, "database is locked")
	}

	ing := &ingest.Ingestor{
		Crawler:  webCrawler(&kbase.Page{Origin: "https://example.com/a", Kind: kbase.SourceWeb, Text: "text"}),
		Embedder: testEmbedder(),
		Store:    store,
	}

	_, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{})
	require.Error(t, err)
	assert.Equal(t, kbase.EINTERNAL, kbase.ErrorCode(err))
}

func TestIngestor_ReingestProducesSameChunkIDs(t *testing.T) {
	t.Parallel()

	run := func() []string {
		var upserts [][]*kbase.Chunk
		ing := &ingest.Ingestor{
			Crawler: webCrawler(
				&kbase.Page{Origin: "https://example.com/a", Kind: kbase.SourceWeb, Text: "stable content"},
			),
			Embedder: testEmbedder(),
			Store:    testStore(&upserts),
		}
		_, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{})
		require.NoError(t, err)

		var ids []string
		for _, batch := range upserts {
			for _, c := range batch {
				ids = append(ids, c.ID)
			}
		}
		return ids
	}

	assert.Equal(t, run(), run())
}

func TestIngestor_CountsTokens(t *testing.T) {
	t.Parallel()

	ing := &ingest.Ingestor{
		Crawler: webCrawler(
			&kbase.Page{Origin: "https://example.com/a", Kind: kbase.SourceWeb, Text: "one two three"},
			&kbase.Page{Origin: "https://example.com/b", Kind: kbase.SourceWeb, Text: "four five"},
		),
		Embedder: testEmbedder(),
		Store:    testStore(nil),
		Tokens: &mock.TokenCounter{
			CountTokensFn: func(ctx context.Context, text string) (int, error) {
				return len(strings.Fields(text)), nil
			},
		},
	}

	summary, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, ingest.Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Tokens)
}

func TestIngestor_PassesCrawlOptions(t *testing.T) {
	t.Parallel()

	var got kbase.CrawlOptions
	ing := &ingest.Ingestor{
		Crawler: &mock.SiteCrawler{
			CrawlSiteFn: func(ctx context.Context, rootURL string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error) {
				got = opts
				return &kbase.CrawlResult{}, nil
			},
		},
		Embedder: testEmbedder(),
		Store:    testStore(nil),
	}

	opts := ingest.Options{Recursive: true, TranslateTo: "en"}
	_, err := ing.Ingest(context.Background(), "docs", []kbase.Source{kbase.WebSource("https://example.com")}, opts)
	require.NoError(t, err)

	assert.True(t, got.Recursive)
	assert.Equal(t, "en", got.TranslateTo)
}
