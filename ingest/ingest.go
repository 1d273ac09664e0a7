// Package ingest orchestrates the pipeline that turns sources into a
// searchable collection: crawl or parse, chunk, embed, and upsert.
package ingest

import (
	"context"
	"time"

	"github.com/fwojciec/kbase"
)

// Defaults for embedding dispatch.
const (
	// DefaultBatchSize is the number of chunks embedded per API call.
	DefaultBatchSize = 100
	// DefaultEmbedAttempts bounds retries of a failed embedding batch.
	DefaultEmbedAttempts = 3
	// DefaultEmbedRetryDelay is the pause between embedding attempts.
	DefaultEmbedRetryDelay = 2 * time.Second
)

// Options configures one ingestion run.
type Options struct {
	// Overwrite deletes the existing collection before ingesting, so the
	// run rebuilds from scratch instead of upserting into prior content.
	Overwrite bool

	// Recursive forces frontier crawling for web sources.
	Recursive bool

	// TranslateTo optionally translates web pages before extraction.
	TranslateTo string

	// Progress receives crawl events for web sources.
	Progress kbase.CrawlProgressFunc
}

// Summary reports what one ingestion run accomplished.
type Summary struct {
	// Collection is the normalized collection name written to.
	Collection string `json:"collection"`

	// Pages is the number of distinct pages chunked.
	Pages int `json:"pages"`

	ChunksWritten int `json:"chunksWritten"`

	// ChunksFailed counts chunks dropped because their embedding batch
	// exhausted its retries.
	ChunksFailed int `json:"chunksFailed"`

	// SourcesFailed lists the source IDs that produced no pages.
	SourcesFailed []string `json:"sourcesFailed,omitempty"`

	// Tokens is an approximate token total of the written content.
	// Zero when no token counter is configured.
	Tokens int `json:"tokens"`
}

// Ingestor builds a collection from web and PDF sources. Per-source and
// per-batch failures are recorded and skipped; only invalid input and
// store errors abort the run.
type Ingestor struct {
	Crawler  kbase.SiteCrawler
	Parser   kbase.DocumentParser // optional; required for PDF sources
	Embedder kbase.Embedder
	Store    kbase.VectorStore
	Tokens   kbase.TokenCounter // optional, stats only

	Chunker kbase.Chunker

	// BatchSize is the number of chunks per embedding call.
	// Defaults to DefaultBatchSize.
	BatchSize int

	// EmbedAttempts bounds attempts per embedding batch.
	// Defaults to DefaultEmbedAttempts.
	EmbedAttempts int

	// EmbedRetryDelay is the pause between attempts.
	// Defaults to DefaultEmbedRetryDelay.
	EmbedRetryDelay time.Duration
}

// Ingest runs the full pipeline for the named knowledge base.
func (ing *Ingestor) Ingest(ctx context.Context, name string, sources []kbase.Source, opts Options) (*Summary, error) {
	collection := kbase.NormalizeCollectionName(name)
	if collection == "" {
		return nil, kbase.Errorf(kbase.EINVALID, "knowledge base name required")
	}
	if len(sources) == 0 {
		return nil, kbase.Errorf(kbase.EINVALID, "at least one source required")
	}
	for _, src := range sources {
		if err := src.Validate(); err != nil {
			return nil, err
		}
	}

	if opts.Overwrite {
		if err := ing.Store.DeleteCollection(ctx, collection); err != nil && kbase.ErrorCode(err) != kbase.ENOTFOUND {
			return nil, err
		}
	}
	if _, err := ing.Store.EnsureCollection(ctx, collection); err != nil {
		return nil, err
	}

	summary := &Summary{Collection: collection}

	pages := ing.collectPages(ctx, sources, opts, summary)
	summary.Pages = len(pages)

	var chunks []*kbase.Chunk
	for _, page := range pages {
		chunks = append(chunks, ing.Chunker.Split(page)...)
	}

	if err := ing.writeChunks(ctx, collection, chunks, summary); err != nil {
		return nil, err
	}

	ing.countTokens(ctx, pages, summary)
	return summary, nil
}

// collectPages gathers pages from every source, deduplicating by origin.
// The first page for an origin wins; a failed source is recorded and
// skipped.
func (ing *Ingestor) collectPages(ctx context.Context, sources []kbase.Source, opts Options, summary *Summary) []*kbase.Page {
	seen := make(map[string]bool)
	var pages []*kbase.Page

	add := func(page *kbase.Page) {
		if page.Empty() || seen[page.Origin] {
			return
		}
		seen[page.Origin] = true
		pages = append(pages, page)
	}

	for _, src := range sources {
		switch src.Kind {
		case kbase.SourceWeb:
			result, err := ing.Crawler.CrawlSite(ctx, src.URL, kbase.CrawlOptions{
				Recursive:   opts.Recursive,
				TranslateTo: opts.TranslateTo,
				Progress:    opts.Progress,
			})
			if err != nil {
				summary.SourcesFailed = append(summary.SourcesFailed, src.ID())
				continue
			}
			for _, page := range result.Pages {
				add(page)
			}

		case kbase.SourcePDF:
			if ing.Parser == nil {
				summary.SourcesFailed = append(summary.SourcesFailed, src.ID())
				continue
			}
			parsed, err := ing.Parser.Parse(ctx, src.Path)
			if err != nil {
				summary.SourcesFailed = append(summary.SourcesFailed, src.ID())
				continue
			}
			for _, page := range parsed {
				add(page)
			}
		}
	}

	return pages
}

// writeChunks embeds chunks in batches and upserts them. A batch that
// exhausts its embedding retries is counted and skipped; a store error is
// fatal.
func (ing *Ingestor) writeChunks(ctx context.Context, collection string, chunks []*kbase.Chunk, summary *Summary) error {
	batchSize := ing.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		res := ing.embedBatch(ctx, texts)
		if res.err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			summary.ChunksFailed += len(batch)
			continue
		}
		for i, c := range batch {
			c.Embedding = res.vectors[i]
		}

		if err := ing.Store.Upsert(ctx, collection, batch); err != nil {
			return err
		}
		summary.ChunksWritten += len(batch)
	}

	return nil
}

// batchResult is the outcome of embedding one batch.
type batchResult struct {
	vectors [][]float32
	err     error
}

// embedBatch embeds one batch of texts with bounded retries.
func (ing *Ingestor) embedBatch(ctx context.Context, texts []string) batchResult {
	attempts := ing.EmbedAttempts
	if attempts <= 0 {
		attempts = DefaultEmbedAttempts
	}
	delay := ing.EmbedRetryDelay
	if delay <= 0 {
		delay = DefaultEmbedRetryDelay
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		vectors, err := ing.Embedder.Embed(ctx, texts)
		if err == nil {
			if len(vectors) != len(texts) {
				return batchResult{err: kbase.Errorf(kbase.EINTERNAL, "embedder returned %d vectors for %d texts", len(vectors), len(texts))}
			}
			return batchResult{vectors: vectors}
		}
		lastErr = err

		if attempt >= attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return batchResult{err: ctx.Err()}
		case <-time.After(delay):
		}
	}

	return batchResult{err: lastErr}
}

// countTokens accumulates an approximate token total for reporting. Token
// counting is best-effort: a counting error leaves the total as-is.
func (ing *Ingestor) countTokens(ctx context.Context, pages []*kbase.Page, summary *Summary) {
	if ing.Tokens == nil {
		return
	}
	for _, page := range pages {
		n, err := ing.Tokens.CountTokens(ctx, page.Text)
		if err != nil {
			continue
		}
		summary.Tokens += n
	}
}
