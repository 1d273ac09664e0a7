package main

import (
	"fmt"

	"github.com/fwojciec/kbase"
	"github.com/fwojciec/kbase/crawl"
	"github.com/fwojciec/kbase/ingest"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	var sources []kbase.Source
	for _, u := range c.URL {
		sources = append(sources, kbase.WebSource(u))
	}
	for _, p := range c.PDF {
		sources = append(sources, kbase.PDFSource(p))
	}
	if len(sources) == 0 {
		fmt.Fprintln(deps.Stderr, "error: at least one --url or --pdf source required")
		return fmt.Errorf("no sources specified")
	}

	progress := func(event kbase.CrawlProgress) {
		switch {
		case event.Err != nil:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, 60), event.Err)
		case event.URL == "" && event.Total > 0:
			fmt.Fprintf(deps.Stdout, "  Found %d URLs\n", event.Total)
		}
	}

	summary, err := deps.Ingestor.Ingest(deps.Ctx, c.Name, sources, ingest.Options{
		Overwrite:   c.Overwrite,
		Recursive:   c.Recursive,
		TranslateTo: c.TranslateTo,
		Progress:    progress,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", kbase.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Ingested %d pages into %q (%d chunks, %s)\n",
		summary.Pages, summary.Collection, summary.ChunksWritten, crawl.FormatTokens(summary.Tokens))

	// Partial failures are reported but don't fail the run.
	if summary.ChunksFailed > 0 {
		fmt.Fprintf(deps.Stderr, "  %d chunks failed to embed\n", summary.ChunksFailed)
	}
	for _, src := range summary.SourcesFailed {
		fmt.Fprintf(deps.Stderr, "  source failed: %s\n", src)
	}

	return nil
}
