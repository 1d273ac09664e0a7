// Package crawl provides web document discovery: sitemap-based URL
// resolution with a breadth-first recursive frontier as fallback, and the
// fetch/translate/extract pipeline that turns URLs into page records.
package crawl

import (
	"context"
	"net/url"
	"time"

	"github.com/fwojciec/kbase"
	"golang.org/x/sync/errgroup"
)

// Frontier sizing for recursive crawls.
const (
	// frontierExpectedURLs is the expected URL count for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for
	// deduplication. A false positive skips a URL; it never double-fetches.
	frontierFalsePositiveRate = 0.01
)

// Compile-time interface verification.
var _ kbase.SiteCrawler = (*Crawler)(nil)

// Crawler turns one web root into page records. Discovery prefers the
// site's sitemap; recursive frontier crawling takes over when the caller
// forces it or when no usable sitemap exists.
type Crawler struct {
	Sitemaps   kbase.SitemapService
	Fetcher    kbase.Fetcher
	Extractor  kbase.Extractor
	Links      kbase.LinkExtractor
	Translator kbase.Translator // optional
	Filter     *kbase.URLFilter
	Limiter    kbase.DomainLimiter // optional

	// Concurrency bounds parallel fetches on the sitemap path.
	// Defaults to 10. The recursive path is sequential: the frontier has
	// a single writer.
	Concurrency int

	// MaxPages and MaxDepth are safety valves for recursive crawls on
	// pathological sites. 0 means unbounded.
	MaxPages int
	MaxDepth int

	RetryDelays []time.Duration
}

// crawlResult holds the outcome of processing a single URL.
type crawlResult struct {
	position int
	url      string
	page     *kbase.Page
	err      error
}

// CrawlSite crawls all pages reachable from rootURL.
func (c *Crawler) CrawlSite(ctx context.Context, rootURL string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error) {
	if opts.Recursive {
		return c.recursiveCrawl(ctx, rootURL, opts)
	}

	urls, err := c.Sitemaps.DiscoverURLs(ctx, rootURL)
	if err != nil {
		// No usable sitemap is a control signal, not a failure.
		if kbase.ErrorCode(err) == kbase.ENOTFOUND {
			return c.recursiveCrawl(ctx, rootURL, opts)
		}
		return nil, err
	}

	// A sitemap is a discovery source, not a trust override: its URLs
	// still pass the filter before any fetch happens.
	eligible := urls[:0:0]
	for _, u := range urls {
		if c.Filter.Accepts(u) {
			eligible = append(eligible, u)
		}
	}

	return c.sitemapCrawl(ctx, eligible, opts)
}

// sitemapCrawl fetches a known URL list concurrently, preserving sitemap
// order in the result.
func (c *Crawler) sitemapCrawl(ctx context.Context, urls []string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error) {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	total := len(urls)
	if opts.Progress != nil {
		opts.Progress(kbase.CrawlProgress{Total: total})
	}

	resultCh := make(chan crawlResult, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			i, u := i, u
			g.Go(func() error {
				page, err := c.processURL(gctx, u, opts.TranslateTo)
				resultCh <- crawlResult{position: i, url: u, page: page, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Ordinals downstream depend on page order, so results go back into
	// sitemap positions regardless of fetch completion order.
	ordered := make([]crawlResult, total)
	completed := 0
	for r := range resultCh {
		completed++
		ordered[r.position] = r
		if opts.Progress != nil {
			opts.Progress(kbase.CrawlProgress{URL: r.url, Completed: completed, Total: total, Err: r.err})
		}
	}

	result := &kbase.CrawlResult{}
	for _, r := range ordered {
		if r.err != nil {
			result.Failed++
			continue
		}
		result.Pages = append(result.Pages, r.page)
	}
	return result, nil
}

// recursiveCrawl performs breadth-first link-following from the root URL.
//
// URLs are processed sequentially: the frontier has a single writer, which
// keeps the no-double-visit invariant locally provable. Sitemap-based
// crawling is the high-throughput path.
func (c *Crawler) recursiveCrawl(ctx context.Context, rootURL string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error) {
	root, err := url.Parse(rootURL)
	if err != nil || root.Host == "" {
		return nil, kbase.Errorf(kbase.EINVALID, "invalid root URL %q", rootURL)
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(kbase.DiscoveredURL{URL: rootURL, Depth: 0})

	result := &kbase.CrawlResult{}
	processed := 0

	for {
		next, ok := frontier.Pop()
		if !ok {
			break // frontier drained: crawl is done
		}
		if c.MaxPages > 0 && processed >= c.MaxPages {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		processed++

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx, root.Host); err != nil {
				return nil, err
			}
		}

		html, err := c.fetchWithRetry(ctx, next.URL)
		if err != nil {
			result.Failed++
			if opts.Progress != nil {
				opts.Progress(kbase.CrawlProgress{URL: next.URL, Completed: processed, Err: err})
			}
			continue
		}

		// Discovery first: links come from the raw HTML, before any
		// translation, so a translation failure can't hide pages.
		c.enqueueLinks(frontier, html, next, root)

		page, err := c.extractPage(ctx, next.URL, html, opts.TranslateTo)
		if err != nil {
			result.Failed++
			if opts.Progress != nil {
				opts.Progress(kbase.CrawlProgress{URL: next.URL, Completed: processed, Err: err})
			}
			continue
		}

		result.Pages = append(result.Pages, page)
		if opts.Progress != nil {
			opts.Progress(kbase.CrawlProgress{URL: next.URL, Completed: processed})
		}
	}

	return result, nil
}

// enqueueLinks extracts links from html and pushes the eligible ones.
// Only same-host links that pass the filter are enqueued; the frontier
// drops anything already seen.
func (c *Crawler) enqueueLinks(frontier *Frontier, html string, from kbase.DiscoveredURL, root *url.URL) {
	if c.Links == nil {
		return
	}
	if c.MaxDepth > 0 && from.Depth >= c.MaxDepth {
		return
	}

	links, err := c.Links.ExtractLinks(html, from.URL)
	if err != nil {
		return
	}

	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || u.Host != root.Host {
			continue
		}
		if !c.Filter.Accepts(link) {
			continue
		}
		frontier.Push(kbase.DiscoveredURL{URL: link, Depth: from.Depth + 1})
	}
}

// processURL fetches one URL and turns it into a page record.
func (c *Crawler) processURL(ctx context.Context, pageURL string, translateTo string) (*kbase.Page, error) {
	if c.Limiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, kbase.Errorf(kbase.EINVALID, "invalid URL %q", pageURL)
		}
		if err := c.Limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	html, err := c.fetchWithRetry(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return c.extractPage(ctx, pageURL, html, translateTo)
}

// extractPage optionally translates the raw HTML, then extracts it into an
// immutable page record.
//
// Translation failure falls back to untranslated extraction rather than
// dropping the page: a page in the source language still embeds and
// retrieves, just worse.
func (c *Crawler) extractPage(ctx context.Context, pageURL, html, translateTo string) (*kbase.Page, error) {
	language := ""
	if translateTo != "" && c.Translator != nil {
		if translated, err := c.Translator.Translate(ctx, html, translateTo); err == nil {
			html = translated
			language = translateTo
		}
	}

	extracted, err := c.Extractor.Extract(html)
	if err != nil {
		return nil, err
	}
	if extracted.Language != "" {
		language = extracted.Language
	}

	return &kbase.Page{
		Origin:      pageURL,
		Kind:        kbase.SourceWeb,
		Title:       extracted.Title,
		Text:        extracted.Text,
		Tables:      extracted.Tables,
		Language:    language,
		ContentHash: kbase.HashText(extracted.Text),
	}, nil
}

func (c *Crawler) fetchWithRetry(ctx context.Context, pageURL string) (string, error) {
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetryDelays(ctx, pageURL, c.Fetcher.Fetch, delays)
}
