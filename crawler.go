package kbase

import "context"

// CrawlOptions configures how a web root is turned into pages.
type CrawlOptions struct {
	// Recursive forces frontier-based crawling even when the site
	// publishes a sitemap. Recursion also activates automatically when
	// sitemap discovery returns ENOTFOUND.
	Recursive bool

	// TranslateTo is an optional ISO 639-1 target language. When set, raw
	// HTML is translated before extraction.
	TranslateTo string

	// Progress, if non-nil, receives events as URLs are processed.
	Progress CrawlProgressFunc
}

// CrawlProgress reports progress during a crawl.
type CrawlProgress struct {
	URL       string
	Completed int
	Total     int // 0 when unknown (recursive crawls)
	Err       error
}

// CrawlProgressFunc is called as URLs are processed.
type CrawlProgressFunc func(CrawlProgress)

// CrawlResult holds the outcome of crawling one web root.
type CrawlResult struct {
	// Pages in discovery order.
	Pages []*Page

	// Failed counts URLs skipped due to fetch or extraction errors.
	Failed int
}

// SiteCrawler produces page records for one web root, via sitemap
// discovery or recursive crawling.
type SiteCrawler interface {
	CrawlSite(ctx context.Context, rootURL string, opts CrawlOptions) (*CrawlResult, error)
}
