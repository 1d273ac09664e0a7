package kbase

import "context"

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs returns the ordered list of URLs published by the
	// site's sitemap. It checks robots.txt for Sitemap directives, then
	// falls back to /sitemap.xml. Nested sitemap indexes are expanded
	// recursively.
	//
	// Returns ENOTFOUND when the site publishes no usable sitemap. That
	// is a control signal, not a failure: callers fall back to recursive
	// crawling. Discovered URLs are a discovery source only and still go
	// through the URLFilter before being fetched.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
