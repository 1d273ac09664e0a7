package kbase

// LinkExtractor extracts outbound document links from HTML.
type LinkExtractor interface {
	// ExtractLinks returns absolute URLs found in the page. Relative URLs
	// are resolved against baseURL; links to other hosts are discarded.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
