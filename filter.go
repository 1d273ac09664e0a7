package kbase

import (
	"net/url"
	"strings"
)

// DefaultDeniedExtensions lists path suffixes that never contain document
// text: archives, stylesheets, scripts, images, fonts, and media. PDFs are
// included because PDF ingestion goes through explicit paths, not the crawl.
var DefaultDeniedExtensions = []string{
	".zip", ".tar", ".gz", ".tgz", ".rar", ".7z",
	".css", ".js", ".mjs",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp", ".avif",
	".woff", ".woff2", ".ttf", ".otf", ".eot",
	".mp3", ".mp4", ".webm", ".mov",
	".pdf",
}

// DefaultDeniedSegments lists path segments that mark non-document pages.
var DefaultDeniedSegments = []string{
	"login", "logout", "signin", "signup", "auth", "edit", "cdn-cgi",
}

// URLFilter decides whether a URL is eligible for ingestion. It is a pure
// predicate with no side effects, evaluated at discovery time so rejected
// URLs are never enqueued or fetched.
type URLFilter struct {
	// Extensions are denied path suffixes. Matched case-insensitively.
	Extensions []string

	// Segments are denied path segments. Matched case-insensitively.
	Segments []string
}

// NewURLFilter returns a URLFilter with the default denylists.
func NewURLFilter() *URLFilter {
	return &URLFilter{
		Extensions: DefaultDeniedExtensions,
		Segments:   DefaultDeniedSegments,
	}
}

// Accepts reports whether the URL is eligible for fetching.
// URLs containing a query or fragment component are rejected outright,
// then the path is checked against the denied extension and segment lists.
// A nil filter accepts everything.
func (f *URLFilter) Accepts(rawURL string) bool {
	if f == nil {
		return true
	}
	if strings.ContainsAny(rawURL, "?#") {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, ext := range f.Extensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		for _, denied := range f.Segments {
			if seg == denied {
				return false
			}
		}
	}
	return true
}
