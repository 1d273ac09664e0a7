package kbase

import "context"

// Fetcher retrieves raw HTML from URLs over a standard transport.
type Fetcher interface {
	// Fetch retrieves the HTML content at the URL.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases transport resources.
	Close() error
}
