package kbase

import "context"

// DiscoveredURL is an absolute URL with its discovery depth (0 for seeds).
type DiscoveredURL struct {
	URL   string
	Depth int
}

// Frontier manages a crawl queue with deduplication for one crawl run.
// URLs come back in FIFO order, giving breadth-first discovery.
type Frontier interface {
	// Push adds a URL to the frontier and marks it seen.
	// Returns false if the URL has already been seen.
	Push(u DiscoveredURL) bool

	// Pop returns the next URL in FIFO order.
	// Returns false if the frontier is empty.
	Pop() (DiscoveredURL, bool)

	// Len returns the number of URLs waiting in the queue.
	Len() int

	// Seen returns true if the URL has been queued or processed.
	Seen(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
