package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/kbase"
	"github.com/fwojciec/kbase/bloom"
)

// Compile-time interface verification.
var _ kbase.Frontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO crawl queue with Bloom filter
// deduplication, giving breadth-first discovery order. A URL is marked
// seen the moment it is pushed, so nothing is ever queued or fetched
// twice even when many pages link to it.
//
// The frontier is owned by one crawl run and safe for concurrent use,
// though the crawler mutates it from a single goroutine.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []kbase.DiscoveredURL
}

// NewFrontier creates a Frontier sized for n expected URLs with the given
// false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewFilter(n, fpRate),
	}
}

// Push adds a URL to the frontier and marks it seen.
// Returns false if the URL has already been seen. Fragments are stripped
// first, so URLs differing only by fragment are duplicates.
func (f *Frontier) Push(u kbase.DiscoveredURL) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	u.URL = stripFragment(u.URL)
	if f.seen.Test(u.URL) {
		return false
	}
	f.seen.Add(u.URL)
	f.queue = append(f.queue, u)
	return true
}

// Pop returns the next URL in FIFO order.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (kbase.DiscoveredURL, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return kbase.DiscoveredURL{}, false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	return u, true
}

// Len returns the number of URLs waiting in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been queued or processed.
// Fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(stripFragment(rawURL))
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
