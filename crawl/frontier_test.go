package crawl_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/kbase"
	"github.com/fwojciec/kbase/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_FIFOOrder(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(100, 0.01)

	f.Push(kbase.DiscoveredURL{URL: "https://example.com/a", Depth: 0})
	f.Push(kbase.DiscoveredURL{URL: "https://example.com/b", Depth: 1})
	f.Push(kbase.DiscoveredURL{URL: "https://example.com/c", Depth: 1})

	first, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a", first.URL)
	assert.Equal(t, 0, first.Depth)

	second, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/b", second.URL)

	third, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/c", third.URL)

	_, ok = f.Pop()
	assert.False(t, ok)
}

func TestFrontier_DeduplicatesOnPush(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(100, 0.01)

	assert.True(t, f.Push(kbase.DiscoveredURL{URL: "https://example.com/a"}))
	assert.False(t, f.Push(kbase.DiscoveredURL{URL: "https://example.com/a"}))
	assert.Equal(t, 1, f.Len())
}

func TestFrontier_SeenAfterPop(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(100, 0.01)
	f.Push(kbase.DiscoveredURL{URL: "https://example.com/a"})

	_, ok := f.Pop()
	require.True(t, ok)

	// Popping does not forget: re-pushing a processed URL is a no-op.
	assert.True(t, f.Seen("https://example.com/a"))
	assert.False(t, f.Push(kbase.DiscoveredURL{URL: "https://example.com/a"}))
	assert.Equal(t, 0, f.Len())
}

func TestFrontier_StripsFragments(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(100, 0.01)

	assert.True(t, f.Push(kbase.DiscoveredURL{URL: "https://example.com/page#intro"}))
	assert.False(t, f.Push(kbase.DiscoveredURL{URL: "https://example.com/page#details"}))
	assert.False(t, f.Push(kbase.DiscoveredURL{URL: "https://example.com/page"}))

	u, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/page", u.URL)
	assert.True(t, f.Seen("https://example.com/page#anything"))
}

func TestFrontier_PopEmpty(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(100, 0.01)
	u, ok := f.Pop()
	assert.False(t, ok)
	assert.Equal(t, kbase.DiscoveredURL{}, u)
}

func TestFrontier_ManyURLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(10000, 0.01)
	for i := 0; i < 1000; i++ {
		f.Push(kbase.DiscoveredURL{URL: fmt.Sprintf("https://example.com/page/%d", i), Depth: 1})
	}

	popped := 0
	for {
		_, ok := f.Pop()
		if !ok {
			break
		}
		popped++
	}

	// Bloom false positives may drop a handful, but never duplicate.
	assert.LessOrEqual(t, popped, 1000)
	assert.Greater(t, popped, 950)
}
