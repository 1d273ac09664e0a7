package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/kbase/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetryDelays_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		calls++
		return "<html>ok</html>", nil
	}

	html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, []time.Duration{time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
	assert.Equal(t, 1, calls)
}

func TestFetchWithRetryDelays_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}

	delays := []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, delays)
	require.NoError(t, err)
	assert.Equal(t, "ok", html)
	assert.Equal(t, 3, calls)
}

func TestFetchWithRetryDelays_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		calls++
		return "", errors.New("permanent")
	}

	delays := []time.Duration{time.Millisecond, time.Millisecond}
	_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, delays)
	require.Error(t, err)
	assert.Equal(t, "permanent", err.Error())
	assert.Equal(t, 3, calls) // len(delays)+1 attempts
}

func TestFetchWithRetryDelays_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		calls++
		cancel()
		return "", errors.New("fail")
	}

	_, err := crawl.FetchWithRetryDelays(ctx, "https://example.com", fetch, []time.Duration{time.Hour})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDefaultRetryDelays(t *testing.T) {
	t.Parallel()

	delays := crawl.DefaultRetryDelays()
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, delays)
}
