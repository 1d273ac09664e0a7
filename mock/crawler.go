package mock

import (
	"context"

	"github.com/fwojciec/kbase"
)

var _ kbase.SiteCrawler = (*SiteCrawler)(nil)

// SiteCrawler is a mock implementation of kbase.SiteCrawler.
type SiteCrawler struct {
	CrawlSiteFn func(ctx context.Context, rootURL string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error)
}

func (c *SiteCrawler) CrawlSite(ctx context.Context, rootURL string, opts kbase.CrawlOptions) (*kbase.CrawlResult, error) {
	return c.CrawlSiteFn(ctx, rootURL, opts)
}
