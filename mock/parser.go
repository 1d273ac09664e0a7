package mock

import (
	"context"

	"github.com/fwojciec/kbase"
)

var _ kbase.DocumentParser = (*DocumentParser)(nil)

// DocumentParser is a mock implementation of kbase.DocumentParser.
type DocumentParser struct {
	ParseFn func(ctx context.Context, path string) ([]*kbase.Page, error)
}

func (p *DocumentParser) Parse(ctx context.Context, path string) ([]*kbase.Page, error) {
	return p.ParseFn(ctx, path)
}
