package kbase

import "context"

// DocumentParser loads local documents into page records via an external
// high-resolution layout/OCR parser. One input file may yield multiple
// pages (one per logical page or detected block).
//
// A parse failure is scoped to the single file; callers continue with
// their remaining inputs.
type DocumentParser interface {
	Parse(ctx context.Context, path string) ([]*Page, error)
}
