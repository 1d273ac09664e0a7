package kbase

import "context"

// Translator translates HTML content into a target language.
// The full HTML (not extracted text) is translated so structural cues
// survive for downstream extraction.
type Translator interface {
	Translate(ctx context.Context, html string, targetLang string) (string, error)
}
