package mock

import (
	"context"

	"github.com/fwojciec/kbase"
)

var _ kbase.Translator = (*Translator)(nil)

// Translator is a mock implementation of kbase.Translator.
type Translator struct {
	TranslateFn func(ctx context.Context, html string, targetLang string) (string, error)
}

func (t *Translator) Translate(ctx context.Context, html string, targetLang string) (string, error) {
	return t.TranslateFn(ctx, html, targetLang)
}
