// Package gtranslate provides a kbase.Translator backed by the Google
// Cloud Translation API.
package gtranslate

import (
	"context"

	"github.com/fwojciec/kbase"
	translate "google.golang.org/api/translate/v2"
)

// Compile-time interface verification.
var _ kbase.Translator = (*Translator)(nil)

// Translator implements kbase.Translator using the Cloud Translation v2
// API. Content is submitted in HTML format so markup survives translation
// and extraction still sees document structure.
type Translator struct {
	svc *translate.Service
}

// NewTranslator creates a new Translator. Credentials are configured on
// the service by the caller.
func NewTranslator(svc *translate.Service) *Translator {
	return &Translator{svc: svc}
}

// Translate translates HTML content into the target language.
func (t *Translator) Translate(ctx context.Context, html string, targetLang string) (string, error) {
	if html == "" {
		return "", kbase.Errorf(kbase.EINVALID, "html content required")
	}
	if targetLang == "" {
		return "", kbase.Errorf(kbase.EINVALID, "target language required")
	}

	resp, err := t.svc.Translations.List([]string{html}, targetLang).
		Format("html").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Translations) == 0 {
		return "", kbase.Errorf(kbase.EINTERNAL, "translation API returned no translations")
	}

	return resp.Translations[0].TranslatedText, nil
}
