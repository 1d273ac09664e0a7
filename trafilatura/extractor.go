// Package trafilatura provides HTML content extraction backed by
// go-trafilatura, with table fragments split out via goquery.
package trafilatura

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/kbase"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Extractor implements kbase.Extractor at compile time.
var _ kbase.Extractor = (*Extractor)(nil)

// Extractor extracts the main text content from HTML, removing
// script/style/navigation boilerplate. Tables are excluded from the body
// and returned as separate fragments rendered through the converter, so
// row/column structure survives as text.
type Extractor struct {
	conv kbase.Converter
}

// NewExtractor creates a new Extractor. The converter renders table
// fragments; if nil, tables fall back to their raw cell text.
func NewExtractor(conv kbase.Converter) *Extractor {
	return &Extractor{conv: conv}
}

// Extract processes raw HTML and returns the normalized page content.
func (e *Extractor) Extract(rawHTML string) (*kbase.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, kbase.Errorf(kbase.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		ExcludeTables:  true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	tables, err := e.extractTables(rawHTML)
	if err != nil {
		return nil, err
	}

	return &kbase.ExtractResult{
		Title:  result.Metadata.Title,
		Text:   strings.TrimSpace(result.ContentText),
		Tables: tables,
	}, nil
}

// extractTables locates <table> elements in the raw HTML and renders each
// as a standalone text fragment.
func (e *Extractor) extractTables(rawHTML string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, kbase.Errorf(kbase.EINVALID, "failed to parse HTML: %v", err)
	}

	var tables []string
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		// Nested tables are covered by their outermost ancestor.
		if sel.ParentsFiltered("table").Length() > 0 {
			return
		}

		text := e.renderTable(sel)
		if text != "" {
			tables = append(tables, text)
		}
	})

	return tables, nil
}

// renderTable converts one table selection to text, via the converter when
// available.
func (e *Extractor) renderTable(sel *goquery.Selection) string {
	if e.conv != nil {
		if html, err := goquery.OuterHtml(sel); err == nil {
			if text, err := e.conv.Convert(html); err == nil {
				return strings.TrimSpace(text)
			}
		}
	}

	// Fallback: cell text joined row by row.
	var rows []string
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	})
	return strings.TrimSpace(strings.Join(rows, "\n"))
}
