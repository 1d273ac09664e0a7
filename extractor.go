package kbase

// ExtractResult holds the content extracted from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// Text is the main content with script/style/markup removed and
	// whitespace normalized.
	Text string

	// Tables holds table fragments rendered as standalone text entries.
	Tables []string

	// Language is the detected content language (ISO 639-1), if known.
	Language string
}

// Extractor extracts document text from HTML, removing markup and boilerplate.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
