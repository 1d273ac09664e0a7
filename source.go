package kbase

import "net/url"

// SourceKind identifies the type of an ingestion source.
type SourceKind string

// Supported source kinds.
const (
	SourceWeb SourceKind = "web"
	SourcePDF SourceKind = "pdf"
)

// Source identifies one ingestion unit as given by the caller: either a web
// root URL to be discovered and crawled, or a local PDF path.
type Source struct {
	Kind SourceKind `json:"kind"`
	URL  string     `json:"url,omitempty"`
	Path string     `json:"path,omitempty"`
}

// WebSource returns a Source for a web root URL.
func WebSource(rawURL string) Source {
	return Source{Kind: SourceWeb, URL: rawURL}
}

// PDFSource returns a Source for a local PDF file.
func PDFSource(path string) Source {
	return Source{Kind: SourcePDF, Path: path}
}

// ID returns the source identity used for deduplication and reporting.
func (s Source) ID() string {
	if s.Kind == SourcePDF {
		return s.Path
	}
	return s.URL
}

// Validate returns an error if the source is not usable.
func (s Source) Validate() error {
	switch s.Kind {
	case SourceWeb:
		if s.URL == "" {
			return Errorf(EINVALID, "web source URL required")
		}
		u, err := url.Parse(s.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Errorf(EINVALID, "invalid web source URL %q", s.URL)
		}
	case SourcePDF:
		if s.Path == "" {
			return Errorf(EINVALID, "pdf source path required")
		}
	default:
		return Errorf(EINVALID, "unknown source kind %q", s.Kind)
	}
	return nil
}
