package kbase

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Page represents one unit of normalized text produced from a source: a
// fetched web page or a logical page of a parsed document. Pages are
// immutable once produced.
type Page struct {
	// Origin identifies where the page came from: a URL or a file path.
	Origin string `json:"origin"`

	Kind  SourceKind `json:"kind"`
	Title string     `json:"title,omitempty"`

	// Text is the extracted body with markup removed.
	Text string `json:"text"`

	// Tables holds table-like fragments kept separate from the body text
	// when they are distinguishable in the source.
	Tables []string `json:"tables,omitempty"`

	Language    string `json:"language,omitempty"`
	ContentHash string `json:"contentHash,omitempty"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.Origin == "" {
		return Errorf(EINVALID, "page origin required")
	}
	if p.Kind == "" {
		return Errorf(EINVALID, "page source kind required")
	}
	return nil
}

// Empty reports whether the page carries no extractable content.
func (p *Page) Empty() bool {
	return p.Text == "" && len(p.Tables) == 0
}

// HashText computes an xxHash of content and returns it as a hex string.
func HashText(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}
