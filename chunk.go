package kbase

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Chunk is a bounded-length text segment derived from one page. It is the
// unit of embedding and storage. Ordinals are dense and start at 0 per
// origin; concatenating a page's chunks in ordinal order reproduces the
// page text modulo whitespace normalization at split boundaries.
type Chunk struct {
	ID        string     `json:"id"`
	Origin    string     `json:"origin"`
	Ordinal   int        `json:"ordinal"`
	Text      string     `json:"text"`
	Kind      SourceKind `json:"kind"`
	Language  string     `json:"language,omitempty"`
	Embedding []float32  `json:"embedding,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.Origin == "" {
		return Errorf(EINVALID, "chunk origin required")
	}
	if c.Ordinal < 0 {
		return Errorf(EINVALID, "chunk ordinal must be non-negative")
	}
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	return nil
}

// ChunkID returns the deterministic storage id for a chunk. The id depends
// only on (origin, ordinal), which is what makes re-ingestion idempotent:
// upserting the same key updates instead of duplicating.
func ChunkID(origin string, ordinal int) string {
	h := xxhash.Sum64String(fmt.Sprintf("%s#%d", origin, ordinal))
	return fmt.Sprintf("%016x", h)
}

// DefaultMaxChunkChars is the default chunk size limit in runes.
const DefaultMaxChunkChars = 2000

// Chunker splits page text into bounded segments. Splitting prefers
// paragraph boundaries, then sentence boundaries, and falls back to hard
// rune cuts only when a single sentence exceeds the limit.
type Chunker struct {
	// MaxChars is the maximum chunk length in runes.
	// Defaults to DefaultMaxChunkChars if zero.
	MaxChars int
}

// Split splits a page into chunks. Table fragments are chunked after the
// body text under the same origin and ordinal sequence. An empty page
// yields no chunks.
func (c *Chunker) Split(page *Page) []*Chunk {
	max := c.MaxChars
	if max <= 0 {
		max = DefaultMaxChunkChars
	}

	texts := splitBounded(page.Text, max)
	for _, table := range page.Tables {
		texts = append(texts, splitBounded(table, max)...)
	}

	chunks := make([]*Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &Chunk{
			ID:       ChunkID(page.Origin, i),
			Origin:   page.Origin,
			Ordinal:  i,
			Text:     text,
			Kind:     page.Kind,
			Language: page.Language,
		})
	}
	return chunks
}

// splitBounded splits text into segments of at most max runes each,
// preferring natural boundaries. Every returned segment is non-empty.
func splitBounded(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= max {
		return []string{text}
	}

	var units []string
	for _, para := range splitParagraphs(text) {
		if utf8.RuneCountInString(para) <= max {
			units = append(units, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			if utf8.RuneCountInString(sent) <= max {
				units = append(units, sent)
				continue
			}
			units = append(units, hardSplit(sent, max)...)
		}
	}
	return packUnits(units, max)
}

// splitParagraphs splits on blank lines, dropping empty paragraphs.
func splitParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}

// splitSentences splits after sentence-terminating punctuation followed by
// whitespace. Text without terminators comes back as a single unit.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if sent := strings.TrimSpace(string(runes[start : i+1])); sent != "" {
			out = append(out, sent)
		}
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
		start = i + 1
	}
	if start < len(runes) {
		if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
			out = append(out, rest)
		}
	}
	return out
}

// hardSplit cuts text into pieces of exactly max runes (the last piece may
// be shorter). Last resort when no natural boundary fits.
func hardSplit(text string, max int) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > 0 {
		n := max
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}

// packUnits greedily merges adjacent units into segments of at most max
// runes, joined by blank lines.
func packUnits(units []string, max int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0

	for _, unit := range units {
		n := utf8.RuneCountInString(unit)
		switch {
		case curLen == 0:
			cur.WriteString(unit)
			curLen = n
		case curLen+2+n <= max:
			cur.WriteString("\n\n")
			cur.WriteString(unit)
			curLen += 2 + n
		default:
			out = append(out, cur.String())
			cur.Reset()
			cur.WriteString(unit)
			curLen = n
		}
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}
