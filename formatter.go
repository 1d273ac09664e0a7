package kbase

import (
	"fmt"
	"strings"
)

// FormatResults renders ranked search results for display.
// Each result shows its rank, origin, ordinal, and score, followed by the
// chunk text indented one level.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		header := fmt.Sprintf("%d. %s [%d] score=%.4f", i+1, r.Chunk.Origin, r.Chunk.Ordinal, r.Score)
		body := "  " + strings.ReplaceAll(r.Chunk.Text, "\n", "\n  ")
		parts = append(parts, header+"\n"+body)
	}

	return strings.Join(parts, "\n\n")
}
