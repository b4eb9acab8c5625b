// Package chunker splits document text into retrieval-sized pieces.
package chunker

import (
	"fmt"
	"strings"
)

const (
	// MinParagraphLen is the shortest fragment SplitParagraphs keeps.
	MinParagraphLen = 20

	// FallbackLen is how much of the document SplitParagraphs falls back to
	// when no paragraph survives filtering.
	FallbackLen = 2000
)

// Chunk is a piece of a source document. Ordinal is the chunk's position in
// the original document and is used to restore reading order after scoring.
type Chunk struct {
	Text    string
	Ordinal int
}

// Split cuts document into overlapping fixed-size windows. Each window is
// size characters long and the start advances by size-overlap per step, so
// consecutive windows share overlap characters. The final window may be
// shorter. Requires 0 < overlap < size.
//
// Splitting is character-based on purpose: it is O(n) and deterministic
// regardless of document structure.
func Split(document string, size, overlap int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}

	if document == "" {
		return nil, nil
	}

	var chunks []Chunk
	step := size - overlap
	for start := 0; start < len(document); start += step {
		end := min(start+size, len(document))
		chunks = append(chunks, Chunk{
			Text:    document[start:end],
			Ordinal: len(chunks),
		})
		if end == len(document) {
			break
		}
	}
	return chunks, nil
}

// SplitParagraphs cuts document at blank-line boundaries, trimming each
// fragment and dropping anything shorter than MinParagraphLen. If nothing
// survives filtering, it falls back to the first FallbackLen characters of
// the document verbatim, so a non-empty document never yields an empty
// result.
func SplitParagraphs(document string) []Chunk {
	if strings.TrimSpace(document) == "" {
		return nil
	}

	var chunks []Chunk
	for _, para := range splitBlankLines(document) {
		para = strings.TrimSpace(para)
		if len(para) < MinParagraphLen {
			continue
		}
		chunks = append(chunks, Chunk{Text: para, Ordinal: len(chunks)})
	}

	if len(chunks) == 0 {
		return []Chunk{{Text: head(document, FallbackLen), Ordinal: 0}}
	}
	return chunks
}

// splitBlankLines splits on runs of one or more blank lines.
func splitBlankLines(s string) []string {
	var parts []string
	var b strings.Builder
	for line := range strings.Lines(s) {
		if strings.TrimSpace(line) == "" {
			if b.Len() > 0 {
				parts = append(parts, b.String())
				b.Reset()
			}
			continue
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

// head returns the first n bytes of s, or all of s if shorter.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
