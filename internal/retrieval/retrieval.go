// Package retrieval selects the document chunks most relevant to a query
// using lexical heuristics, without calling any external service.
package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"github.com/studykit/studykit/internal/chunker"
)

const (
	// DefaultTopK is how many chunks a retrieval returns by default.
	DefaultTopK = 5

	// MinTermLen is the shortest query token that counts as a term for the
	// paragraph path. MinTermLenCoarse is the cutoff for the fixed-window
	// path, where chunks are larger and short tokens match almost anywhere.
	MinTermLen       = 2
	MinTermLenCoarse = 3

	chunkSize    = 1000
	chunkOverlap = 200

	contextSeparator = "\n\n---\n\n"
)

type scoredChunk struct {
	chunk chunker.Chunk
	score float64
}

// Retrieve returns the k highest-scoring chunks for query, re-sorted into
// original document order so a prompt built from them reads as the document
// does rather than as a relevance-ranked jumble.
//
// If chunks is empty the caller still gets usable context: a single synthetic
// chunk holding the first 2000 characters of fallback (normally the raw
// document text). k larger than len(chunks) returns all chunks.
func Retrieve(query string, chunks []chunker.Chunk, k int, fallback string) []chunker.Chunk {
	if len(chunks) == 0 {
		if fallback == "" {
			return nil
		}
		if len(fallback) > chunker.FallbackLen {
			fallback = fallback[:chunker.FallbackLen]
		}
		return []chunker.Chunk{{Text: fallback, Ordinal: 0}}
	}
	return rank(chunks, queryTerms(query, MinTermLen), k)
}

// Context splits document into paragraphs, retrieves the k paragraphs most
// relevant to query and joins them into a single prompt-ready string.
func Context(query, document string, k int) string {
	chunks := chunker.SplitParagraphs(document)
	return join(Retrieve(query, chunks, k, document))
}

// WindowContext is the variant for documents without paragraph structure
// (OCR output, single-line extractions). It scores fixed overlapping windows
// with the coarser term cutoff.
func WindowContext(query, document string, k int) string {
	chunks, err := chunker.Split(document, chunkSize, chunkOverlap)
	if err != nil || len(chunks) == 0 {
		// Unreachable with the package constants unless the document is
		// empty; fall through to the paragraph path's fallback handling.
		return Context(query, document, k)
	}
	return join(rank(chunks, queryTerms(query, MinTermLenCoarse), k))
}

// rank scores every chunk, keeps the top k (ties broken by ordinal) and
// returns them in reading order.
func rank(chunks []chunker.Chunk, terms []string, k int) []chunker.Chunk {
	if k <= 0 {
		return nil
	}

	scored := make([]scoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = scoredChunk{chunk: c, score: score(c, terms)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].chunk.Ordinal < scored[j].chunk.Ordinal
	})

	if k > len(scored) {
		k = len(scored)
	}
	top := scored[:k]

	// Back to reading order.
	sort.Slice(top, func(i, j int) bool {
		return top[i].chunk.Ordinal < top[j].chunk.Ordinal
	})

	out := make([]chunker.Chunk, len(top))
	for i, sc := range top {
		out[i] = sc.chunk
	}
	return out
}

func join(chunks []chunker.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, contextSeparator)
}

// queryTerms normalizes a query into scoring terms: lowercase, split on
// whitespace, tokens of length <= minLen dropped.
func queryTerms(query string, minLen int) []string {
	var terms []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if len(tok) > minLen {
			terms = append(terms, tok)
		}
	}
	return terms
}

// score computes the composite relevance of a chunk:
// 2 points per whole-word term occurrence, 3 points per distinct term
// present anywhere in the chunk, plus a positional bonus that decays with
// the ordinal. Earlier chunks get the bonus because front matter
// disproportionately holds definitional and summary content.
func score(c chunker.Chunk, terms []string) float64 {
	lower := strings.ToLower(c.Text)

	var keyword, distinct float64
	for _, term := range terms {
		if n := countWholeWord(lower, term); n > 0 {
			keyword += float64(2 * n)
		}
		if strings.Contains(lower, term) {
			distinct++
		}
	}

	position := 10 - 0.1*float64(c.Ordinal)
	if position < 0 {
		position = 0
	}

	return keyword + 3*distinct + position
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// countWholeWord counts occurrences of term as a whole word in text.
// Both are expected to be lowercased already.
func countWholeWord(text, term string) int {
	n := 0
	for _, w := range wordRe.FindAllString(text, -1) {
		if w == term {
			n++
		}
	}
	return n
}
