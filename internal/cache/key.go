package cache

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// SampleSize is the fingerprint sampling threshold: documents longer than
// this are hashed over their first and last SampleSize characters only.
// Two huge documents differing only in the middle can therefore collide,
// which costs a stale cache hit, not correctness of generation. Bounded
// hashing cost is worth that.
const SampleSize = 10000

// Options is the request option set that, together with the document
// fingerprint, addresses a cached artifact. Zero fields are omitted from
// the key, so artifact kinds with no options key on the kind alone.
type Options struct {
	Kind   string // "summary", "flashcards", "mindmap"
	Style  string
	Depth  string
	Length string
	Count  int
}

// Key derives the deterministic cache key for a document fingerprint and an
// option set. Option values are carried in full (lowercased) rather than
// abbreviated: distinct option combinations for the same document must
// never collide, and first-letter encodings do ("conceptual" vs "coding").
func Key(fingerprint string, opts Options) string {
	parts := []string{fingerprint, strings.ToLower(opts.Kind)}
	for _, v := range []string{opts.Style, opts.Depth, opts.Length} {
		if v != "" {
			parts = append(parts, strings.ToLower(v))
		}
	}
	if opts.Count > 0 {
		parts = append(parts, strconv.Itoa(opts.Count))
	}
	return strings.Join(parts, ":")
}

// Fingerprint computes a cheap, non-cryptographic identity for a document's
// content: FNV-1a over the text, base-36 encoded. Large documents are
// sampled per SampleSize.
func Fingerprint(text string) string {
	sampled := text
	if len(text) > SampleSize {
		sampled = text[:SampleSize] + text[len(text)-SampleSize:]
	}

	h := fnv.New32a()
	h.Write([]byte(sampled))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}
