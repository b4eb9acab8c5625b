package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_WindowsAndOverlap(t *testing.T) {
	doc := "abcdefghij" // 10 chars

	chunks, err := Split(doc, 4, 2)
	require.NoError(t, err)

	// step = 2: [0:4] [2:6] [4:8] [6:10]
	require.Len(t, chunks, 4)
	assert.Equal(t, "abcd", chunks[0].Text)
	assert.Equal(t, "cdef", chunks[1].Text)
	assert.Equal(t, "efgh", chunks[2].Text)
	assert.Equal(t, "ghij", chunks[3].Text)
}

func TestSplit_FinalWindowShorter(t *testing.T) {
	chunks, err := Split("abcdefg", 4, 1)
	require.NoError(t, err)

	// step = 3: [0:4] [3:7]
	require.Len(t, chunks, 2)
	assert.Equal(t, "abcd", chunks[0].Text)
	assert.Equal(t, "defg", chunks[1].Text)
}

// Every character of the source must appear in at least one window, and
// ordinals must be strictly increasing.
func TestSplit_CoverageAndOrdinals(t *testing.T) {
	doc := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)

	for _, tc := range []struct{ size, overlap int }{
		{100, 20}, {1000, 200}, {7, 3}, {len(doc) + 10, 5},
	} {
		chunks, err := Split(doc, tc.size, tc.overlap)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		covered := 0
		for i, c := range chunks {
			assert.Equal(t, i, c.Ordinal)
			start := i * (tc.size - tc.overlap)
			assert.Equal(t, doc[start:start+len(c.Text)], c.Text)
			if end := start + len(c.Text); end > covered {
				// Windows must not leave a gap before this one
				require.LessOrEqual(t, start, covered)
				covered = end
			}
		}
		assert.Equal(t, len(doc), covered, "size=%d overlap=%d", tc.size, tc.overlap)
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	chunks, err := Split("", 100, 20)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_InvalidArguments(t *testing.T) {
	_, err := Split("text", 0, 0)
	assert.Error(t, err)

	_, err = Split("text", 10, 10)
	assert.Error(t, err)

	_, err = Split("text", 10, -1)
	assert.Error(t, err)
}

func TestSplitParagraphs_Basic(t *testing.T) {
	doc := "This is the first paragraph of the document.\n\n" +
		"short\n\n" +
		"This is the second real paragraph, long enough to keep.\n"

	chunks := SplitParagraphs(doc)
	require.Len(t, chunks, 2)
	assert.Equal(t, "This is the first paragraph of the document.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, "This is the second real paragraph, long enough to keep.", chunks[1].Text)
	assert.Equal(t, 1, chunks[1].Ordinal)
}

func TestSplitParagraphs_FallbackWhenNothingSurvives(t *testing.T) {
	// Every fragment is below the minimum length, so the whole prefix of the
	// document comes back as a single chunk.
	doc := "one\n\ntwo\n\nthree"

	chunks := SplitParagraphs(doc)
	require.Len(t, chunks, 1)
	assert.Equal(t, doc, chunks[0].Text)
}

func TestSplitParagraphs_FallbackTruncates(t *testing.T) {
	doc := strings.Repeat("x\n\n", 3000) // all fragments too short

	chunks := SplitParagraphs(doc)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0].Text, FallbackLen)
}

func TestSplitParagraphs_Empty(t *testing.T) {
	assert.Empty(t, SplitParagraphs(""))
	assert.Empty(t, SplitParagraphs("   \n\n  \t\n"))
}
