package artifact

import (
	"regexp"
	"strings"
)

// Extraction noise that only confuses the generation service.
var (
	pageNumberRe = regexp.MustCompile(`(?m)^.*Page \d+.*$`)
	copyrightRe  = regexp.MustCompile(`(?m)^.*©.*$`)
	tocRe        = regexp.MustCompile(`(?is)Table of Contents.*?\n\n`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// cleanText strips page numbers, copyright lines, table-of-contents blocks
// and excessive blank runs from extracted document text.
func cleanText(text string) string {
	text = pageNumberRe.ReplaceAllString(text, "")
	text = copyrightRe.ReplaceAllString(text, "")
	text = tocRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// truncate bounds s to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
