// Package artifact turns documents into study artifacts (summaries,
// flashcards, mindmaps, chat answers) by combining lexical retrieval, the
// result cache and the resilient generation service.
package artifact

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Summary customization enums. Values are wire-level strings shared with
// the HTTP API and the cache key encoding.
const (
	StyleConceptual   = "conceptual"
	StyleMathematical = "mathematical"
	StyleBulletPoints = "bullet-points"
	StyleDetailed     = "detailed"

	DepthBasic        = "basic"
	DepthIntermediate = "intermediate"
	DepthAdvanced     = "advanced"

	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Flashcard count bounds.
const (
	DefaultFlashcardCount = 20
	MaxFlashcardCount     = 50
)

// SummaryOptions selects the style, depth and length of a generated
// summary. The zero value is not valid; use DefaultSummaryOptions.
type SummaryOptions struct {
	Style  string `json:"style"`
	Depth  string `json:"depth"`
	Length string `json:"length"`
}

// DefaultSummaryOptions mirrors what the UI preselects.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		Style:  StyleConceptual,
		Depth:  DepthIntermediate,
		Length: LengthMedium,
	}
}

// Validate checks every field against its enum.
func (o SummaryOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Style, validation.Required,
			validation.In(StyleConceptual, StyleMathematical, StyleBulletPoints, StyleDetailed)),
		validation.Field(&o.Depth, validation.Required,
			validation.In(DepthBasic, DepthIntermediate, DepthAdvanced)),
		validation.Field(&o.Length, validation.Required,
			validation.In(LengthShort, LengthMedium, LengthLong)),
	)
}
