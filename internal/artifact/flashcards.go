package artifact

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/studykit/studykit/internal/genai"
)

// Flashcard is one question/answer pair. ID is assigned at parse time so
// the UI can track cards across shuffles.
type Flashcard struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// cardEnvelope covers the shapes models actually return when asked for "a
// JSON array": sometimes the array is wrapped in an object.
type cardEnvelope struct {
	Flashcards []Flashcard `json:"flashcards"`
	Cards      []Flashcard `json:"cards"`
}

// parseFlashcards validates generated flashcard JSON at the boundary, right
// after the external call returns. It tolerates a markdown code fence and an
// object wrapper, drops cards missing a question or answer, and classifies
// anything unusable as an invalid response so the invoker may retry.
func parseFlashcards(raw string) ([]Flashcard, error) {
	raw = stripCodeFence(raw)

	var cards []Flashcard
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		var env cardEnvelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			return nil, genai.NewError(genai.KindInvalidResponse, err)
		}
		cards = env.Flashcards
		if len(cards) == 0 {
			cards = env.Cards
		}
	}

	valid := cards[:0]
	for _, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			continue
		}
		c.ID = uuid.New().String()
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil, genai.NewError(genai.KindInvalidResponse, nil)
	}
	return valid, nil
}

// stripCodeFence unwraps ```json ... ``` fences around a JSON payload.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
