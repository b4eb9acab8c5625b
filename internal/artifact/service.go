package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studykit/studykit/internal/cache"
	"github.com/studykit/studykit/internal/genai"
	"github.com/studykit/studykit/internal/retrieval"
)

// Document size limits, in characters. Violations fail fast before any
// retrieval or generation work begins.
const (
	MinDocumentSize = 100
	MaxDocumentSize = 500000

	// ChatContextWindow bounds how much retrieved context a chat prompt
	// carries.
	ChatContextWindow = 50000
)

// ErrEmptyQuery rejects chat requests with nothing to answer.
var ErrEmptyQuery = errors.New("query must not be empty")

// Result is a generated (or cache-served) text artifact.
type Result struct {
	Value  string `json:"value"`
	Cached bool   `json:"cached"`
}

// FlashcardSet is a generated (or cache-served) deck.
type FlashcardSet struct {
	Cards  []Flashcard `json:"cards"`
	Cached bool        `json:"cached"`
}

// Service generates study artifacts. Construct once with NewService and
// share; it is safe for concurrent use.
type Service struct {
	gen    genai.Generator
	cache  *cache.Cache
	logger *slog.Logger
	topK   int
}

// NewService wires the generation service and the result cache together.
func NewService(gen genai.Generator, c *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, cache: c, logger: logger, topK: retrieval.DefaultTopK}
}

// Summary generates a customized summary of document, serving a cached copy
// when the same document and options were seen before.
func (s *Service) Summary(ctx context.Context, document string, opts SummaryOptions) (Result, error) {
	if err := validateDocument(document); err != nil {
		return Result{}, err
	}
	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("summary options: %w", err)
	}

	fp := cache.Fingerprint(document)
	key := cache.Options{Kind: "summary", Style: opts.Style, Depth: opts.Depth, Length: opts.Length}

	value, cached, err := s.cache.GetOrProduce(ctx, fp, key, func(ctx context.Context) (string, error) {
		prompt := summaryPrompt(cleanText(document), opts)
		return s.gen.Generate(ctx, prompt, "")
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("summary served", "fingerprint", fp, "cached", cached, "style", opts.Style)
	return Result{Value: value, Cached: cached}, nil
}

// Mindmap generates a markdown mindmap of document.
func (s *Service) Mindmap(ctx context.Context, document string) (Result, error) {
	if err := validateDocument(document); err != nil {
		return Result{}, err
	}

	fp := cache.Fingerprint(document)
	value, cached, err := s.cache.GetOrProduce(ctx, fp, cache.Options{Kind: "mindmap"}, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, mindmapPrompt(cleanText(document)), "")
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("mindmap served", "fingerprint", fp, "cached", cached)
	return Result{Value: value, Cached: cached}, nil
}

// Flashcards generates a deck of count cards from document. The raw JSON is
// what gets cached; parsing and per-card validation run on every serve so a
// poisoned cache entry cannot hand unvalidated data onward.
func (s *Service) Flashcards(ctx context.Context, document string, count int) (FlashcardSet, error) {
	if err := validateDocument(document); err != nil {
		return FlashcardSet{}, err
	}
	if count <= 0 {
		count = DefaultFlashcardCount
	}
	if count > MaxFlashcardCount {
		count = MaxFlashcardCount
	}

	fp := cache.Fingerprint(document)
	key := cache.Options{Kind: "flashcards", Count: count}

	raw, cached, err := s.cache.GetOrProduce(ctx, fp, key, func(ctx context.Context) (string, error) {
		out, err := s.gen.Generate(ctx, flashcardsPrompt(cleanText(document), count), "")
		if err != nil {
			return "", err
		}
		// Parse before caching: malformed output must surface as a
		// retryable invalid response, not get stored.
		if _, err := parseFlashcards(out); err != nil {
			return "", err
		}
		return out, nil
	})
	if err != nil {
		return FlashcardSet{}, err
	}

	cards, err := parseFlashcards(raw)
	if err != nil {
		return FlashcardSet{}, err
	}
	s.logger.Info("flashcards served", "fingerprint", fp, "cached", cached, "cards", len(cards))
	return FlashcardSet{Cards: cards, Cached: cached}, nil
}

// Chat answers query using the parts of document most relevant to it.
// Answers depend on the query, so they are never cached.
func (s *Service) Chat(ctx context.Context, document, query string) (string, error) {
	if err := validateDocument(document); err != nil {
		return "", err
	}
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	contextText := retrieval.Context(query, cleanText(document), s.topK)
	contextText = truncate(contextText, ChatContextWindow)

	return s.gen.Generate(ctx, chatPrompt(contextText, query), chatSystemInstruction)
}

// RetrieveContext exposes the retrieval layer to collaborators that build
// their own prompts.
func (s *Service) RetrieveContext(query, document string, k int) string {
	if k <= 0 {
		k = s.topK
	}
	return retrieval.Context(query, document, k)
}

// Invalidate drops every cached artifact derived from document.
func (s *Service) Invalidate(document string) {
	s.cache.InvalidateDocument(cache.Fingerprint(document))
}

// InvalidateFingerprint drops a document's cached artifacts by fingerprint,
// for callers that no longer hold the document text.
func (s *Service) InvalidateFingerprint(fingerprint string) {
	s.cache.InvalidateDocument(fingerprint)
}

// validateDocument enforces the size contract before any work begins.
func validateDocument(document string) error {
	switch {
	case len(document) < MinDocumentSize:
		return genai.NewError(genai.KindEmptyDocument,
			fmt.Errorf("document has %d characters, need at least %d", len(document), MinDocumentSize))
	case len(document) > MaxDocumentSize:
		return genai.NewError(genai.KindDocumentTooLarge,
			fmt.Errorf("document has %d characters, limit is %d", len(document), MaxDocumentSize))
	}
	return nil
}
