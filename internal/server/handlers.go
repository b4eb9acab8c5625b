package server

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/studykit/studykit/internal/artifact"
	"github.com/studykit/studykit/internal/cache"
	"github.com/studykit/studykit/internal/genai"
	"github.com/studykit/studykit/internal/mindmap"
)

// maxRequestBody bounds uploads a bit above the document size limit so the
// size violation surfaces as a 400 from validation, not a truncated read.
const maxRequestBody = 16 << 20 // 16 MiB

type summaryRequest struct {
	DocumentText string `json:"documentText"`
	Style        string `json:"style"`
	Depth        string `json:"depth"`
	Length       string `json:"length"`
}

func (r summaryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocumentText, validation.Required),
	)
}

type summaryResponse struct {
	Summary     string `json:"summary"`
	Cached      bool   `json:"cached"`
	Fingerprint string `json:"fingerprint"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := artifact.DefaultSummaryOptions()
	if req.Style != "" {
		opts.Style = req.Style
	}
	if req.Depth != "" {
		opts.Depth = req.Depth
	}
	if req.Length != "" {
		opts.Length = req.Length
	}

	res, err := s.artifacts.Summary(r.Context(), req.DocumentText, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:     res.Value,
		Cached:      res.Cached,
		Fingerprint: cache.Fingerprint(req.DocumentText),
	})
}

type flashcardsRequest struct {
	DocumentText string `json:"documentText"`
	Count        int    `json:"count"`
}

func (r flashcardsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocumentText, validation.Required),
		validation.Field(&r.Count, validation.Min(0), validation.Max(artifact.MaxFlashcardCount)),
	)
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	var req flashcardsRequest
	if !s.decode(w, r, &req) {
		return
	}

	set, err := s.artifacts.Flashcards(r.Context(), req.DocumentText, req.Count)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

type mindmapRequest struct {
	DocumentText string `json:"documentText"`
}

func (r mindmapRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocumentText, validation.Required),
	)
}

type mindmapResponse struct {
	Markdown string          `json:"markdown"`
	Tree     []*mindmap.Node `json:"tree,omitempty"`
	Cached   bool            `json:"cached"`
}

func (s *Server) handleMindmap(w http.ResponseWriter, r *http.Request) {
	var req mindmapRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.artifacts.Mindmap(r.Context(), req.DocumentText)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The tree is best-effort: clients always get the markdown even when
	// the model ignored the structure instructions.
	tree, err := s.mindmaps.Parse([]byte(res.Value))
	if err != nil {
		s.logger.Warn("mindmap markdown unparseable", "error", err)
	}

	writeJSON(w, http.StatusOK, mindmapResponse{
		Markdown: res.Value,
		Tree:     tree,
		Cached:   res.Cached,
	})
}

type chatRequest struct {
	DocumentText string `json:"documentText"`
	Query        string `json:"query"`
}

func (r chatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocumentText, validation.Required),
		validation.Field(&r.Query, validation.Required),
	)
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}

	answer, err := s.artifacts.Chat(r.Context(), req.DocumentText, req.Query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

// decode reads and validates a JSON request body, writing the 400 itself
// when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst validation.Validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := dst.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// writeError maps domain failures onto HTTP statuses: input problems are the
// caller's fault, quota exhaustion maps to 429, everything else upstream
// becomes a 502.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var cerr *genai.Error
	switch {
	case errors.Is(err, artifact.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.As(err, &cerr):
		switch cerr.Kind {
		case genai.KindEmptyDocument, genai.KindDocumentTooLarge:
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case genai.KindQuota:
			writeJSON(w, http.StatusTooManyRequests, errorBody("generation service is rate limited, try again shortly"))
		default:
			writeJSON(w, http.StatusBadGateway, errorBody("generation service unavailable"))
		}
	default:
		// Option enums and other request-shape failures.
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
