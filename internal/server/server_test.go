package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studykit/studykit/internal/artifact"
	"github.com/studykit/studykit/internal/cache"
	"github.com/studykit/studykit/internal/genai"
	"github.com/studykit/studykit/internal/keypool"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (g *stubGenerator) Generate(context.Context, string, string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func newTestServer(t *testing.T, gen genai.Generator) (*Server, *cache.Cache) {
	t.Helper()
	pool, err := keypool.New([]string{"test-key"})
	require.NoError(t, err)
	store := cache.New()
	return New(artifact.NewService(gen, store, nil), pool, nil), store
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func testDocument() string {
	return strings.Repeat("Photosynthesis converts light energy into chemical energy in plants. ", 5)
}

func TestHandleSummary(t *testing.T) {
	gen := &stubGenerator{response: "# Study Guide"}
	srv, _ := newTestServer(t, gen)
	h := srv.Routes()

	rec := postJSON(t, h, "/api/summary", map[string]any{
		"documentText": testDocument(),
		"style":        artifact.StyleConceptual,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "# Study Guide", resp.Summary)
	assert.False(t, resp.Cached)
	assert.NotEmpty(t, resp.Fingerprint)

	// Same request again comes from the cache.
	rec = postJSON(t, h, "/api/summary", map[string]any{
		"documentText": testDocument(),
		"style":        artifact.StyleConceptual,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	assert.Equal(t, 1, gen.calls)
}

func TestHandleSummary_MissingDocument(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{response: "x"})

	rec := postJSON(t, srv.Routes(), "/api/summary", map[string]any{"style": "conceptual"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSummary_InvalidStyle(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{response: "x"})

	rec := postJSON(t, srv.Routes(), "/api/summary", map[string]any{
		"documentText": testDocument(),
		"style":        "interpretive-dance",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFlashcards(t *testing.T) {
	gen := &stubGenerator{response: `[{"question": "Q?", "answer": "A."}]`}
	srv, _ := newTestServer(t, gen)

	rec := postJSON(t, srv.Routes(), "/api/flashcards", map[string]any{
		"documentText": testDocument(),
		"count":        5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var set artifact.FlashcardSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	require.Len(t, set.Cards, 1)
	assert.Equal(t, "Q?", set.Cards[0].Question)
	assert.NotEmpty(t, set.Cards[0].ID)
}

func TestHandleMindmap_ReturnsTree(t *testing.T) {
	gen := &stubGenerator{response: "# Plants\n## Photosynthesis\n- Light to energy\n"}
	srv, _ := newTestServer(t, gen)

	rec := postJSON(t, srv.Routes(), "/api/mindmap", map[string]any{
		"documentText": testDocument(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp mindmapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Markdown, "# Plants")
	require.Len(t, resp.Tree, 1)
	assert.Equal(t, "Plants", resp.Tree[0].Title)
	require.Len(t, resp.Tree[0].Children, 1)
	assert.Equal(t, []string{"Light to energy"}, resp.Tree[0].Children[0].Points)
}

func TestHandleMindmap_UnstructuredStillServed(t *testing.T) {
	gen := &stubGenerator{response: "no headings in this output at all"}
	srv, _ := newTestServer(t, gen)

	rec := postJSON(t, srv.Routes(), "/api/mindmap", map[string]any{
		"documentText": testDocument(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp mindmapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no headings in this output at all", resp.Markdown)
	assert.Empty(t, resp.Tree)
}

func TestHandleChat(t *testing.T) {
	gen := &stubGenerator{response: "It converts light into chemical energy."}
	srv, _ := newTestServer(t, gen)

	rec := postJSON(t, srv.Routes(), "/api/chat", map[string]any{
		"documentText": testDocument(),
		"query":        "what does photosynthesis do",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Answer, "chemical energy")
}

func TestHandleChat_MissingQuery(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{response: "x"})

	rec := postJSON(t, srv.Routes(), "/api/chat", map[string]any{
		"documentText": testDocument(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"quota", genai.NewError(genai.KindQuota, errors.New("429")), http.StatusTooManyRequests},
		{"transport", genai.NewError(genai.KindTransport, errors.New("down")), http.StatusBadGateway},
		{"auth", genai.NewError(genai.KindAuth, errors.New("denied")), http.StatusBadGateway},
		{"invalid response", genai.NewError(genai.KindInvalidResponse, nil), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, &stubGenerator{err: tt.err})
			rec := postJSON(t, srv.Routes(), "/api/mindmap", map[string]any{
				"documentText": testDocument(),
			})
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleInvalidate(t *testing.T) {
	gen := &stubGenerator{response: "# Map"}
	srv, store := newTestServer(t, gen)
	h := srv.Routes()

	rec := postJSON(t, h, "/api/mindmap", map[string]any{"documentText": testDocument()})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, store.Len())

	fp := cache.Fingerprint(testDocument())
	req := httptest.NewRequest(http.MethodDelete, "/api/documents/"+fp, nil)
	del := httptest.NewRecorder()
	h.ServeHTTP(del, req)

	assert.Equal(t, http.StatusNoContent, del.Code)
	assert.Equal(t, 0, store.Len())
}

func TestHandleKeyStatus(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{response: "x"})

	req := httptest.NewRequest(http.MethodGet, "/api/keys/status", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var st keypool.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1, st.Available)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{response: "x"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
