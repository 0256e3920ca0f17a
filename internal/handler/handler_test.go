package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/internal/repo"
	"github.com/docchat/docchat/internal/service"
	"github.com/docchat/docchat/internal/vectorindex"
)

type stubExtractor struct {
	text string
}

func (s *stubExtractor) Text(ctx context.Context, data []byte) (string, error) {
	return s.text, nil
}

type stubProvider struct {
	dim int
}

func (s *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dim)
	vec[0] = 1
	return vec, nil
}

func (s *stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = s.Embed(ctx, texts[i])
	}
	return out, nil
}

func (s *stubProvider) ModelName() string { return "stub" }
func (s *stubProvider) Dimension() int    { return s.dim }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.Open(repo.ConnectOptions{
		Backend: repo.BackendSQLite,
		Path:    filepath.Join(t.TempDir(), "handler.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repo.ApplyMigrations(db))

	index := vectorindex.NewMemoryIndex(4)
	provider := &stubProvider{dim: 4}
	extractor := &stubExtractor{text: strings.Repeat("A perfectly normal sentence for testing. ", 10)}

	ingest := service.NewIngestService(extractor, provider, index, nil, service.IngestOptions{})
	query := service.NewQueryService(provider, index, service.QueryOptions{DefaultTopK: 5, MaxTopK: 10})
	chat := service.NewChatService(repo.NewSessionRepo(db), repo.NewMessageRepo(db))

	return NewRouter(RouterDeps{
		Upload:   NewUploadHandler(ingest),
		Query:    NewQueryHandler(query),
		Chat:     NewChatHandler(chat),
		Sessions: NewSessionHandler(chat),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doUpload(t *testing.T, router *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/v1/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUploadValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doUpload(t, router, "notes.txt", []byte("plain text"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// missing file field
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-pdf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadThenQuery(t *testing.T) {
	router := newTestRouter(t)

	w := doUpload(t, router, "doc.pdf", []byte("%PDF-1.4 body"))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])

	w = doJSON(t, router, http.MethodPost, "/api/v1/query", gin.H{"query": "what is this", "top_k": 3})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	require.NotEmpty(t, data["matches"])
}

func TestQueryValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/query", gin.H{"query": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/query", gin.H{"query": "q", "top_k": 999})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetrieveReturnsChunks(t *testing.T) {
	router := newTestRouter(t)
	doUpload(t, router, "doc.pdf", []byte("%PDF-1.4 body"))

	w := doJSON(t, router, http.MethodPost, "/api/v1/retrieve", gin.H{"query": "anything"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	require.NotEmpty(t, data["chunks"])
}

func TestSessionCRUD(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", gin.H{"name": "my chat", "mode": "chat"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	sessionID := data["id"].(string)
	require.NotEmpty(t, sessionID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sessions := decodeBody(t, w)["data"].(map[string]interface{})["sessions"].([]interface{})
	require.Len(t, sessions, 1)

	w = doJSON(t, router, http.MethodPost, "/api/v1/save-message", gin.H{
		"session_id": sessionID,
		"question":   "hello?",
		"answer":     "hi",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+sessionID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	messages := decodeBody(t, w)["data"].(map[string]interface{})["messages"].([]interface{})
	require.Len(t, messages, 2)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", gin.H{"name": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions", gin.H{"name": "x", "mode": "voice"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHistoryEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", gin.H{"name": "history"})
	sessionID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	doJSON(t, router, http.MethodPost, "/api/v1/save-message", gin.H{
		"session_id": sessionID, "question": "q1", "answer": "a1",
	})

	w = doJSON(t, router, http.MethodGet, "/api/v1/chat-history?session_id="+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	messages := decodeBody(t, w)["data"].(map[string]interface{})["messages"].([]interface{})
	require.Len(t, messages, 2)

	w = doJSON(t, router, http.MethodGet, "/api/v1/chat-history?limit=bogus", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/chat-history/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/chat-history?session_id="+sessionID, nil)
	messages = decodeBody(t, w)["data"].(map[string]interface{})["messages"].([]interface{})
	require.Empty(t, messages)

	// unknown session save is rejected
	w = doJSON(t, router, http.MethodPost, "/api/v1/save-message", gin.H{
		"session_id": "missing", "question": "q", "answer": "a",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}
