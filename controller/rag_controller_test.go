package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/server/models"
	"github.com/docuchat/server/services"
)

type fakeRAGService struct {
	ingestResult *services.IngestResult
	ingestErr    error
	addResult    *services.AddContextResult
	addErr       error
	queryResult  models.AnswerResult
	queryErr     error
	webResult    models.AnswerResult
	summary      string
	summaryErr   error

	lastKind  models.SourceKind
	lastValue string
	lastLabel string
}

func (f *fakeRAGService) Ingest(_ context.Context, kind models.SourceKind, value string) (*services.IngestResult, error) {
	f.lastKind, f.lastValue = kind, value
	return f.ingestResult, f.ingestErr
}

func (f *fakeRAGService) AddContext(_ context.Context, _ string, kind models.SourceKind, value, label string) (*services.AddContextResult, error) {
	f.lastKind, f.lastValue, f.lastLabel = kind, value, label
	return f.addResult, f.addErr
}

func (f *fakeRAGService) Query(context.Context, string, string) (models.AnswerResult, error) {
	return f.queryResult, f.queryErr
}

func (f *fakeRAGService) WebSearch(context.Context, string) models.AnswerResult {
	return f.webResult
}

func (f *fakeRAGService) Summary(string) (string, error) {
	return f.summary, f.summaryErr
}

func newTestRouter(svc services.RAGService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewRAGController(svc, services.NewUploadStore())
	router := gin.New()
	api := router.Group("/api/v1")
	{
		api.POST("/upload", ctrl.Upload)
		api.POST("/add-context", ctrl.AddContext)
		api.POST("/query", ctrl.Query)
		api.POST("/search-web", ctrl.SearchWeb)
		api.GET("/sessions/:id/summary", ctrl.GetSummary)
	}
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpload_TextCreatesSession(t *testing.T) {
	svc := &fakeRAGService{ingestResult: &services.IngestResult{
		SessionID:   "sess-1",
		Summary:     "a summary",
		ContentType: models.KindText,
	}}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/v1/upload", gin.H{"text": "hello world"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, models.KindText, resp.ContentType)
	assert.Equal(t, models.KindText, svc.lastKind)
	assert.Equal(t, "hello world", svc.lastValue)
}

func TestUpload_URLWinsOverText(t *testing.T) {
	svc := &fakeRAGService{ingestResult: &services.IngestResult{SessionID: "sess-2", ContentType: models.KindURL}}
	router := newTestRouter(svc)

	postJSON(t, router, "/api/v1/upload", gin.H{"url": "https://example.com", "text": "ignored"})

	assert.Equal(t, models.KindURL, svc.lastKind)
	assert.Equal(t, "https://example.com", svc.lastValue)
}

func TestUpload_EmptyBodyFailsAsData(t *testing.T) {
	router := newTestRouter(&fakeRAGService{})

	w := postJSON(t, router, "/api/v1/upload", gin.H{})

	assert.Equal(t, http.StatusOK, w.Code, "failures are data, never transport errors")
	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "No valid content provided", resp.Error)
}

func TestUpload_MultipartFileRoutesToKind(t *testing.T) {
	svc := &fakeRAGService{ingestResult: &services.IngestResult{SessionID: "sess-3", ContentType: models.KindPDF}}
	router := newTestRouter(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "paper.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.KindPDF, svc.lastKind)
	assert.NotEmpty(t, svc.lastValue, "service receives the scratch file path")
}

func TestUpload_UnsupportedFileType(t *testing.T) {
	router := newTestRouter(&fakeRAGService{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "macro.docx")
	require.NoError(t, err)
	_, err = part.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Unsupported file type")
}

func TestQuery_Success(t *testing.T) {
	svc := &fakeRAGService{queryResult: models.AnswerResult{
		Answer: "an answer",
		Source: models.SourceDocument,
	}}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/v1/query", gin.H{"session_id": "sess-1", "question": "who?"})

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "an answer", resp.Answer)
	assert.Equal(t, models.SourceDocument, resp.Source)
}

func TestQuery_MissingFields(t *testing.T) {
	router := newTestRouter(&fakeRAGService{})

	w := postJSON(t, router, "/api/v1/query", gin.H{"question": "who?"})

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing session_id or question", resp.Error)
}

func TestQuery_UnknownSessionIsDataNotA404(t *testing.T) {
	svc := &fakeRAGService{queryErr: fmt.Errorf("%w: nope", services.ErrSessionNotFound)}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/v1/query", gin.H{"session_id": "nope", "question": "who?"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid session_id", resp.Error)
}

func TestSearchWeb_Fallback(t *testing.T) {
	svc := &fakeRAGService{webResult: models.AnswerResult{
		Answer:  "knowledge answer",
		Source:  models.SourceFallback,
		Message: "Google Search quota exceeded. Used Gemini's general knowledge.",
	}}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/v1/search-web", gin.H{"question": "how old?"})

	var resp models.WebSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.SourceFallback, resp.Source)
	assert.Contains(t, resp.Message, "quota exceeded")
}

func TestSearchWeb_MissingQuestion(t *testing.T) {
	router := newTestRouter(&fakeRAGService{})

	w := postJSON(t, router, "/api/v1/search-web", gin.H{})

	var resp models.WebSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing question", resp.Error)
}

func TestAddContext_TextAppends(t *testing.T) {
	svc := &fakeRAGService{addResult: &services.AddContextResult{
		Summary: "combined summary",
		Preview: models.ContentPreview{Source: "Text content", TextPreview: "more", CharacterCount: 4, DocumentCount: 1},
	}}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/v1/add-context", gin.H{"session_id": "sess-1", "text": "more"})

	var resp models.AddContextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "combined summary", resp.Summary)
	require.NotNil(t, resp.AddedContent)
	assert.Equal(t, models.KindText, resp.AddedContent.Type)
	assert.Equal(t, "Custom text", resp.AddedContent.Name)
	assert.Equal(t, "Text content", svc.lastLabel)
}

func TestAddContext_MissingSession(t *testing.T) {
	router := newTestRouter(&fakeRAGService{})

	w := postJSON(t, router, "/api/v1/add-context", gin.H{"text": "more"})

	var resp models.AddContextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid session_id", resp.Error)
}

func TestGetSummary(t *testing.T) {
	svc := &fakeRAGService{summary: "the stored summary"}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-1/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp models.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "the stored summary", resp.Summary)
}

func TestGetSummary_UnknownSession(t *testing.T) {
	svc := &fakeRAGService{summaryErr: services.ErrSessionNotFound}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/missing/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Session not found", resp.Error)
}
