package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docuchat/server/models"
	"github.com/docuchat/server/services"
)

// RAGController handles the HTTP requests for the content Q&A API. Every
// failure is reported as data: HTTP 200 with success=false and an error
// string, including unknown sessions.
type RAGController struct {
	ragService services.RAGService
	uploads    *services.UploadStore
}

// NewRAGController is called from main.go to inject the service dependencies.
func NewRAGController(service services.RAGService, uploads *services.UploadStore) *RAGController {
	return &RAGController{
		ragService: service,
		uploads:    uploads,
	}
}

// Upload is the handler for POST /api/v1/upload. It accepts either a
// multipart file (PDF or image) or a JSON body carrying a url or text, and
// creates a new session from the content.
func (c *RAGController) Upload(ctx *gin.Context) {
	if header, err := ctx.FormFile("file"); err == nil {
		kind, ok := services.KindForFilename(header.Filename)
		if !ok {
			ctx.JSON(http.StatusOK, models.IngestResponse{Error: "Unsupported file type: " + header.Filename})
			return
		}

		src, err := header.Open()
		if err != nil {
			ctx.JSON(http.StatusOK, models.IngestResponse{Error: "Could not read uploaded file: " + err.Error()})
			return
		}
		defer src.Close()

		// The scratch file needs a unique prefix before any session exists.
		path, err := c.uploads.Save(uuid.New().String(), header.Filename, src)
		if err != nil {
			ctx.JSON(http.StatusOK, models.IngestResponse{Error: err.Error()})
			return
		}
		defer c.uploads.Remove(path)

		result, err := c.ragService.Ingest(ctx.Request.Context(), kind, path)
		if err != nil {
			ctx.JSON(http.StatusOK, models.IngestResponse{Error: err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, models.IngestResponse{
			Success:     true,
			SessionID:   result.SessionID,
			Summary:     result.Summary,
			ContentType: result.ContentType,
		})
		return
	}

	var req models.IngestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, models.IngestResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	kind, value, ok := kindFromJSON(req)
	if !ok {
		ctx.JSON(http.StatusOK, models.IngestResponse{Error: "No valid content provided"})
		return
	}

	result, err := c.ragService.Ingest(ctx.Request.Context(), kind, value)
	if err != nil {
		ctx.JSON(http.StatusOK, models.IngestResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, models.IngestResponse{
		Success:     true,
		SessionID:   result.SessionID,
		Summary:     result.Summary,
		ContentType: result.ContentType,
	})
}

// AddContext is the handler for POST /api/v1/add-context. The payload
// shapes match Upload plus a session_id identifying the session to extend.
func (c *RAGController) AddContext(ctx *gin.Context) {
	if header, err := ctx.FormFile("file"); err == nil {
		sessionID := ctx.PostForm("session_id")
		if sessionID == "" {
			ctx.JSON(http.StatusOK, models.AddContextResponse{Error: "Invalid session_id"})
			return
		}

		kind, ok := services.KindForFilename(header.Filename)
		if !ok {
			ctx.JSON(http.StatusOK, models.AddContextResponse{Error: "Unsupported file type: " + header.Filename})
			return
		}

		src, err := header.Open()
		if err != nil {
			ctx.JSON(http.StatusOK, models.AddContextResponse{Error: "Could not read uploaded file: " + err.Error()})
			return
		}
		defer src.Close()

		path, err := c.uploads.Save(sessionID, header.Filename, src)
		if err != nil {
			ctx.JSON(http.StatusOK, models.AddContextResponse{Error: err.Error()})
			return
		}
		defer c.uploads.Remove(path)

		label := fmt.Sprintf("%s file: %s", kind, header.Filename)
		c.respondAddContext(ctx, sessionID, kind, path, label, header.Filename)
		return
	}

	var req models.IngestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, models.AddContextResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if req.SessionID == "" {
		ctx.JSON(http.StatusOK, models.AddContextResponse{Error: "Invalid session_id"})
		return
	}

	switch {
	case strings.TrimSpace(req.URL) != "":
		c.respondAddContext(ctx, req.SessionID, models.KindURL, req.URL, "URL: "+req.URL, req.URL)
	case req.Text != "":
		c.respondAddContext(ctx, req.SessionID, models.KindText, req.Text, "Text content", "Custom text")
	default:
		ctx.JSON(http.StatusOK, models.AddContextResponse{Error: "No valid content provided"})
	}
}

func (c *RAGController) respondAddContext(ctx *gin.Context, sessionID string, kind models.SourceKind, value, label, name string) {
	result, err := c.ragService.AddContext(ctx.Request.Context(), sessionID, kind, value, label)
	if err != nil {
		ctx.JSON(http.StatusOK, models.AddContextResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, models.AddContextResponse{
		Success: true,
		Summary: result.Summary,
		AddedContent: &models.AddedContent{
			Type:    kind,
			Name:    name,
			Preview: result.Preview,
		},
	})
}

// Query is the handler for POST /api/v1/query. It runs the full answer
// chain: local retrieval, web search on a not-found local answer, and the
// general-knowledge fallback on search failure.
func (c *RAGController) Query(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, models.QueryResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if req.SessionID == "" || req.Question == "" {
		ctx.JSON(http.StatusOK, models.QueryResponse{Error: "Missing session_id or question"})
		return
	}

	result, err := c.ragService.Query(ctx.Request.Context(), req.SessionID, req.Question)
	if err != nil {
		ctx.JSON(http.StatusOK, models.QueryResponse{Error: "Invalid session_id"})
		return
	}
	ctx.JSON(http.StatusOK, models.QueryResponse{
		Success:  true,
		Answer:   result.Answer,
		Source:   result.Source,
		NotFound: result.NotFound,
		Message:  result.Message,
	})
}

// SearchWeb is the handler for POST /api/v1/search-web, the session-free
// entry point into the answer chain.
func (c *RAGController) SearchWeb(ctx *gin.Context) {
	var req models.WebSearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, models.WebSearchResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if req.Question == "" {
		ctx.JSON(http.StatusOK, models.WebSearchResponse{Error: "Missing question"})
		return
	}

	result := c.ragService.WebSearch(ctx.Request.Context(), req.Question)
	ctx.JSON(http.StatusOK, models.WebSearchResponse{
		Success: true,
		Answer:  result.Answer,
		Source:  result.Source,
		Message: result.Message,
	})
}

// GetSummary is the handler for GET /api/v1/sessions/:id/summary.
func (c *RAGController) GetSummary(ctx *gin.Context) {
	summary, err := c.ragService.Summary(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusOK, models.SummaryResponse{Error: "Session not found"})
		return
	}
	ctx.JSON(http.StatusOK, models.SummaryResponse{
		Success: true,
		Summary: summary,
	})
}

// kindFromJSON picks the ingestion kind from a JSON body: url wins over
// text, and both absent means there is nothing to ingest.
func kindFromJSON(req models.IngestRequest) (models.SourceKind, string, bool) {
	if strings.TrimSpace(req.URL) != "" {
		return models.KindURL, req.URL, true
	}
	if req.Text != "" {
		return models.KindText, req.Text, true
	}
	return "", "", false
}
