package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// UploadSuccessMessage is returned for every accepted upload, including
// ones whose ingestion reported an error in the result.
const UploadSuccessMessage = "PDF uploaded and processed successfully"

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// AgentInfo names an agent that answered and why it was chosen.
type AgentInfo struct {
	Name      string `json:"name"`
	Rationale string `json:"rationale"`
}

// DocumentInfo is one retrieved item.
type DocumentInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	Answer             string         `json:"answer"`
	AgentsUsed         []AgentInfo    `json:"agents_used"`
	DocumentsRetrieved []DocumentInfo `json:"documents_retrieved"`
	Timestamp          time.Time      `json:"timestamp"`
}

// UploadResponse is the body returned by POST /upload_pdf.
type UploadResponse struct {
	Message string              `json:"message"`
	Result  domain.IngestResult `json:"result"`
}

// LogsResponse is the body returned by GET /logs.
type LogsResponse struct {
	Logs []domain.LogEntry `json:"logs"`
}

// HealthResponse is the body returned by GET /healthz.
type HealthResponse struct {
	Status    string          `json:"status"`
	Documents int             `json:"documents"`
	Providers map[string]bool `json:"providers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Multi-Agent AI System API"})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Providers: s.ports.Providers}
	if s.ports.Retrieval != nil {
		resp.Documents = s.ports.Retrieval.Size()
	}
	if resp.Providers == nil {
		resp.Providers = map[string]bool{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	answer, err := s.ports.Ask.Ask(c.Request.Context(), domain.Question{Text: req.Question, Context: req.Context})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		logger.Error("Ask failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toAskResponse(answer))
}

func toAskResponse(answer *domain.FinalAnswer) AskResponse {
	resp := AskResponse{
		Answer:             answer.Answer,
		AgentsUsed:         make([]AgentInfo, 0, len(answer.Decision.Agents)),
		DocumentsRetrieved: make([]DocumentInfo, 0, len(answer.Items)),
		Timestamp:          answer.Timestamp,
	}
	for _, id := range answer.Decision.Agents {
		resp.AgentsUsed = append(resp.AgentsUsed, AgentInfo{
			Name:      string(id),
			Rationale: answer.Decision.Rationale[id],
		})
	}
	for _, item := range answer.Items {
		resp.DocumentsRetrieved = append(resp.DocumentsRetrieved, DocumentInfo{
			ID:      item.ID,
			Title:   item.Title,
			Content: item.Content,
		})
	}
	return resp
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxFileSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: domain.ErrFileTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: "multipart field \"file\" is required"})
		return
	}
	if header.Size > s.cfg.MaxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: domain.ErrFileTooLarge.Error()})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.ports.Ingest.IngestUpload(c.Request.Context(), header.Filename, content)
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		logger.Error("Upload %s: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, UploadResponse{Message: UploadSuccessMessage, Result: result})
}

func (s *Server) handleLogs(c *gin.Context) {
	entries, err := s.ports.Logs.List(c.Request.Context())
	if err != nil {
		logger.Error("List logs: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, LogsResponse{Logs: entries})
}
