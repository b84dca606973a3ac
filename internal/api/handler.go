package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/service"
)

// Handler handles BriefKit API requests
type Handler struct {
	uploads   *service.UploadService
	documents *service.DocumentService
	downloads *service.DownloadService
	index     *service.TranscriptIndex
}

// NewHandler creates a new API handler. index may be nil when transcript
// search is disabled.
func NewHandler(
	uploads *service.UploadService,
	documents *service.DocumentService,
	downloads *service.DownloadService,
	index *service.TranscriptIndex,
) *Handler {
	return &Handler{
		uploads:   uploads,
		documents: documents,
		downloads: downloads,
		index:     index,
	}
}

// RegisterRoutes registers API routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload", h.Upload)
	r.POST("/process/:file_id", h.Reprocess)
	r.GET("/status/:file_id", h.GetStatus)
	r.GET("/transcript/:file_id", h.GetTranscript)
	r.GET("/documentation/:file_id", h.GetDocumentation)
	r.POST("/documentation/:file_id/regenerate", h.Regenerate)
	r.GET("/download/:file_id/:format", h.Download)
	r.GET("/search", h.Search)
}

// Upload accepts a meeting recording and starts processing. By default the
// pipeline runs in the background and the caller polls the status endpoint;
// with form value sync=true the handler waits for the full run and returns
// the final result payload.
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	docType, ok := domain.ParseDocumentType(c.DefaultPostForm("document_type", string(domain.DocumentTypeBRD)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_type"})
		return
	}
	level, ok := domain.ParseDocumentationLevel(c.DefaultPostForm("documentation_level", string(domain.LevelSimple)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid documentation_level"})
		return
	}

	if c.PostForm("sync") == "true" {
		result, err := h.uploads.UploadSync(c.Request.Context(), file, docType, level)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	resp, err := h.uploads.Upload(c.Request.Context(), file, docType, level)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// Reprocess starts a fresh pipeline run for an already-uploaded recording.
// The body is optional; an empty one reprocesses with the defaults.
func (h *Handler) Reprocess(c *gin.Context) {
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DocumentType == "" {
		req.DocumentType = string(domain.DocumentTypeBRD)
	}
	if req.DocumentationLevel == "" {
		req.DocumentationLevel = string(domain.LevelSimple)
	}

	docType, ok := domain.ParseDocumentType(req.DocumentType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_type"})
		return
	}
	level, ok := domain.ParseDocumentationLevel(req.DocumentationLevel)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid documentation_level"})
		return
	}

	resp, err := h.uploads.Reprocess(c.Request.Context(), c.Param("file_id"), docType, level)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// GetStatus reports how far a file has progressed through the pipeline.
func (h *Handler) GetStatus(c *gin.Context) {
	st, err := h.documents.GetStatus(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetTranscript returns the stored transcript for a file.
func (h *Handler) GetTranscript(c *gin.Context) {
	record, err := h.documents.GetTranscript(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetDocumentation returns the current documentation for a file.
func (h *Handler) GetDocumentation(c *gin.Context) {
	record, err := h.documents.GetDocumentation(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type regenerateRequest struct {
	DocumentType       string `json:"document_type"`
	DocumentationLevel string `json:"documentation_level"`
}

// Regenerate produces a fresh document from the stored transcript,
// replacing the file's current documentation.
func (h *Handler) Regenerate(c *gin.Context) {
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DocumentType == "" {
		req.DocumentType = string(domain.DocumentTypeBRD)
	}
	if req.DocumentationLevel == "" {
		req.DocumentationLevel = string(domain.LevelSimple)
	}

	docType, ok := domain.ParseDocumentType(req.DocumentType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_type"})
		return
	}
	level, ok := domain.ParseDocumentationLevel(req.DocumentationLevel)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid documentation_level"})
		return
	}

	result, err := h.documents.Regenerate(c.Request.Context(), c.Param("file_id"), docType, level)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Download serves an export of the documentation, rendering it on demand.
func (h *Handler) Download(c *gin.Context) {
	format, ok := domain.ParseExportFormat(c.Param("format"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid format"})
		return
	}

	record, err := h.downloads.Download(c.Request.Context(), c.Param("file_id"), format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(record.FilePath, c.Param("file_id")+"."+string(format))
}

// Search performs a content search over indexed transcripts.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "5"))

	matches, err := h.index.Search(c.Request.Context(), query, topK)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
