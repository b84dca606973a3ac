package api

import (
	"github.com/gin-gonic/gin"

	"github.com/briefkit/briefkit/internal/api/middleware"
	"github.com/briefkit/briefkit/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	uploads *service.UploadService,
	documents *service.DocumentService,
	downloads *service.DownloadService,
	index *service.TranscriptIndex,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API (requires API key when configured)
	handler := NewHandler(uploads, documents, downloads, index)
	group := r.Group("/api/v1")
	group.Use(middleware.Auth(cfg.APIKey))
	handler.RegisterRoutes(group)

	return r
}
