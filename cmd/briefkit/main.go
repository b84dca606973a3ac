package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/api"
	"github.com/briefkit/briefkit/internal/capability/llm"
	"github.com/briefkit/briefkit/internal/capability/media"
	"github.com/briefkit/briefkit/internal/capability/render"
	"github.com/briefkit/briefkit/internal/config"
	"github.com/briefkit/briefkit/internal/ledger"
	"github.com/briefkit/briefkit/internal/pipeline"
	"github.com/briefkit/briefkit/internal/repository"
	"github.com/briefkit/briefkit/internal/service"
	"github.com/briefkit/briefkit/internal/status"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize the record ledger
	store, err := ledger.NewSQLite(cfg.Ledger.Path)
	if err != nil {
		logger.Fatal("Failed to initialize ledger", zap.Error(err))
	}
	defer store.Close()

	// Initialize repositories and status tracking
	files := repository.NewFiles(store)
	transcripts := repository.NewTranscripts(store)
	documents := repository.NewDocuments(store)
	downloads := repository.NewDownloads(store)
	tracker := status.NewTracker(store, logger)

	// Initialize pipeline capabilities
	validator := media.NewFileValidator(cfg.Storage.MaxFileSize)
	transcriber := media.NewExecTranscriber(media.TranscriberConfig{
		FFmpegPath: cfg.Transcriber.FFmpegPath,
		Command:    cfg.Transcriber.Command,
		Args:       cfg.Transcriber.CommandArgs,
		WorkDir:    cfg.Transcriber.WorkDir,
	}, logger)
	generator := llm.NewClient(llm.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}, logger)
	renderer := render.NewFileRenderer(render.Config{
		OutputDir:     cfg.Storage.Exports,
		ConverterPath: cfg.Renderer.ConverterPath,
	}, logger)

	// Initialize the transcript search index (optional)
	index, err := service.NewTranscriptIndex(cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize transcript index, running without search", zap.Error(err))
		index = nil
	}

	// Initialize the pipeline
	runner := pipeline.NewRunner(logger)
	orchestrator := pipeline.NewOrchestrator(pipeline.Config{
		StageTimeout:    cfg.Pipeline.StageTimeout,
		MaxAttempts:     cfg.Pipeline.MaxAttempts,
		GenerationDelay: cfg.Pipeline.GenerationDelay,
		FetchDelay:      cfg.Pipeline.FetchDelay,
		RequireQuality:  cfg.Pipeline.RequireQuality,
	}, logger, tracker, files, transcripts, documents,
		validator, transcriber, generator, index, runner)

	// Initialize services
	uploadService := service.NewUploadService(cfg, logger, files, tracker, orchestrator)
	documentService := service.NewDocumentService(logger, files, transcripts, documents, tracker, orchestrator)
	downloadService := service.NewDownloadService(cfg, logger, documents, downloads, renderer, runner)

	// Setup router
	router := api.SetupRouter(uploadService, documentService, downloadService, index, api.RouterConfig{
		APIKey:       cfg.Auth.APIKey,
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting BriefKit server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", cfg.Server.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight pipeline runs finish
	if err := runner.Shutdown(ctx); err != nil {
		logger.Warn("Pipeline shutdown incomplete", zap.Error(err))
	}

	logger.Info("Server exited")
}
