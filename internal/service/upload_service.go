package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/capability/media"
	"github.com/briefkit/briefkit/internal/config"
	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/pipeline"
	"github.com/briefkit/briefkit/internal/repository"
	"github.com/briefkit/briefkit/internal/status"
)

// UploadService accepts recordings and hands them to the pipeline.
type UploadService struct {
	cfg          *config.Config
	logger       *zap.Logger
	files        *repository.Files
	tracker      *status.Tracker
	orchestrator *pipeline.Orchestrator
}

// NewUploadService creates a new upload service
func NewUploadService(
	cfg *config.Config,
	logger *zap.Logger,
	files *repository.Files,
	tracker *status.Tracker,
	orchestrator *pipeline.Orchestrator,
) *UploadService {
	return &UploadService{
		cfg:          cfg,
		logger:       logger,
		files:        files,
		tracker:      tracker,
		orchestrator: orchestrator,
	}
}

// Upload stores the recording, registers its record and starts a pipeline
// run in the background. It returns as soon as the file is durable.
func (s *UploadService) Upload(
	ctx context.Context,
	file *multipart.FileHeader,
	docType domain.DocumentType,
	level domain.DocumentationLevel,
) (*domain.UploadResponse, error) {
	req, err := s.intake(ctx, file, docType, level)
	if err != nil {
		return nil, err
	}

	s.orchestrator.Start(*req)

	return &domain.UploadResponse{
		FileID:  req.FileID,
		Status:  domain.StatusUploaded,
		Message: "file uploaded, processing started",
	}, nil
}

// UploadSync stores the recording and runs the whole pipeline before
// returning, giving the caller the final result payload in one round trip.
func (s *UploadService) UploadSync(
	ctx context.Context,
	file *multipart.FileHeader,
	docType domain.DocumentType,
	level domain.DocumentationLevel,
) (*pipeline.Result, error) {
	req, err := s.intake(ctx, file, docType, level)
	if err != nil {
		return nil, err
	}
	return s.orchestrator.Run(ctx, *req)
}

// Reprocess starts a fresh pipeline run for an already-uploaded recording,
// overwriting its status record. The recording must still be on disk.
func (s *UploadService) Reprocess(
	ctx context.Context,
	fileID string,
	docType domain.DocumentType,
	level domain.DocumentationLevel,
) (*domain.UploadResponse, error) {
	record, err := s.files.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, fileID)
	}

	path := s.StoragePath(record)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: recording for file %s no longer on disk", domain.ErrNotFound, fileID)
	}

	if err := s.tracker.Update(ctx, fileID, domain.StatusUploaded, domain.ProgressUploaded, domain.StageUpload, ""); err != nil {
		return nil, fmt.Errorf("failed to reset status: %w", err)
	}

	s.orchestrator.Start(pipeline.Request{
		FileID:   fileID,
		Path:     path,
		Filename: record.OriginalFilename,
		DocType:  docType,
		Level:    level,
	})

	s.logger.Info("recording reprocessing started",
		zap.String("file_id", fileID),
		zap.String("doc_type", string(docType)),
	)

	return &domain.UploadResponse{
		FileID:  fileID,
		Status:  domain.StatusUploaded,
		Message: "reprocessing started",
	}, nil
}

// intake validates and stores the upload, registers the file record and
// writes the initial status. Both execution modes share it.
func (s *UploadService) intake(
	ctx context.Context,
	file *multipart.FileHeader,
	docType domain.DocumentType,
	level domain.DocumentationLevel,
) (*pipeline.Request, error) {
	fileType := media.DetectFileType(file.Filename)
	if !media.IsSupported(fileType) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, fileType)
	}
	if max := s.cfg.Storage.MaxFileSize; max > 0 && file.Size > max {
		return nil, fmt.Errorf("%w: file size %d exceeds limit %d", domain.ErrInvalidRequest, file.Size, max)
	}

	if err := os.MkdirAll(s.cfg.Storage.Uploads, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	fileID := uuid.New().String()
	ext := filepath.Ext(file.Filename)
	storagePath := filepath.Join(s.cfg.Storage.Uploads, fileID+ext)

	if err := saveMultipart(file, storagePath); err != nil {
		return nil, err
	}

	record := &domain.FileRecord{
		FileID:           fileID,
		OriginalFilename: file.Filename,
		FileSize:         file.Size,
		FileType:         fileType,
		UploadTime:       time.Now().UTC(),
	}
	if err := s.files.Create(ctx, record); err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("failed to register file: %w", err)
	}

	if err := s.tracker.Update(ctx, fileID, domain.StatusUploaded, domain.ProgressUploaded, domain.StageUpload, ""); err != nil {
		return nil, fmt.Errorf("failed to record upload status: %w", err)
	}

	s.logger.Info("recording uploaded",
		zap.String("file_id", fileID),
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
	)

	return &pipeline.Request{
		FileID:   fileID,
		Path:     storagePath,
		Filename: file.Filename,
		DocType:  docType,
		Level:    level,
	}, nil
}

// StoragePath returns where a registered file's bytes live on disk.
func (s *UploadService) StoragePath(record *domain.FileRecord) string {
	ext := filepath.Ext(record.OriginalFilename)
	return filepath.Join(s.cfg.Storage.Uploads, record.FileID+ext)
}

func saveMultipart(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create storage file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}
