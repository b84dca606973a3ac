package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/capability"
	"github.com/briefkit/briefkit/internal/config"
	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/pipeline"
	"github.com/briefkit/briefkit/internal/repository"
	"github.com/briefkit/briefkit/internal/retry"
)

// DownloadService renders exports of generated documentation and caches the
// artifacts on disk. A cached export is reused as long as its record exists
// and the file is still present; otherwise it is rendered again.
type DownloadService struct {
	cfg       *config.Config
	logger    *zap.Logger
	documents *repository.Documents
	downloads *repository.Downloads
	renderer  capability.Renderer
	runner    *pipeline.Runner
	exec      *retry.Executor
	now       func() time.Time
}

// NewDownloadService creates a new download service
func NewDownloadService(
	cfg *config.Config,
	logger *zap.Logger,
	documents *repository.Documents,
	downloads *repository.Downloads,
	renderer capability.Renderer,
	runner *pipeline.Runner,
) *DownloadService {
	attempts := cfg.Pipeline.MaxAttempts
	if attempts == 0 {
		attempts = 3
	}
	return &DownloadService{
		cfg:       cfg,
		logger:    logger,
		documents: documents,
		downloads: downloads,
		renderer:  renderer,
		runner:    runner,
		exec:      retry.NewExecutor(attempts, time.Second, logger),
		now:       time.Now,
	}
}

// Download returns the export artifact for a file in the requested format,
// rendering it if no usable cached copy exists.
func (s *DownloadService) Download(ctx context.Context, fileID string, format domain.ExportFormat) (*domain.DownloadRecord, error) {
	doc, err := s.documents.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: documentation for file %s", domain.ErrNotFound, fileID)
	}

	if cached, err := s.downloads.Get(ctx, fileID, format); err == nil && s.usable(cached, doc) {
		s.logger.Debug("serving cached export",
			zap.String("file_id", fileID),
			zap.String("format", string(format)),
		)
		return cached, nil
	}

	rendered, err := retry.Do(ctx, s.exec, "export rendering",
		func(ctx context.Context) (capability.RenderResult, error) {
			result, err := s.renderer.Render(ctx, doc, format)
			if errors.Is(err, domain.ErrUnsupportedFormat) {
				return result, retry.Permanent(err)
			}
			return result, err
		},
	)
	if err != nil {
		return nil, err
	}

	record := &domain.DownloadRecord{
		FileID:          fileID,
		Format:          format,
		DocumentationID: doc.DocumentationID,
		FilePath:        rendered.Path,
		DownloadURL:     fmt.Sprintf("%s/api/v1/download/%s/%s", s.cfg.Server.BaseURL, fileID, format),
		ExpiryTime:      s.now().Add(s.retention()),
	}
	if err := s.downloads.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register export: %w", err)
	}

	s.scheduleCleanup(record)

	s.logger.Info("export rendered",
		zap.String("file_id", fileID),
		zap.String("format", string(format)),
		zap.String("path", rendered.Path),
	)
	return record, nil
}

// usable reports whether a cached record can be served: the record exists,
// points at the current documentation, has not expired and its file is
// still on disk.
func (s *DownloadService) usable(cached *domain.DownloadRecord, doc *domain.DocumentationRecord) bool {
	if cached == nil {
		return false
	}
	if cached.DocumentationID != doc.DocumentationID {
		return false
	}
	if !cached.ExpiryTime.IsZero() && s.now().After(cached.ExpiryTime) {
		return false
	}
	if _, err := os.Stat(cached.FilePath); err != nil {
		return false
	}
	return true
}

func (s *DownloadService) retention() time.Duration {
	if s.cfg.Downloads.Retention > 0 {
		return s.cfg.Downloads.Retention
	}
	return 24 * time.Hour
}

// scheduleCleanup removes the artifact and its record once retention lapses.
func (s *DownloadService) scheduleCleanup(record *domain.DownloadRecord) {
	if s.runner == nil {
		return
	}
	fileID, format, path := record.FileID, record.Format, record.FilePath
	s.runner.After("export-cleanup:"+path, s.retention(), func(ctx context.Context) error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove expired export", zap.String("path", path), zap.Error(err))
		}
		if err := s.downloads.Delete(ctx, fileID, format); err != nil {
			s.logger.Warn("failed to delete expired export record",
				zap.String("file_id", fileID),
				zap.Error(err),
			)
		}
		return nil
	})
}
