package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/pipeline"
	"github.com/briefkit/briefkit/internal/repository"
	"github.com/briefkit/briefkit/internal/status"
)

// DocumentService exposes read access to pipeline artifacts and the
// regeneration entry point.
type DocumentService struct {
	logger       *zap.Logger
	files        *repository.Files
	transcripts  *repository.Transcripts
	documents    *repository.Documents
	tracker      *status.Tracker
	orchestrator *pipeline.Orchestrator
}

// NewDocumentService creates a new document service
func NewDocumentService(
	logger *zap.Logger,
	files *repository.Files,
	transcripts *repository.Transcripts,
	documents *repository.Documents,
	tracker *status.Tracker,
	orchestrator *pipeline.Orchestrator,
) *DocumentService {
	return &DocumentService{
		logger:       logger,
		files:        files,
		transcripts:  transcripts,
		documents:    documents,
		tracker:      tracker,
		orchestrator: orchestrator,
	}
}

// GetStatus returns the processing status of a file.
func (s *DocumentService) GetStatus(ctx context.Context, fileID string) (*domain.ProcessingStatus, error) {
	st, err := s.tracker.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, fileID)
	}
	return st, nil
}

// GetTranscript returns the stored transcript for a file.
func (s *DocumentService) GetTranscript(ctx context.Context, fileID string) (*domain.TranscriptRecord, error) {
	record, err := s.transcripts.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: transcript for file %s", domain.ErrNotFound, fileID)
	}
	return record, nil
}

// GetDocumentation returns the current documentation for a file.
func (s *DocumentService) GetDocumentation(ctx context.Context, fileID string) (*domain.DocumentationRecord, error) {
	record, err := s.documents.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: documentation for file %s", domain.ErrNotFound, fileID)
	}
	return record, nil
}

// GetDocumentationByID returns a documentation record by its own ID.
func (s *DocumentService) GetDocumentationByID(ctx context.Context, documentationID string) (*domain.DocumentationRecord, error) {
	record, err := s.documents.Get(ctx, documentationID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: documentation %s", domain.ErrNotFound, documentationID)
	}
	return record, nil
}

// Regenerate reruns the generation stage against the stored transcript.
// The new record replaces the file's current documentation.
func (s *DocumentService) Regenerate(ctx context.Context, fileID string, docType domain.DocumentType, level domain.DocumentationLevel) (*pipeline.Result, error) {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, fileID)
	}

	s.logger.Info("regenerating documentation",
		zap.String("file_id", fileID),
		zap.String("doc_type", string(docType)),
		zap.String("level", string(level)),
	)
	return s.orchestrator.Generate(ctx, fileID, docType, level)
}
