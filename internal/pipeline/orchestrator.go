// Package pipeline sequences a file through validation, transcription,
// storage and generation. Every transition is recorded in the status tracker
// before the stage runs, a stage failure short-circuits the run at its entry
// progress marker, and nothing escapes the orchestrator unhandled.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/capability"
	"github.com/briefkit/briefkit/internal/docval"
	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/prompt"
	"github.com/briefkit/briefkit/internal/repository"
	"github.com/briefkit/briefkit/internal/retry"
)

// StatusRecorder is the slice of the status tracker the orchestrator needs.
type StatusRecorder interface {
	Update(ctx context.Context, fileID string, status domain.Status, progress int, stage domain.Stage, errMsg string) error
}

// TranscriptIndexer is an optional secondary sink for stored transcripts
// (vector indexing for semantic search). Indexing failures never fail the
// storage stage; the ledger write is the stage's durability contract.
type TranscriptIndexer interface {
	Index(ctx context.Context, record *domain.TranscriptRecord) error
}

// Config holds the orchestrator's tunables.
type Config struct {
	// StageTimeout bounds each external capability call; a timeout is a
	// retryable failure where retries apply.
	StageTimeout time.Duration
	// MaxAttempts bounds retried operations (generation, transcript fetch).
	MaxAttempts uint
	// GenerationDelay and FetchDelay are the fixed waits between attempts.
	GenerationDelay time.Duration
	FetchDelay      time.Duration
	// RequireQuality makes a failed content validation fail the generation
	// stage instead of surfacing as a non-fatal warning.
	RequireQuality bool
}

// Request identifies one pipeline run.
type Request struct {
	FileID   string
	Path     string
	Filename string
	DocType  domain.DocumentType
	Level    domain.DocumentationLevel
}

// Result is the payload returned to synchronous callers on success.
type Result struct {
	FileID          string   `json:"file_id"`
	DocumentationID string   `json:"documentation_id"`
	QualityScore    float64  `json:"quality_score"`
	QualityValid    bool     `json:"quality_valid"`
	Issues          []string `json:"issues,omitempty"`
}

// Orchestrator drives files through the stage sequence.
type Orchestrator struct {
	cfg    Config
	logger *zap.Logger

	tracker     StatusRecorder
	files       *repository.Files
	transcripts *repository.Transcripts
	documents   *repository.Documents

	validator   capability.Validator
	transcriber capability.Transcriber
	generator   capability.Generator
	indexer     TranscriptIndexer

	runner *Runner

	genExec   *retry.Executor
	fetchExec *retry.Executor
}

// NewOrchestrator wires the pipeline core. indexer may be nil.
func NewOrchestrator(
	cfg Config,
	logger *zap.Logger,
	tracker StatusRecorder,
	files *repository.Files,
	transcripts *repository.Transcripts,
	documents *repository.Documents,
	validator capability.Validator,
	transcriber capability.Transcriber,
	generator capability.Generator,
	indexer TranscriptIndexer,
	runner *Runner,
) *Orchestrator {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.GenerationDelay == 0 {
		cfg.GenerationDelay = 2 * time.Second
	}
	if cfg.FetchDelay == 0 {
		cfg.FetchDelay = time.Second
	}
	return &Orchestrator{
		cfg:         cfg,
		logger:      logger,
		tracker:     tracker,
		files:       files,
		transcripts: transcripts,
		documents:   documents,
		validator:   validator,
		transcriber: transcriber,
		generator:   generator,
		indexer:     indexer,
		runner:      runner,
		genExec:     retry.NewExecutor(cfg.MaxAttempts, cfg.GenerationDelay, logger),
		fetchExec:   retry.NewExecutor(cfg.MaxAttempts, cfg.FetchDelay, logger),
	}
}

// Run executes the full stage sequence synchronously and returns the final
// payload. A stage failure is recorded in the tracker and returned as an
// error; it never propagates as a panic or an unrecorded fault.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	o.logger.Info("pipeline run started",
		zap.String("file_id", req.FileID),
		zap.String("doc_type", string(req.DocType)),
		zap.String("level", string(req.Level)),
	)

	// Validation
	if err := o.enterStage(ctx, req.FileID, domain.StageValidation); err != nil {
		return nil, o.fail(ctx, req.FileID, domain.StageValidation, err)
	}
	validation, err := o.validate(ctx, req)
	if err != nil {
		return nil, o.fail(ctx, req.FileID, domain.StageValidation, err)
	}
	if !validation.Valid {
		return nil, o.fail(ctx, req.FileID, domain.StageValidation, fmt.Errorf("validation rejected file: %s", validation.Message))
	}

	// Transcription
	if err := o.enterStage(ctx, req.FileID, domain.StageTranscription); err != nil {
		return nil, o.fail(ctx, req.FileID, domain.StageTranscription, err)
	}
	transcript, err := o.transcribe(ctx, req)
	if err != nil {
		return nil, o.fail(ctx, req.FileID, domain.StageTranscription, err)
	}

	// Storage
	if err := o.enterStage(ctx, req.FileID, domain.StageStorage); err != nil {
		return nil, o.fail(ctx, req.FileID, domain.StageStorage, err)
	}
	record := &domain.TranscriptRecord{
		FileID:        req.FileID,
		Transcription: transcript.Text,
		Metadata:      transcript.Metadata,
	}
	if err := o.transcripts.Save(ctx, record); err != nil {
		return nil, o.fail(ctx, req.FileID, domain.StageStorage, fmt.Errorf("persist transcript: %w", err))
	}
	o.index(ctx, record)

	// Generation
	if err := o.enterStage(ctx, req.FileID, domain.StageGeneration); err != nil {
		return nil, o.fail(ctx, req.FileID, domain.StageGeneration, err)
	}
	result, err := o.generate(ctx, req, transcript.Text)
	if err != nil {
		return nil, o.fail(ctx, req.FileID, domain.StageGeneration, err)
	}

	if err := o.tracker.Update(ctx, req.FileID, domain.StatusCompleted, domain.ProgressCompleted, domain.StageCompleted, ""); err != nil {
		o.logger.Error("failed to record completion", zap.String("file_id", req.FileID), zap.Error(err))
	}

	o.logger.Info("pipeline run completed",
		zap.String("file_id", req.FileID),
		zap.String("documentation_id", result.DocumentationID),
		zap.Float64("quality_score", result.QualityScore),
	)
	return result, nil
}

// Start enqueues the run on the background runner and returns its handle.
// The tracker is the only way a detached caller observes the outcome.
func (o *Orchestrator) Start(req Request) *Task {
	return o.runner.Go("pipeline:"+req.FileID, func(ctx context.Context) error {
		_, err := o.Run(ctx, req)
		return err
	})
}

// Generate reruns only the generation stage for a file whose transcript is
// already stored. The transcript fetch is retried; a fresh documentation
// record replaces the prior one.
func (o *Orchestrator) Generate(ctx context.Context, fileID string, docType domain.DocumentType, level domain.DocumentationLevel) (*Result, error) {
	transcript, err := retry.Do(ctx, o.fetchExec, "transcript fetch",
		func(ctx context.Context) (*domain.TranscriptRecord, error) {
			return o.transcripts.Get(ctx, fileID)
		},
		retry.WithEmptyCheck[*domain.TranscriptRecord](func(r *domain.TranscriptRecord) bool {
			return r == nil || strings.TrimSpace(r.Transcription) == ""
		}),
	)
	if err != nil {
		return nil, o.fail(ctx, fileID, domain.StageGeneration, fmt.Errorf("transcript unavailable: %w", err))
	}

	if err := o.enterStage(ctx, fileID, domain.StageGeneration); err != nil {
		return nil, o.fail(ctx, fileID, domain.StageGeneration, err)
	}

	req := Request{FileID: fileID, DocType: docType, Level: level}
	if file, err := o.files.Get(ctx, fileID); err == nil && file != nil {
		req.Filename = file.OriginalFilename
	}

	result, err := o.generate(ctx, req, transcript.Transcription)
	if err != nil {
		return nil, o.fail(ctx, fileID, domain.StageGeneration, err)
	}

	if err := o.tracker.Update(ctx, fileID, domain.StatusCompleted, domain.ProgressCompleted, domain.StageCompleted, ""); err != nil {
		o.logger.Error("failed to record completion", zap.String("file_id", fileID), zap.Error(err))
	}
	return result, nil
}

// enterStage records the upcoming stage before it runs, so observers see
// "processing: transcription" while transcription is in flight.
func (o *Orchestrator) enterStage(ctx context.Context, fileID string, stage domain.Stage) error {
	return o.tracker.Update(ctx, fileID, domain.StatusProcessing, stage.EntryProgress(), stage, "")
}

// fail records the terminal failure at the stage's entry progress and
// returns the structured error for synchronous callers.
func (o *Orchestrator) fail(ctx context.Context, fileID string, stage domain.Stage, err error) error {
	failure := domain.FailAt(stage, err)
	o.logger.Error("pipeline stage failed",
		zap.String("file_id", fileID),
		zap.String("stage", string(stage)),
		zap.Error(err),
	)
	if updateErr := o.tracker.Update(ctx, fileID, domain.StatusFailed, stage.EntryProgress(), stage, err.Error()); updateErr != nil {
		o.logger.Error("failed to record stage failure",
			zap.String("file_id", fileID),
			zap.Error(updateErr),
		)
	}
	return failure
}

func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.cfg.StageTimeout)
}

func (o *Orchestrator) validate(ctx context.Context, req Request) (capability.ValidationResult, error) {
	stageCtx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.validator.Validate(stageCtx, req.FileID, req.Path)
}

func (o *Orchestrator) transcribe(ctx context.Context, req Request) (capability.Transcript, error) {
	stageCtx, cancel := o.stageContext(ctx)
	defer cancel()

	transcript, err := o.transcriber.Transcribe(stageCtx, req.Path)
	if err != nil {
		return capability.Transcript{}, err
	}
	// The transcriber contract forbids empty success, but enforce it here
	// so a misbehaving implementation cannot push an empty transcript
	// downstream.
	if strings.TrimSpace(transcript.Text) == "" {
		return capability.Transcript{}, retry.ErrEmptyResult
	}
	return transcript, nil
}

// index is fire-and-forget enrichment; the pipeline's durability contract is
// the ledger write that precedes it.
func (o *Orchestrator) index(ctx context.Context, record *domain.TranscriptRecord) {
	if o.indexer == nil {
		return
	}
	if err := o.indexer.Index(ctx, record); err != nil {
		o.logger.Warn("transcript indexing failed",
			zap.String("file_id", record.FileID),
			zap.Error(err),
		)
	}
}

// generate produces and persists the documentation record. Generation is
// atomic per attempt: nothing is stored unless the whole attempt, its
// quality check and the ledger write succeed.
func (o *Orchestrator) generate(ctx context.Context, req Request, transcriptText string) (*Result, error) {
	started := time.Now()

	userPrompt := prompt.BuildPrompt(req.DocType, req.Level, transcriptText)
	systemPrompt := prompt.SystemPrompt(req.DocType)

	content, err := retry.Do(ctx, o.genExec, "document generation",
		func(ctx context.Context) (string, error) {
			attemptCtx, cancel := o.stageContext(ctx)
			defer cancel()
			return o.generator.Generate(attemptCtx, userPrompt, systemPrompt)
		},
		retry.WithEmptyCheck[string](retry.IsEmptyString),
		retry.WithAttemptHook[string](func(attempt int) {
			// Nudge progress per attempt (80, 85, 90) so observers can tell
			// a retrying run from a stalled one.
			progress := domain.ProgressGeneration + attempt*5
			if err := o.tracker.Update(ctx, req.FileID, domain.StatusProcessing, progress, domain.StageGeneration, ""); err != nil {
				o.logger.Warn("failed to record retry progress", zap.String("file_id", req.FileID), zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	quality := docval.Validate(content, req.Level)
	if !quality.IsValid {
		o.logger.Warn("generated content failed quality validation",
			zap.String("file_id", req.FileID),
			zap.Float64("quality_score", quality.QualityScore),
			zap.Strings("issues", quality.Issues),
		)
		if o.cfg.RequireQuality {
			return nil, fmt.Errorf("content quality %.1f below threshold %.0f: %s",
				quality.QualityScore, docval.ValidThreshold, strings.Join(quality.Issues, "; "))
		}
	}

	record := &domain.DocumentationRecord{
		DocumentationID: uuid.New().String(),
		FileID:          req.FileID,
		Title:           prompt.Title(req.DocType, req.Filename),
		Content:         content,
		DocumentType:    req.DocType,
		Level:           req.Level,
		Metadata: domain.DocumentationMetadata{
			GeneratedAt: time.Now().UTC(),
			QualityMetrics: domain.QualityMetrics{
				WordCount:             quality.WordCount,
				SectionCount:          countSections(content),
				ProcessingTimeSeconds: time.Since(started).Seconds(),
				QualityScore:          quality.QualityScore,
				CompletenessScore:     quality.SectionScore,
			},
			ValidationIssues: quality.Issues,
		},
	}

	if err := o.documents.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist documentation: %w", err)
	}

	return &Result{
		FileID:          req.FileID,
		DocumentationID: record.DocumentationID,
		QualityScore:    quality.QualityScore,
		QualityValid:    quality.IsValid,
		Issues:          quality.Issues,
	}, nil
}

func countSections(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			count++
		}
	}
	return count
}
