package domain

import "time"

// Status is the lifecycle state of a file moving through the pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Stage identifies one discrete step of the pipeline.
type Stage string

const (
	StageUpload        Stage = "upload"
	StageValidation    Stage = "validation"
	StageTranscription Stage = "transcription"
	StageStorage       Stage = "storage"
	StageGeneration    Stage = "generation"
	StageExport        Stage = "export"
	StageCompleted     Stage = "completed"
)

// Entry-progress markers for each stage. A run that fails during stage X
// records X's entry value as its final progress.
const (
	ProgressUploaded      = 10
	ProgressValidation    = 20
	ProgressTranscription = 25
	ProgressStorage       = 60
	ProgressGeneration    = 75
	ProgressCompleted     = 100
)

// EntryProgress returns the progress marker recorded when a stage begins.
func (s Stage) EntryProgress() int {
	switch s {
	case StageUpload:
		return ProgressUploaded
	case StageValidation:
		return ProgressValidation
	case StageTranscription:
		return ProgressTranscription
	case StageStorage:
		return ProgressStorage
	case StageGeneration:
		return ProgressGeneration
	case StageCompleted:
		return ProgressCompleted
	default:
		return 0
	}
}

// ProcessingStatus is the mutable progress record for a file. Exactly one
// exists per file_id; every write replaces the mutable fields and preserves
// StartTime.
type ProcessingStatus struct {
	FileID       string    `json:"file_id"`
	Status       Status    `json:"status"`
	Progress     int       `json:"progress"`
	CurrentStage Stage     `json:"current_stage"`
	Error        string    `json:"error,omitempty"`
	StartTime    time.Time `json:"start_time"`
	UpdateTime   time.Time `json:"update_time"`
}
