// Package capability defines the external-collaborator contracts consumed by
// the pipeline core: upload validation, speech-to-text, LLM generation and
// document export. Implementations live in subpackages; tests use fakes.
package capability

import (
	"context"

	"github.com/briefkit/briefkit/internal/domain"
)

// ValidationResult is the outcome of an upload validation.
type ValidationResult struct {
	Valid   bool
	Message string
	Size    int64
}

// Validator checks an uploaded file before any processing happens.
type Validator interface {
	Validate(ctx context.Context, fileID, path string) (ValidationResult, error)
}

// Transcript is the output of a transcription call. Implementations must
// fail explicitly when the input is unintelligible, never return an empty
// transcript as success.
type Transcript struct {
	Text     string
	Metadata domain.TranscriptMetadata
}

// Transcriber turns a media file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (Transcript, error)
}

// Generator produces document text from a prompt. Empty-string success is
// disallowed by policy; callers treat it as a failure.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// RenderResult is the location of a rendered export artifact.
type RenderResult struct {
	Path string
}

// Renderer exports a generated document into a concrete format.
type Renderer interface {
	Render(ctx context.Context, record *domain.DocumentationRecord, format domain.ExportFormat) (RenderResult, error)
}
