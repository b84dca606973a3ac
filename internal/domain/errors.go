package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnsupportedFormat indicates an export format the renderer cannot produce
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// StageFailure wraps a stage-local error together with the stage it occurred
// in, so the orchestrator can record a stage-accurate failure marker.
type StageFailure struct {
	Stage Stage
	Err   error
}

func (f *StageFailure) Error() string {
	return fmt.Sprintf("%s stage failed: %v", f.Stage, f.Err)
}

func (f *StageFailure) Unwrap() error { return f.Err }

// FailAt tags err with the stage it occurred in. A nil err returns nil.
func FailAt(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageFailure{Stage: stage, Err: err}
}
