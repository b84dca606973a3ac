package repository

import (
	"context"

	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/ledger"
)

// Transcripts persists TranscriptRecord entries keyed by file_id (1:1).
type Transcripts struct {
	store ledger.Store
}

// NewTranscripts creates a transcript repository over the ledger.
func NewTranscripts(store ledger.Store) *Transcripts {
	return &Transcripts{store: store}
}

// Save stores the transcript for a file, replacing any prior one.
func (r *Transcripts) Save(ctx context.Context, record *domain.TranscriptRecord) error {
	return r.store.Set(ctx, ledger.NamespaceTranscriptions, record.FileID, record)
}

// Get retrieves the transcript for a file, or nil when absent.
func (r *Transcripts) Get(ctx context.Context, fileID string) (*domain.TranscriptRecord, error) {
	var record domain.TranscriptRecord
	ok, err := r.store.Get(ctx, ledger.NamespaceTranscriptions, fileID, &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Delete removes the transcript for a file.
func (r *Transcripts) Delete(ctx context.Context, fileID string) error {
	return r.store.Delete(ctx, ledger.NamespaceTranscriptions, fileID)
}
