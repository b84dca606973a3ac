package repository

import (
	"context"

	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/ledger"
)

// Documents persists DocumentationRecord entries. Records are keyed by
// documentation_id, with a second index mapping file_id to the current
// documentation_id so lookup is O(1) both ways. Saving a new record for a
// file replaces the prior one; at most one current record exists per file.
type Documents struct {
	store ledger.Store
}

// NewDocuments creates a documentation repository over the ledger.
func NewDocuments(store ledger.Store) *Documents {
	return &Documents{store: store}
}

// Save stores the record and repoints the file index at it. Any previous
// record for the same file is removed.
func (r *Documents) Save(ctx context.Context, record *domain.DocumentationRecord) error {
	prev, err := r.GetByFileID(ctx, record.FileID)
	if err != nil {
		return err
	}

	if err := r.store.Set(ctx, ledger.NamespaceDocumentation, record.DocumentationID, record); err != nil {
		return err
	}
	if err := r.store.Set(ctx, ledger.NamespaceDocumentationIndex, record.FileID, record.DocumentationID); err != nil {
		return err
	}

	if prev != nil && prev.DocumentationID != record.DocumentationID {
		if err := r.store.Delete(ctx, ledger.NamespaceDocumentation, prev.DocumentationID); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a record by documentation_id, or nil when absent.
func (r *Documents) Get(ctx context.Context, documentationID string) (*domain.DocumentationRecord, error) {
	var record domain.DocumentationRecord
	ok, err := r.store.Get(ctx, ledger.NamespaceDocumentation, documentationID, &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// GetByFileID retrieves the current record for a file, or nil when absent.
func (r *Documents) GetByFileID(ctx context.Context, fileID string) (*domain.DocumentationRecord, error) {
	var documentationID string
	ok, err := r.store.Get(ctx, ledger.NamespaceDocumentationIndex, fileID, &documentationID)
	if err != nil || !ok {
		return nil, err
	}
	return r.Get(ctx, documentationID)
}

// Delete removes the record and its file index entry.
func (r *Documents) Delete(ctx context.Context, documentationID string) error {
	record, err := r.Get(ctx, documentationID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	if err := r.store.Delete(ctx, ledger.NamespaceDocumentation, documentationID); err != nil {
		return err
	}
	return r.store.Delete(ctx, ledger.NamespaceDocumentationIndex, record.FileID)
}
