package repository

import (
	"context"

	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/ledger"
)

// Files persists FileRecord entries keyed by file_id.
type Files struct {
	store ledger.Store
}

// NewFiles creates a file repository over the ledger.
func NewFiles(store ledger.Store) *Files {
	return &Files{store: store}
}

// Create stores a new file record.
func (r *Files) Create(ctx context.Context, record *domain.FileRecord) error {
	return r.store.Set(ctx, ledger.NamespaceFiles, record.FileID, record)
}

// Get retrieves a file record, or nil when absent.
func (r *Files) Get(ctx context.Context, fileID string) (*domain.FileRecord, error) {
	var record domain.FileRecord
	ok, err := r.store.Get(ctx, ledger.NamespaceFiles, fileID, &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Delete removes a file record.
func (r *Files) Delete(ctx context.Context, fileID string) error {
	return r.store.Delete(ctx, ledger.NamespaceFiles, fileID)
}

// List returns all known file IDs.
func (r *Files) List(ctx context.Context) ([]string, error) {
	return r.store.ListKeys(ctx, ledger.NamespaceFiles)
}
