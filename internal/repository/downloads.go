package repository

import (
	"context"
	"fmt"

	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/ledger"
)

// Downloads persists DownloadRecord entries keyed by (file_id, format).
type Downloads struct {
	store ledger.Store
}

// NewDownloads creates a download repository over the ledger.
func NewDownloads(store ledger.Store) *Downloads {
	return &Downloads{store: store}
}

func downloadKey(fileID string, format domain.ExportFormat) string {
	return fmt.Sprintf("%s/%s", fileID, format)
}

// Save stores the cached export descriptor, replacing any prior one.
func (r *Downloads) Save(ctx context.Context, record *domain.DownloadRecord) error {
	return r.store.Set(ctx, ledger.NamespaceDownloads, downloadKey(record.FileID, record.Format), record)
}

// Get retrieves the cached descriptor for a (file, format) pair, or nil.
func (r *Downloads) Get(ctx context.Context, fileID string, format domain.ExportFormat) (*domain.DownloadRecord, error) {
	var record domain.DownloadRecord
	ok, err := r.store.Get(ctx, ledger.NamespaceDownloads, downloadKey(fileID, format), &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Delete removes the cached descriptor.
func (r *Downloads) Delete(ctx context.Context, fileID string, format domain.ExportFormat) error {
	return r.store.Delete(ctx, ledger.NamespaceDownloads, downloadKey(fileID, format))
}
