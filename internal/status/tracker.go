// Package status records and reads per-file processing status. The tracker
// is the single source of observable pipeline progress: every stage
// transition lands here before the stage runs.
package status

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/ledger"
)

// Tracker persists ProcessingStatus records in the status namespace.
type Tracker struct {
	store  ledger.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewTracker creates a status tracker over the ledger.
func NewTracker(store ledger.Store, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Update writes the status record for a file. The first write sets
// StartTime; later writes preserve it. Progress is clamped to [0,100].
// The error message is stored only for failed status and cleared on any
// other write, so a fresh run never carries a stale error forward.
func (t *Tracker) Update(ctx context.Context, fileID string, status domain.Status, progress int, stage domain.Stage, errMsg string) error {
	now := t.now().UTC()

	err := t.store.Update(ctx, ledger.NamespaceStatus, fileID, func(raw []byte) ([]byte, error) {
		record := domain.ProcessingStatus{
			FileID:    fileID,
			StartTime: now,
		}
		if raw != nil {
			var prev domain.ProcessingStatus
			if err := json.Unmarshal(raw, &prev); err == nil && !prev.StartTime.IsZero() {
				record.StartTime = prev.StartTime
			}
		}

		record.Status = status
		record.Progress = clampProgress(progress)
		record.CurrentStage = stage
		record.UpdateTime = now
		if status == domain.StatusFailed {
			record.Error = errMsg
		}

		return json.Marshal(record)
	})
	if err != nil {
		return err
	}

	t.logger.Debug("status updated",
		zap.String("file_id", fileID),
		zap.String("status", string(status)),
		zap.Int("progress", clampProgress(progress)),
		zap.String("stage", string(stage)),
	)
	return nil
}

// Get returns the status record for a file, or nil when none exists.
func (t *Tracker) Get(ctx context.Context, fileID string) (*domain.ProcessingStatus, error) {
	var record domain.ProcessingStatus
	ok, err := t.store.Get(ctx, ledger.NamespaceStatus, fileID, &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &record, nil
}
