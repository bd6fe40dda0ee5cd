package dao

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Laisky/kb-refresh/internal/web/gitlab/model"
)

// Runs persists the append-only refresh audit log.
type Runs struct {
	db *gorm.DB
}

// NewRuns creates the refresh-run dao.
func NewRuns(db *gorm.DB) *Runs {
	return &Runs{db: db}
}

// Create inserts a new run in running state.
func (d *Runs) Create(ctx context.Context, run *model.RefreshRun) error {
	run.Status = model.RunStatusRunning
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	if err := d.db.WithContext(ctx).Create(run).Error; err != nil {
		return errors.Wrap(err, "create refresh run")
	}

	return nil
}

// TerminalUpdate carries the final counters of a completed run.
type TerminalUpdate struct {
	FilesProcessed int
	FilesConverted int
	FilesSkipped   int
	ArchivePath    string
	ArchiveSize    int64
	CommitSHA      string
}

// MarkCompleted transitions a running row to completed exactly once.
func (d *Runs) MarkCompleted(ctx context.Context, id uuid.UUID, update TerminalUpdate) error {
	now := time.Now().UTC()
	result := d.db.WithContext(ctx).Model(&model.RefreshRun{}).
		Where("id = ? AND status = ?", id, model.RunStatusRunning).
		Updates(map[string]any{
			"status":          model.RunStatusCompleted,
			"completed_at":    &now,
			"files_processed": update.FilesProcessed,
			"files_converted": update.FilesConverted,
			"files_skipped":   update.FilesSkipped,
			"archive_path":    update.ArchivePath,
			"archive_size":    update.ArchiveSize,
			"commit_sha":      update.CommitSHA,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "mark run completed")
	}
	if result.RowsAffected == 0 {
		return errors.Errorf("run %s is not running, refusing to re-open a terminal row", id)
	}

	return nil
}

// MarkFailed transitions a running row to failed exactly once, recording the
// captured error message.
func (d *Runs) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now().UTC()
	result := d.db.WithContext(ctx).Model(&model.RefreshRun{}).
		Where("id = ? AND status = ?", id, model.RunStatusRunning).
		Updates(map[string]any{
			"status":        model.RunStatusFailed,
			"completed_at":  &now,
			"error_message": message,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "mark run failed")
	}
	if result.RowsAffected == 0 {
		return errors.Errorf("run %s is not running, refusing to re-open a terminal row", id)
	}

	return nil
}

// Get loads one run by id.
func (d *Runs) Get(ctx context.Context, id uuid.UUID) (*model.RefreshRun, error) {
	var run model.RefreshRun
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, errors.Wrap(err, "load refresh run")
	}

	return &run, nil
}

// ListByAgent returns the agent's most recent runs, newest first.
func (d *Runs) ListByAgent(ctx context.Context, agentID string, limit int) ([]model.RefreshRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []model.RefreshRun
	if err := d.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, errors.Wrap(err, "list refresh runs")
	}

	return runs, nil
}
