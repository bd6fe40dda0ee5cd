package model

import (
	"time"

	gutils "github.com/Laisky/go-utils/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// RunStatusRunning marks a refresh attempt in flight.
	RunStatusRunning = "running"
	// RunStatusCompleted marks a fully successful refresh.
	RunStatusCompleted = "completed"
	// RunStatusFailed marks a refresh aborted by an unrecoverable error.
	RunStatusFailed = "failed"
)

// RefreshRun is one append-only audit row per refresh attempt. The row is
// created in running state before any network call, so even a crashed attempt
// stays observable. A terminal row is never re-opened.
type RefreshRun struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentID        string    `gorm:"type:varchar(64);not null;index"`
	Status         string    `gorm:"type:varchar(16);not null;index"`
	StartedAt      time.Time `gorm:"not null"`
	CompletedAt    *time.Time
	FilesProcessed int    `gorm:"not null;default:0"`
	FilesConverted int    `gorm:"not null;default:0"`
	FilesSkipped   int    `gorm:"not null;default:0"`
	ArchivePath    string `gorm:"type:varchar(512)"`
	ArchiveSize    int64  `gorm:"not null;default:0"`
	CommitSHA      string `gorm:"type:varchar(64)"`
	ErrorMessage   string `gorm:"type:text"`
}

// TableName overrides the gorm table name.
func (RefreshRun) TableName() string { return "gitlab_refresh_runs" }

// BeforeCreate hook ensures the primary key is populated for new records.
func (r *RefreshRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = gutils.UUID7Bytes()
	}
	return nil
}
