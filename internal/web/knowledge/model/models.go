// Package model holds the knowledge-base document store's persistent models.
package model

import (
	"time"

	gutils "github.com/Laisky/go-utils/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder is one node of an agent-scoped folder hierarchy. ParentID nil means
// root. Uniqueness is per (agent, parent, name): folders at different depths
// may share a name.
type Folder struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AgentID  string     `gorm:"type:varchar(64);not null;index:idx_kb_folders_scope,priority:1"`
	ParentID *uuid.UUID `gorm:"type:uuid;index:idx_kb_folders_scope,priority:2"`
	Name     string     `gorm:"type:varchar(256);not null;index:idx_kb_folders_scope,priority:3"`

	CreatedAt time.Time
}

// TableName overrides the gorm table name.
func (Folder) TableName() string { return "kb_folders" }

// BeforeCreate hook ensures the primary key is populated for new records.
func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = gutils.UUID7Bytes()
	}
	return nil
}

// Document is one stored knowledge-base document.
type Document struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AgentID  string     `gorm:"type:varchar(64);not null;index"`
	FolderID *uuid.UUID `gorm:"type:uuid;index"`
	Filename string     `gorm:"type:varchar(512);not null"`
	MimeType string     `gorm:"type:varchar(128);not null"`
	Size     int64      `gorm:"not null;default:0"`
	Category string     `gorm:"type:varchar(64);not null;index"`
	// Metadata is a JSON object, e.g. original repository path and refresh run id.
	Metadata string `gorm:"type:text"`
	Content  string `gorm:"type:text;not null"`

	CreatedAt time.Time
}

// TableName overrides the gorm table name.
func (Document) TableName() string { return "kb_documents" }

// BeforeCreate hook ensures the primary key is populated for new records.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = gutils.UUID7Bytes()
	}
	return nil
}

// DocumentChunk is one retrieval unit of a document's content.
type DocumentChunk struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index"`
	AgentID    string    `gorm:"type:varchar(64);not null;index"`
	ChunkIndex int       `gorm:"not null"`
	Content    string    `gorm:"type:text;not null"`

	CreatedAt time.Time
}

// TableName overrides the gorm table name.
func (DocumentChunk) TableName() string { return "kb_document_chunks" }

// BeforeCreate hook ensures the primary key is populated for new records.
func (c *DocumentChunk) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = gutils.UUID7Bytes()
	}
	return nil
}
