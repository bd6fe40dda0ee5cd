package model

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"gorm.io/gorm"
)

// RunMigrations ensures knowledge-base tables and indexes exist.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("gorm db is required")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Folder{}, &Document{}, &DocumentChunk{}); err != nil {
		return errors.Wrap(err, "auto migrate knowledge tables")
	}

	// Composite unique indexes need partial variants on postgres: NULL parent
	// ids never compare equal, which would allow duplicate root folders.
	if db.Dialector.Name() == "postgres" {
		statements := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_kb_folders_root ON kb_folders (agent_id, name) WHERE parent_id IS NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_kb_folders_nested ON kb_folders (agent_id, parent_id, name) WHERE parent_id IS NOT NULL`,
		}
		for _, stmt := range statements {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				return errors.Wrap(err, "create folder index")
			}
		}
	}

	return nil
}
