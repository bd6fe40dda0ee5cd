package model

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"gorm.io/gorm"
)

// RunMigrations ensures the gitlab connection and audit tables exist.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("gorm db is required")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Connection{}, &RefreshRun{}); err != nil {
		return errors.Wrap(err, "auto migrate gitlab tables")
	}

	return nil
}
