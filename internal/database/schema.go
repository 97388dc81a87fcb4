package database

import (
	"fmt"
	"log/slog"

	"devconnect/internal/config"
	"devconnect/internal/middleware"

	"gorm.io/gorm"
)

// ApplySchema brings the SQL schema in line with PersistentModels. The schema
// only ever gains columns and indexes, so AutoMigrate is safe in every environment.
func ApplySchema(db *gorm.DB, cfg *config.Config) error {
	middleware.Logger.Info("Running GORM AutoMigrate", slog.String("env", cfg.Env))
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
