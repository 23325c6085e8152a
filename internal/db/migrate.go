package db

import (
	"encoding/json"
	"fmt"

	"github.com/zulandar/accreditrack/internal/config"
	"github.com/zulandar/accreditrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns every GORM model for migration, parents before
// dependents.
func AllModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Section{},
		&models.Task{},
		&models.TaskCollaborator{},
		&models.Group{},
		&models.GroupTask{},
		&models.ProgressSnapshot{},
		&models.InstitutionConfig{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table, dependents first.
func DropAll(db *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop table %T: %w", all[i], err)
		}
	}
	return nil
}

// SeedConfig writes or updates the InstitutionConfig row.
func SeedConfig(db *gorm.DB, cfg *config.Config) error {
	settings, err := marshalJSON(map[string]interface{}{
		"snapshot_schedule": cfg.Snapshot.Schedule,
		"dashboard_port":    cfg.Dashboard.Port,
	})
	if err != nil {
		return fmt.Errorf("db: marshal settings for %q: %w", cfg.Institution, err)
	}

	ic := models.InstitutionConfig{
		Institution: cfg.Institution,
		ReportTitle: cfg.ReportTitle,
		Settings:    settings,
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "institution"}},
		DoUpdates: clause.AssignmentColumns([]string{"report_title", "settings"}),
	}).Create(&ic)
	if result.Error != nil {
		return fmt.Errorf("db: seed config for %q: %w", cfg.Institution, result.Error)
	}
	return nil
}

// marshalJSON marshals a value to a JSON string, returning empty string for nil.
func marshalJSON(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
