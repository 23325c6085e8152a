// Package testutil provides a throwaway database and raw row fixtures for
// store-level tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/zulandar/accreditrack/internal/db"
	"github.com/zulandar/accreditrack/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in a per-test temp directory.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gormDB
}

// Profile inserts a profile row.
func Profile(t *testing.T, gormDB *gorm.DB, id, name string) models.Profile {
	t.Helper()
	p := models.Profile{ID: id, Name: name, Role: "contributor", IsUser: true}
	if err := gormDB.Create(&p).Error; err != nil {
		t.Fatalf("create profile %s: %v", id, err)
	}
	return p
}

// Section inserts a section row. parentID may be empty.
func Section(t *testing.T, gormDB *gorm.DB, id, number string, level int, parentID string) models.Section {
	t.Helper()
	s := models.Section{ID: id, Number: number, Title: "Section " + number, Level: level}
	if parentID != "" {
		s.ParentID = &parentID
	}
	if err := gormDB.Create(&s).Error; err != nil {
		t.Fatalf("create section %s: %v", id, err)
	}
	return s
}

// Group inserts a group row. parentID may be empty.
func Group(t *testing.T, gormDB *gorm.DB, id, number string, level int, parentID string, fixed bool) models.Group {
	t.Helper()
	g := models.Group{ID: id, Number: number, Title: "Phase " + number, Level: level, IsFixed: fixed}
	if n := len(number); n > 0 {
		g.SortOrder = int(number[n-1] - '0')
	}
	if parentID != "" {
		g.ParentID = &parentID
	}
	if err := gormDB.Create(&g).Error; err != nil {
		t.Fatalf("create group %s: %v", id, err)
	}
	return g
}

// TaskOpts customizes a fixture task.
type TaskOpts struct {
	OwnerID string
	Status  int
	Blocked bool
	Due     *time.Time
}

// Task inserts a task row owned by sectionID.
func Task(t *testing.T, gormDB *gorm.DB, id, title, sectionID string, opts TaskOpts) models.Task {
	t.Helper()
	task := models.Task{
		ID:        id,
		Title:     title,
		SectionID: sectionID,
		OwnerID:   opts.OwnerID,
		Status:    opts.Status,
		Blocked:   opts.Blocked,
	}
	if opts.Blocked {
		task.BlockedReason = "waiting on evidence"
	}
	if opts.Due != nil {
		d := datatypes.Date(*opts.Due)
		task.DueDate = &d
	}
	if err := gormDB.Create(&task).Error; err != nil {
		t.Fatalf("create task %s: %v", id, err)
	}
	return task
}

// Link inserts a group-task link row.
func Link(t *testing.T, gormDB *gorm.DB, groupID, taskID string) {
	t.Helper()
	if err := gormDB.Create(&models.GroupTask{GroupID: groupID, TaskID: taskID}).Error; err != nil {
		t.Fatalf("create link %s/%s: %v", groupID, taskID, err)
	}
}
