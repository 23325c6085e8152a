package domain

import (
	"testing"
	"time"

	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/status"
	"gorm.io/datatypes"
)

func TestSectionFromRow(t *testing.T) {
	parent := "sec-aaaaa"
	s := SectionFromRow(models.Section{
		ID:       "sec-bbbbb",
		Number:   "1.12",
		Title:    "Governance",
		Level:    2,
		ParentID: &parent,
	})
	if s.ParentID != parent {
		t.Errorf("ParentID = %q, want %q", s.ParentID, parent)
	}
	if s.SortOrder != 12 {
		t.Errorf("SortOrder = %d, want 12 (from number)", s.SortOrder)
	}

	root := SectionFromRow(models.Section{ID: "sec-ccccc", Number: "3", Level: 1, SortOrder: 7})
	if root.ParentID != "" {
		t.Errorf("root ParentID = %q, want empty", root.ParentID)
	}
	if root.SortOrder != 7 {
		t.Errorf("explicit SortOrder = %d, want 7", root.SortOrder)
	}
}

func TestProfileFromRow(t *testing.T) {
	p := ProfileFromRow(models.Profile{
		ID: "p1", Name: "Ada", Email: "ada@example.edu", Role: "coordinator",
		IsUser: true, CanEdit: true, CanAdmin: true,
	})
	want := Profile{
		ID: "p1", Name: "Ada", Email: "ada@example.edu", Role: "coordinator",
		IsUser: true, CanEdit: true, CanAdmin: true,
	}
	if p != want {
		t.Errorf("ProfileFromRow = %+v, want %+v", p, want)
	}

	viewer := ProfileFromRow(models.Profile{ID: "p2", Name: "Grace"})
	if viewer.CanEdit || viewer.CanAdmin {
		t.Errorf("viewer permissions = edit %v admin %v, want none", viewer.CanEdit, viewer.CanAdmin)
	}
}

func TestGroupFromRow(t *testing.T) {
	owner := "0b6f6a7c-2a4e-4a43-9c1e-3f1c2b3d4e5f"
	g := GroupFromRow(models.Group{ID: "grp-1", Number: "1", Level: 1, OwnerID: &owner, IsFixed: true, SortOrder: 1})
	if g.OwnerID != owner || !g.IsFixed || g.ParentID != "" {
		t.Errorf("GroupFromRow = %+v", g)
	}
}

func TestTaskFromRow_Joins(t *testing.T) {
	due := datatypes.Date(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	row := models.Task{
		ID:        "tsk-1",
		Title:     "Collect evidence",
		SectionID: "sec-1",
		OwnerID:   "p-1",
		Status:    40,
		DueDate:   &due,
		Section:   &models.Section{ID: "sec-1", Number: "2.1", Title: "Mission", Level: 2},
		Owner:     &models.Profile{ID: "p-1", Name: "Dana"},
		Collaborators: []models.TaskCollaborator{
			{TaskID: "tsk-1", ProfileID: "p-2", Profile: &models.Profile{ID: "p-2", Name: "Lee"}},
			{TaskID: "tsk-1", ProfileID: "p-3"},
		},
	}
	task := TaskFromRow(row)

	if task.Section.Number != "2.1" || task.Section.Title != "Mission" {
		t.Errorf("Section = %+v", task.Section)
	}
	if task.Owner == nil || task.Owner.Name != "Dana" {
		t.Errorf("Owner = %+v", task.Owner)
	}
	if len(task.Collaborators) != 2 || task.Collaborators[0].Name != "Lee" || task.Collaborators[1].ID != "p-3" {
		t.Errorf("Collaborators = %+v", task.Collaborators)
	}
	if task.DueDate == nil || !task.DueDate.Equal(time.Time(due)) {
		t.Errorf("DueDate = %v", task.DueDate)
	}
	if task.StartDate != nil {
		t.Errorf("StartDate = %v, want nil", task.StartDate)
	}
}

func TestTaskFromRow_NoJoins(t *testing.T) {
	task := TaskFromRow(models.Task{ID: "tsk-2", SectionID: "sec-9"})
	if task.Section.ID != "sec-9" || task.Section.Number != "" {
		t.Errorf("Section = %+v, want id only", task.Section)
	}
	if task.Owner != nil || task.Collaborators != nil {
		t.Errorf("unexpected joins: %+v", task)
	}
}

func TestTask_Classification(t *testing.T) {
	today := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	task := Task{Status: 80, DueDate: &due}
	if got := task.ProgressTier(); got != status.Completing {
		t.Errorf("ProgressTier = %v, want completing", got)
	}
	if got := task.Deadline(today); got != status.Overdue {
		t.Errorf("Deadline = %v, want overdue", got)
	}
}

func TestLinks(t *testing.T) {
	got := Links([]models.GroupTask{{GroupID: "g", TaskID: "t"}})
	if len(got) != 1 || got[0] != (Link{GroupID: "g", TaskID: "t"}) {
		t.Errorf("Links = %+v", got)
	}
}
