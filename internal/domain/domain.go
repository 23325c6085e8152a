// Package domain holds the typed entities the progress engine works on and
// the normalization step that turns stored rows (with their preloaded joins)
// into those entities. Nothing downstream of this package sees gorm shapes.
package domain

import (
	"time"

	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/numbering"
	"github.com/zulandar/accreditrack/internal/status"
)

// Profile is a reference to a contributor.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	IsUser   bool   `json:"is_user"`
	CanEdit  bool   `json:"can_edit"`
	CanAdmin bool   `json:"can_admin"`
}

// Section is a report outline node.
type Section struct {
	ID                string `json:"id"`
	Number            string `json:"number"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Level             int    `json:"level"`
	ParentID          string `json:"parent_id,omitempty"`
	SortOrder         int    `json:"sort_order"`
	DocumentsRequired int    `json:"documents_required"`
	DocumentsUploaded int    `json:"documents_uploaded"`
}

func (s Section) NodeID() string       { return s.ID }
func (s Section) NodeParentID() string { return s.ParentID }
func (s Section) NodeLevel() int       { return s.Level }
func (s Section) NodeSortOrder() int   { return s.SortOrder }

// Group is a planning hierarchy node.
type Group struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Level       int    `json:"level"`
	ParentID    string `json:"parent_id,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	IsFixed     bool   `json:"is_fixed"`
	SortOrder   int    `json:"sort_order"`
}

func (g Group) NodeID() string       { return g.ID }
func (g Group) NodeParentID() string { return g.ParentID }
func (g Group) NodeLevel() int       { return g.Level }
func (g Group) NodeSortOrder() int   { return g.SortOrder }

// SectionRef is the slice of a section a task carries for display and
// filtering.
type SectionRef struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Title  string `json:"title"`
	Level  int    `json:"level"`
}

// Task is the atomic unit of work.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	SectionID     string     `json:"section_id"`
	Section       SectionRef `json:"section"`
	OwnerID       string     `json:"owner_id,omitempty"`
	Owner         *Profile   `json:"owner,omitempty"`
	SupervisorID  string     `json:"supervisor_id,omitempty"`
	Status        int        `json:"status"`
	Blocked       bool       `json:"blocked"`
	BlockedReason string     `json:"blocked_reason,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Collaborators []Profile  `json:"collaborators,omitempty"`
}

// ProgressTier classifies the task's progress.
func (t Task) ProgressTier() status.Tier {
	return status.ClassifyProgress(t.Status, t.Blocked)
}

// Deadline classifies the urgency of the task's due date relative to today.
func (t Task) Deadline(today time.Time) status.Deadline {
	return status.ClassifyDeadline(t.Status, t.Blocked, t.DueDate, today)
}

// Link is a group-task association.
type Link struct {
	GroupID string `json:"group_id"`
	TaskID  string `json:"task_id"`
}

// SectionFromRow normalizes a stored section.
func SectionFromRow(r models.Section) Section {
	s := Section{
		ID:                r.ID,
		Number:            r.Number,
		Title:             r.Title,
		Description:       r.Description,
		Level:             r.Level,
		SortOrder:         r.SortOrder,
		DocumentsRequired: r.DocumentsRequired,
		DocumentsUploaded: r.DocumentsUploaded,
	}
	if r.ParentID != nil {
		s.ParentID = *r.ParentID
	}
	// Sections created before sort order was tracked fall back to their
	// numbering.
	if s.SortOrder == 0 {
		if n, ok := numbering.LastSegment(r.Number); ok {
			s.SortOrder = n
		}
	}
	return s
}

// GroupFromRow normalizes a stored group.
func GroupFromRow(r models.Group) Group {
	g := Group{
		ID:          r.ID,
		Number:      r.Number,
		Title:       r.Title,
		Description: r.Description,
		Level:       r.Level,
		IsFixed:     r.IsFixed,
		SortOrder:   r.SortOrder,
	}
	if r.ParentID != nil {
		g.ParentID = *r.ParentID
	}
	if r.OwnerID != nil {
		g.OwnerID = *r.OwnerID
	}
	return g
}

// ProfileFromRow normalizes a stored profile.
func ProfileFromRow(r models.Profile) Profile {
	return Profile{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Role:     r.Role,
		IsUser:   r.IsUser,
		CanEdit:  r.CanEdit,
		CanAdmin: r.CanAdmin,
	}
}

// TaskFromRow normalizes a stored task. Joined Section, Owner and
// Collaborators are used when preloaded and left empty otherwise.
func TaskFromRow(r models.Task) Task {
	t := Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		SectionID:     r.SectionID,
		Section:       SectionRef{ID: r.SectionID},
		OwnerID:       r.OwnerID,
		Status:        r.Status,
		Blocked:       r.Blocked,
		BlockedReason: r.BlockedReason,
	}
	if r.SupervisorID != nil {
		t.SupervisorID = *r.SupervisorID
	}
	if r.StartDate != nil {
		d := time.Time(*r.StartDate)
		t.StartDate = &d
	}
	if r.DueDate != nil {
		d := time.Time(*r.DueDate)
		t.DueDate = &d
	}
	if r.Section != nil {
		t.Section = SectionRef{
			ID:     r.Section.ID,
			Number: r.Section.Number,
			Title:  r.Section.Title,
			Level:  r.Section.Level,
		}
	}
	if r.Owner != nil {
		p := ProfileFromRow(*r.Owner)
		t.Owner = &p
	}
	for _, c := range r.Collaborators {
		if c.Profile != nil {
			t.Collaborators = append(t.Collaborators, ProfileFromRow(*c.Profile))
		} else {
			t.Collaborators = append(t.Collaborators, Profile{ID: c.ProfileID})
		}
	}
	return t
}

// Sections normalizes a slice of section rows.
func Sections(rows []models.Section) []Section {
	out := make([]Section, len(rows))
	for i, r := range rows {
		out[i] = SectionFromRow(r)
	}
	return out
}

// Groups normalizes a slice of group rows.
func Groups(rows []models.Group) []Group {
	out := make([]Group, len(rows))
	for i, r := range rows {
		out[i] = GroupFromRow(r)
	}
	return out
}

// Tasks normalizes a slice of task rows.
func Tasks(rows []models.Task) []Task {
	out := make([]Task, len(rows))
	for i, r := range rows {
		out[i] = TaskFromRow(r)
	}
	return out
}

// Links normalizes a slice of link rows.
func Links(rows []models.GroupTask) []Link {
	out := make([]Link, len(rows))
	for i, r := range rows {
		out[i] = Link{GroupID: r.GroupID, TaskID: r.TaskID}
	}
	return out
}
