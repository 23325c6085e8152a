// Package task provides task lifecycle operations.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zulandar/accreditrack/internal/db"
	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/status"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DateLayout is the wire format for start and due dates.
const DateLayout = "2006-01-02"

var (
	// ErrBlockedReason is returned when a task would be blocked without a
	// reason.
	ErrBlockedReason = errors.New("task: a blocked task needs a reason")

	// ErrOwnerCollaborator is returned when adding a task's owner as one of
	// its collaborators.
	ErrOwnerCollaborator = errors.New("task: the owner cannot also be a collaborator")

	// ErrNotFound is returned for an unknown task, or an unknown section
	// or profile referenced by one.
	ErrNotFound = errors.New("task: not found")

	ErrInvalidDate = errors.New("task: invalid date")
)

var validate = validator.New()

// CreateOpts holds parameters for creating a new task.
type CreateOpts struct {
	Title        string `validate:"required,max=255"`
	Description  string
	SectionID    string `validate:"required"`
	OwnerID      string `validate:"required"`
	SupervisorID string
	Status       int `validate:"gte=0,lte=100"`
	StartDate    *time.Time
	DueDate      *time.Time
}

// ListFilters holds optional filters for listing tasks.
type ListFilters struct {
	SectionID string
	OwnerID   string
	Bucket    status.Bucket
	Blocked   *bool
}

// Patch is a partial update. Nil fields are left unchanged. Dates use
// DateLayout; an empty date string clears the date. Setting Blocked requires
// a non-empty reason, either in the same patch or already stored; clearing
// it drops the reason.
type Patch struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string `json:"description"`
	SectionID     *string `json:"section_id" validate:"omitempty,min=1"`
	OwnerID       *string `json:"owner_id" validate:"omitempty,min=1"`
	SupervisorID  *string `json:"supervisor_id"`
	Status        *int    `json:"status" validate:"omitempty,gte=0,lte=100"`
	Blocked       *bool   `json:"blocked"`
	BlockedReason *string `json:"blocked_reason"`
	StartDate     *string `json:"start_date"`
	DueDate       *string `json:"due_date"`
}

// Create creates a new task in SectionID owned by OwnerID.
func Create(gormDB *gorm.DB, opts CreateOpts) (*models.Task, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("task: invalid input: %w", err)
	}
	if err := exists(gormDB, &models.Section{}, "section", opts.SectionID); err != nil {
		return nil, err
	}
	if err := exists(gormDB, &models.Profile{}, "owner", opts.OwnerID); err != nil {
		return nil, err
	}

	id, err := db.UniqueID(gormDB, &models.Task{}, "tsk")
	if err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}

	t := models.Task{
		ID:          id,
		Title:       opts.Title,
		Description: opts.Description,
		SectionID:   opts.SectionID,
		OwnerID:     opts.OwnerID,
		Status:      opts.Status,
		StartDate:   toDate(opts.StartDate),
		DueDate:     toDate(opts.DueDate),
	}
	if opts.SupervisorID != "" {
		if err := exists(gormDB, &models.Profile{}, "supervisor", opts.SupervisorID); err != nil {
			return nil, err
		}
		t.SupervisorID = &opts.SupervisorID
	}
	if err := gormDB.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}
	return &t, nil
}

// Get retrieves a task by ID with its section, owner, supervisor and ordered
// collaborators.
func Get(gormDB *gorm.DB, id string) (*models.Task, error) {
	var t models.Task
	if err := Preloaded(gormDB).Preload("Supervisor").Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("task: get %s: %w", id, err)
	}
	return &t, nil
}

// List returns tasks matching the given filters, soonest due first, tasks
// without a due date last.
func List(gormDB *gorm.DB, filters ListFilters) ([]models.Task, error) {
	q := Preloaded(gormDB).Model(&models.Task{})

	if filters.SectionID != "" {
		q = q.Where("section_id = ?", filters.SectionID)
	}
	if filters.OwnerID != "" {
		q = q.Where("owner_id = ?", filters.OwnerID)
	}
	if filters.Bucket != status.AnyBucket {
		lo, hi := filters.Bucket.Range()
		q = q.Where("status BETWEEN ? AND ?", lo, hi)
	}
	if filters.Blocked != nil {
		q = q.Where("blocked = ?", *filters.Blocked)
	}

	var tasks []models.Task
	if err := q.Order("due_date IS NULL, due_date ASC, created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update and returns the stored result. The
// checks and writes run in one transaction.
func Update(gormDB *gorm.DB, id string, p Patch) (*models.Task, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("task: invalid input: %w", err)
	}
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return applyPatch(tx, id, p)
	})
	if err != nil {
		return nil, err
	}
	return Get(gormDB, id)
}

func applyPatch(tx *gorm.DB, id string, p Patch) error {
	current, err := Get(tx, id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.SectionID != nil {
		if err := exists(tx, &models.Section{}, "section", *p.SectionID); err != nil {
			return err
		}
		updates["section_id"] = *p.SectionID
	}
	if p.OwnerID != nil {
		if err := exists(tx, &models.Profile{}, "owner", *p.OwnerID); err != nil {
			return err
		}
		updates["owner_id"] = *p.OwnerID
	}
	if p.SupervisorID != nil {
		if *p.SupervisorID == "" {
			updates["supervisor_id"] = nil
		} else {
			if err := exists(tx, &models.Profile{}, "supervisor", *p.SupervisorID); err != nil {
				return err
			}
			updates["supervisor_id"] = *p.SupervisorID
		}
	}
	if p.Status != nil {
		updates["status"] = *p.Status
	}
	for col, raw := range map[string]*string{"start_date": p.StartDate, "due_date": p.DueDate} {
		if raw == nil {
			continue
		}
		d, err := parseDate(*raw)
		if err != nil {
			return err
		}
		if d == nil {
			updates[col] = nil
		} else {
			updates[col] = *d
		}
	}

	blocked, reason := current.Blocked, current.BlockedReason
	if p.Blocked != nil {
		blocked = *p.Blocked
	}
	if p.BlockedReason != nil {
		reason = strings.TrimSpace(*p.BlockedReason)
	}
	if blocked && reason == "" {
		return fmt.Errorf("%w: %s", ErrBlockedReason, id)
	}
	if !blocked {
		reason = ""
	}
	if blocked != current.Blocked || reason != current.BlockedReason {
		updates["blocked"] = blocked
		updates["blocked_reason"] = reason
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("task: update %s: %w", id, err)
		}
	}
	if p.OwnerID != nil {
		// A new owner stops being a collaborator.
		if err := tx.Where("task_id = ? AND profile_id = ?", id, *p.OwnerID).Delete(&models.TaskCollaborator{}).Error; err != nil {
			return fmt.Errorf("task: drop owner from collaborators of %s: %w", id, err)
		}
	}
	return nil
}

// SetStatus records a new progress value in 0..100.
func SetStatus(gormDB *gorm.DB, id string, value int) (*models.Task, error) {
	return Update(gormDB, id, Patch{Status: &value})
}

// Block marks a task blocked with the given reason.
func Block(gormDB *gorm.DB, id, reason string) (*models.Task, error) {
	blocked := true
	return Update(gormDB, id, Patch{Blocked: &blocked, BlockedReason: &reason})
}

// Unblock clears the blocked flag and its reason.
func Unblock(gormDB *gorm.DB, id string) (*models.Task, error) {
	blocked := false
	return Update(gormDB, id, Patch{Blocked: &blocked})
}

// AddCollaborator appends profileID to the task's collaborators. Adding an
// existing collaborator is a no-op.
func AddCollaborator(gormDB *gorm.DB, taskID, profileID string) error {
	t, err := Get(gormDB, taskID)
	if err != nil {
		return err
	}
	if t.OwnerID == profileID {
		return fmt.Errorf("%w: %s on %s", ErrOwnerCollaborator, profileID, taskID)
	}
	if err := exists(gormDB, &models.Profile{}, "collaborator", profileID); err != nil {
		return err
	}

	next := 0
	for _, c := range t.Collaborators {
		if c.ProfileID == profileID {
			return nil
		}
		next = max(next, c.Position+1)
	}
	c := models.TaskCollaborator{TaskID: taskID, ProfileID: profileID, Position: next}
	if err := gormDB.Create(&c).Error; err != nil {
		return fmt.Errorf("task: add collaborator %s to %s: %w", profileID, taskID, err)
	}
	return nil
}

// RemoveCollaborator drops profileID from the task's collaborators. Removing
// a non-collaborator is a no-op.
func RemoveCollaborator(gormDB *gorm.DB, taskID, profileID string) error {
	if err := gormDB.Where("task_id = ? AND profile_id = ?", taskID, profileID).Delete(&models.TaskCollaborator{}).Error; err != nil {
		return fmt.Errorf("task: remove collaborator %s from %s: %w", profileID, taskID, err)
	}
	return nil
}

// Delete removes a task together with its group link and collaborators.
func Delete(gormDB *gorm.DB, id string) error {
	if _, err := Get(gormDB, id); err != nil {
		return err
	}
	return gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.GroupTask{}).Error; err != nil {
			return fmt.Errorf("task: delete links of %s: %w", id, err)
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskCollaborator{}).Error; err != nil {
			return fmt.Errorf("task: delete collaborators of %s: %w", id, err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("task: delete %s: %w", id, err)
		}
		return nil
	})
}

// ParseDate parses a DateLayout date; the empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	d, err := parseDate(s)
	if err != nil || d == nil {
		return nil, err
	}
	t := time.Time(*d)
	return &t, nil
}

func parseDate(s string) (*datatypes.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w %q (want YYYY-MM-DD)", ErrInvalidDate, s)
	}
	d := datatypes.Date(t)
	return &d, nil
}

func toDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(*t)
	return &d
}

// Preloaded joins everything a domain.Task carries.
func Preloaded(gormDB *gorm.DB) *gorm.DB {
	return gormDB.
		Preload("Section").
		Preload("Owner").
		Preload("Collaborators", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Preload("Collaborators.Profile")
}

func exists(gormDB *gorm.DB, model interface{}, what, id string) error {
	var count int64
	if err := gormDB.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("task: check %s %s: %w", what, id, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return nil
}
