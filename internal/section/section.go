// Package section provides report outline operations.
package section

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/zulandar/accreditrack/internal/db"
	"github.com/zulandar/accreditrack/internal/hierarchy"
	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/numbering"
	"gorm.io/gorm"
)

var (
	// ErrTooDeep is returned when a new section would sit below hierarchy.MaxLevel.
	ErrTooDeep = errors.New("section: outline is limited to three levels")

	ErrNotFound = errors.New("section: not found")
)

var validate = validator.New()

// CreateOpts holds parameters for creating a new section.
type CreateOpts struct {
	Title             string `validate:"required,max=255"`
	Description       string
	ParentID          string
	DocumentsRequired int `validate:"gte=0"`
}

// UpdateOpts holds the editable fields of a section. Nil fields are left
// unchanged.
type UpdateOpts struct {
	Title             *string `validate:"omitempty,min=1,max=255"`
	Description       *string
	DocumentsRequired *int `validate:"omitempty,gte=0"`
	DocumentsUploaded *int `validate:"omitempty,gte=0"`
}

// Create adds a section under ParentID (or at the top level), numbering it
// after its existing siblings.
func Create(gormDB *gorm.DB, opts CreateOpts) (*models.Section, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("section: invalid input: %w", err)
	}

	level := 1
	parentNumber := ""
	var parentID *string
	if opts.ParentID != "" {
		parent, err := Get(gormDB, opts.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Level >= hierarchy.MaxLevel {
			return nil, fmt.Errorf("%w: parent %s is level %d", ErrTooDeep, parent.ID, parent.Level)
		}
		level = parent.Level + 1
		parentNumber = parent.Number
		parentID = &parent.ID
	}

	siblings, err := siblingNumbers(gormDB, opts.ParentID)
	if err != nil {
		return nil, err
	}
	number := numbering.Next(parentNumber, siblings)
	sortOrder, _ := numbering.LastSegment(number)

	id, err := db.UniqueID(gormDB, &models.Section{}, "sec")
	if err != nil {
		return nil, fmt.Errorf("section: %w", err)
	}

	sec := models.Section{
		ID:                id,
		Number:            number,
		Title:             opts.Title,
		Description:       opts.Description,
		Level:             level,
		ParentID:          parentID,
		SortOrder:         sortOrder,
		DocumentsRequired: opts.DocumentsRequired,
	}
	if err := gormDB.Create(&sec).Error; err != nil {
		return nil, fmt.Errorf("section: create: %w", err)
	}
	return &sec, nil
}

// Get retrieves a section by ID.
func Get(gormDB *gorm.DB, id string) (*models.Section, error) {
	var sec models.Section
	if err := gormDB.Where("id = ?", id).First(&sec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("section: get %s: %w", id, err)
	}
	return &sec, nil
}

// List returns every section ordered by level then sort order.
func List(gormDB *gorm.DB) ([]models.Section, error) {
	var sections []models.Section
	if err := gormDB.Order("level ASC, sort_order ASC, number ASC").Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("section: list: %w", err)
	}
	return sections, nil
}

// Children returns the direct children of parentID in sort order.
func Children(gormDB *gorm.DB, parentID string) ([]models.Section, error) {
	if _, err := Get(gormDB, parentID); err != nil {
		return nil, err
	}
	var children []models.Section
	if err := gormDB.Where("parent_id = ?", parentID).Order("sort_order ASC, number ASC").Find(&children).Error; err != nil {
		return nil, fmt.Errorf("section: children of %s: %w", parentID, err)
	}
	return children, nil
}

// Update applies the non-nil fields of opts.
func Update(gormDB *gorm.DB, id string, opts UpdateOpts) (*models.Section, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("section: invalid input: %w", err)
	}
	if _, err := Get(gormDB, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if opts.Title != nil {
		updates["title"] = *opts.Title
	}
	if opts.Description != nil {
		updates["description"] = *opts.Description
	}
	if opts.DocumentsRequired != nil {
		updates["documents_required"] = *opts.DocumentsRequired
	}
	if opts.DocumentsUploaded != nil {
		updates["documents_uploaded"] = *opts.DocumentsUploaded
	}
	if len(updates) > 0 {
		if err := gormDB.Model(&models.Section{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("section: update %s: %w", id, err)
		}
	}
	return Get(gormDB, id)
}

// Delete removes a section together with its descendant sections, every
// task they own, and those tasks' links and collaborators.
func Delete(gormDB *gorm.DB, id string) error {
	if _, err := Get(gormDB, id); err != nil {
		return err
	}
	return gormDB.Transaction(func(tx *gorm.DB) error {
		ids, err := subtreeIDs(tx, id)
		if err != nil {
			return err
		}

		var taskIDs []string
		if err := tx.Model(&models.Task{}).Where("section_id IN ?", ids).Pluck("id", &taskIDs).Error; err != nil {
			return fmt.Errorf("section: find tasks of %s: %w", id, err)
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.GroupTask{}).Error; err != nil {
				return fmt.Errorf("section: delete links of %s: %w", id, err)
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskCollaborator{}).Error; err != nil {
				return fmt.Errorf("section: delete collaborators of %s: %w", id, err)
			}
			if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return fmt.Errorf("section: delete tasks of %s: %w", id, err)
			}
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Section{}).Error; err != nil {
			return fmt.Errorf("section: delete %s: %w", id, err)
		}
		return nil
	})
}

// siblingNumbers returns the numbers of the existing children of parentID,
// or of the top-level sections when parentID is empty.
func siblingNumbers(gormDB *gorm.DB, parentID string) ([]string, error) {
	q := gormDB.Model(&models.Section{})
	if parentID == "" {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", parentID)
	}
	var numbers []string
	if err := q.Pluck("number", &numbers).Error; err != nil {
		return nil, fmt.Errorf("section: sibling numbers: %w", err)
	}
	return numbers, nil
}

// subtreeIDs returns id and the ids of every section below it.
func subtreeIDs(tx *gorm.DB, id string) ([]string, error) {
	ids := []string{id}
	frontier := []string{id}
	for depth := 0; depth < hierarchy.MaxLevel && len(frontier) > 0; depth++ {
		var next []string
		if err := tx.Model(&models.Section{}).Where("parent_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
			return nil, fmt.Errorf("section: descendants of %s: %w", id, err)
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}
