// Package group provides planning hierarchy operations.
package group

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/zulandar/accreditrack/internal/config"
	"github.com/zulandar/accreditrack/internal/db"
	"github.com/zulandar/accreditrack/internal/hierarchy"
	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/numbering"
	"gorm.io/gorm"
)

var (
	// ErrFixedGroup is returned when deleting a group seeded as fixed, or
	// one with a fixed group somewhere beneath it.
	ErrFixedGroup = errors.New("group: fixed groups cannot be deleted")

	// ErrTooDeep is returned when a new group would sit below
	// hierarchy.MaxLevel.
	ErrTooDeep = errors.New("group: plan is limited to three levels")

	// ErrNotFound is returned when a group or its owner does not exist.
	ErrNotFound = errors.New("group: not found")
)

var validate = validator.New()

// CreateOpts holds parameters for creating a new group.
type CreateOpts struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
	OwnerID     string `json:"owner_id"`
}

// UpdateOpts holds the editable fields of a group. Nil fields are left
// unchanged; an empty OwnerID clears the owner.
type UpdateOpts struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	OwnerID     *string `json:"owner_id"`
}

// Create adds a group under ParentID (or at the top level). The number and
// sort order continue after the existing siblings.
func Create(gormDB *gorm.DB, opts CreateOpts) (*models.Group, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("group: invalid input: %w", err)
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
	if err := checkOwner(gormDB, opts.OwnerID); err != nil {
		return nil, err
	}

	siblings, err := siblingNumbers(gormDB, opts.ParentID)
	if err != nil {
		return nil, err
	}
	number := numbering.Next(parentNumber, siblings)
	sortOrder, _ := numbering.LastSegment(number)

	id, err := db.UniqueID(gormDB, &models.Group{}, "grp")
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}

	g := models.Group{
		ID:          id,
		Number:      number,
		Title:       opts.Title,
		Description: opts.Description,
		Level:       level,
		ParentID:    parentID,
		SortOrder:   sortOrder,
	}
	if opts.OwnerID != "" {
		g.OwnerID = &opts.OwnerID
	}
	if err := gormDB.Create(&g).Error; err != nil {
		return nil, fmt.Errorf("group: create: %w", err)
	}
	return &g, nil
}

// Get retrieves a group by ID, preloading its owner.
func Get(gormDB *gorm.DB, id string) (*models.Group, error) {
	var g models.Group
	if err := gormDB.Preload("Owner").Where("id = ?", id).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("group: get %s: %w", id, err)
	}
	return &g, nil
}

// List returns every group ordered by level then sort order.
func List(gormDB *gorm.DB) ([]models.Group, error) {
	var groups []models.Group
	if err := gormDB.Order("level ASC, sort_order ASC, number ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("group: list: %w", err)
	}
	return groups, nil
}

// Update applies the non-nil fields of opts. Fixed groups may be edited.
func Update(gormDB *gorm.DB, id string, opts UpdateOpts) (*models.Group, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("group: invalid input: %w", err)
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
	if opts.OwnerID != nil {
		if *opts.OwnerID == "" {
			updates["owner_id"] = nil
		} else {
			if err := checkOwner(gormDB, *opts.OwnerID); err != nil {
				return nil, err
			}
			updates["owner_id"] = *opts.OwnerID
		}
	}
	if len(updates) > 0 {
		if err := gormDB.Model(&models.Group{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("group: update %s: %w", id, err)
		}
	}
	return Get(gormDB, id)
}

// Delete removes a group, its descendant groups and all of their task
// links. Tasks themselves are untouched and return to the available pool.
func Delete(gormDB *gorm.DB, id string) error {
	g, err := Get(gormDB, id)
	if err != nil {
		return err
	}
	if g.IsFixed {
		return fmt.Errorf("%w: %s", ErrFixedGroup, id)
	}
	return gormDB.Transaction(func(tx *gorm.DB) error {
		ids, err := subtreeIDs(tx, id)
		if err != nil {
			return err
		}
		var fixed int64
		if err := tx.Model(&models.Group{}).Where("id IN ? AND is_fixed = ?", ids, true).Count(&fixed).Error; err != nil {
			return fmt.Errorf("group: check fixed descendants of %s: %w", id, err)
		}
		if fixed > 0 {
			return fmt.Errorf("%w: %s has a fixed descendant", ErrFixedGroup, id)
		}
		if err := tx.Where("group_id IN ?", ids).Delete(&models.GroupTask{}).Error; err != nil {
			return fmt.Errorf("group: delete links of %s: %w", id, err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Group{}).Error; err != nil {
			return fmt.Errorf("group: delete %s: %w", id, err)
		}
		return nil
	})
}

// SeedFixed ensures every configured phase exists as a fixed top-level
// group. Existing groups with the same number are marked fixed and retitled.
// It returns the number of groups created.
func SeedFixed(gormDB *gorm.DB, phases []config.GroupConfig) (int, error) {
	created := 0
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		for _, p := range phases {
			var existing models.Group
			err := tx.Where("number = ? AND parent_id IS NULL", p.Number).First(&existing).Error
			if err == nil {
				if err := tx.Model(&existing).Updates(map[string]interface{}{
					"title":       p.Title,
					"description": p.Description,
					"is_fixed":    true,
				}).Error; err != nil {
					return fmt.Errorf("group: seed update %s: %w", p.Number, err)
				}
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("group: seed lookup %s: %w", p.Number, err)
			}

			id, err := db.UniqueID(tx, &models.Group{}, "grp")
			if err != nil {
				return fmt.Errorf("group: %w", err)
			}
			sortOrder, _ := numbering.LastSegment(p.Number)
			g := models.Group{
				ID:          id,
				Number:      p.Number,
				Title:       p.Title,
				Description: p.Description,
				Level:       1,
				IsFixed:     true,
				SortOrder:   sortOrder,
			}
			if err := tx.Create(&g).Error; err != nil {
				return fmt.Errorf("group: seed create %s: %w", p.Number, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func checkOwner(gormDB *gorm.DB, ownerID string) error {
	if ownerID == "" {
		return nil
	}
	var count int64
	if err := gormDB.Model(&models.Profile{}).Where("id = ?", ownerID).Count(&count).Error; err != nil {
		return fmt.Errorf("group: check owner %s: %w", ownerID, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: owner %s", ErrNotFound, ownerID)
	}
	return nil
}

func siblingNumbers(gormDB *gorm.DB, parentID string) ([]string, error) {
	q := gormDB.Model(&models.Group{})
	if parentID == "" {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", parentID)
	}
	var numbers []string
	if err := q.Pluck("number", &numbers).Error; err != nil {
		return nil, fmt.Errorf("group: sibling numbers: %w", err)
	}
	return numbers, nil
}

// subtreeIDs returns id and the ids of every group below it.
func subtreeIDs(tx *gorm.DB, id string) ([]string, error) {
	ids := []string{id}
	frontier := []string{id}
	for depth := 0; depth < hierarchy.MaxLevel && len(frontier) > 0; depth++ {
		var next []string
		if err := tx.Model(&models.Group{}).Where("parent_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
			return nil, fmt.Errorf("group: descendants of %s: %w", id, err)
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}
