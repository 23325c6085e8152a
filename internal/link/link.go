// Package link maintains the many-to-one association between tasks and plan
// groups, and derives the pool of tasks not yet assigned to any group.
package link

import (
	"errors"
	"fmt"

	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/task"
	"gorm.io/gorm"
)

var (
	// ErrLinkedElsewhere is returned when a task is already linked to a
	// different group.
	ErrLinkedElsewhere = errors.New("link: task already belongs to another group")

	// ErrNotFound is returned when the group or task of a link is unknown.
	ErrNotFound = errors.New("link: not found")

	// ErrNotTopLevel is returned when a scope root is not a level-1 section.
	ErrNotTopLevel = errors.New("link: not a top-level section")
)

// Link associates taskID with groupID. Linking an existing pair is a no-op.
func Link(db *gorm.DB, groupID, taskID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Group{}, "group", groupID); err != nil {
			return err
		}
		if err := exists(tx, &models.Task{}, "task", taskID); err != nil {
			return err
		}

		var existing models.GroupTask
		err := tx.Where("task_id = ?", taskID).First(&existing).Error
		if err == nil {
			if existing.GroupID == groupID {
				return nil
			}
			return fmt.Errorf("%w: %s is in %s", ErrLinkedElsewhere, taskID, existing.GroupID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("link: check %s: %w", taskID, err)
		}

		if err := tx.Create(&models.GroupTask{GroupID: groupID, TaskID: taskID}).Error; err != nil {
			return fmt.Errorf("link: %s to %s: %w", taskID, groupID, err)
		}
		return nil
	})
}

// Unlink removes the association. Removing an absent pair is a no-op.
func Unlink(db *gorm.DB, groupID, taskID string) error {
	if err := db.Where("group_id = ? AND task_id = ?", groupID, taskID).Delete(&models.GroupTask{}).Error; err != nil {
		return fmt.Errorf("link: unlink %s from %s: %w", taskID, groupID, err)
	}
	return nil
}

// TasksOf returns the tasks linked to groupID with section, owner and
// collaborators resolved, in the order they were linked.
func TasksOf(db *gorm.DB, groupID string) ([]domain.Task, error) {
	var rows []models.Task
	err := task.Preloaded(db).
		Joins("JOIN group_tasks ON group_tasks.task_id = tasks.id").
		Where("group_tasks.group_id = ?", groupID).
		Order("group_tasks.created_at ASC, tasks.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("link: tasks of %s: %w", groupID, err)
	}
	return domain.Tasks(rows), nil
}

// AllLinkedTaskIDs returns the set of task ids linked to any group.
func AllLinkedTaskIDs(db *gorm.DB) (map[string]struct{}, error) {
	var ids []string
	if err := db.Model(&models.GroupTask{}).Distinct("task_id").Pluck("task_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("link: linked task ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Links returns every group-task association.
func Links(db *gorm.DB) ([]domain.Link, error) {
	var rows []models.GroupTask
	if err := db.Order("group_id ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("link: list: %w", err)
	}
	return domain.Links(rows), nil
}

func exists(db *gorm.DB, model interface{}, what, id string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("link: check %s %s: %w", what, id, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return nil
}
