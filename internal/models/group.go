package models

import "time"

// Group is a node of the planning (project phase) hierarchy. Tasks are
// attached through GroupTask links rather than owned.
type Group struct {
	ID          string  `gorm:"primaryKey;size:32"`
	Number      string  `gorm:"size:32;not null;index"`
	Title       string  `gorm:"not null"`
	Description string  `gorm:"type:text"`
	Level       int     `gorm:"not null;default:1"`
	ParentID    *string `gorm:"size:32;index"`
	OwnerID     *string `gorm:"size:36"`
	IsFixed     bool    `gorm:"default:false"`
	SortOrder   int     `gorm:"default:0;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner    *Profile    `gorm:"foreignKey:OwnerID"`
	Children []Group     `gorm:"foreignKey:ParentID"`
	Links    []GroupTask `gorm:"foreignKey:GroupID"`
}

// TableName avoids the reserved word GROUPS on MySQL.
func (Group) TableName() string {
	return "plan_groups"
}

// GroupTask links a task to a group. A task belongs to at most one group,
// enforced by the unique index on TaskID.
type GroupTask struct {
	GroupID   string `gorm:"primaryKey;size:32"`
	TaskID    string `gorm:"primaryKey;size:32;uniqueIndex:idx_group_tasks_task"`
	CreatedAt time.Time

	Group Group `gorm:"foreignKey:GroupID"`
	Task  Task  `gorm:"foreignKey:TaskID"`
}
