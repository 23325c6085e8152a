package models

import (
	"time"

	"gorm.io/datatypes"
)

// Task is the atomic unit of work, owned by exactly one section.
type Task struct {
	ID            string          `gorm:"primaryKey;size:32"`
	Title         string          `gorm:"not null"`
	Description   string          `gorm:"type:text"`
	SectionID     string          `gorm:"size:32;not null;index"`
	OwnerID       string          `gorm:"size:36;index"`
	SupervisorID  *string         `gorm:"size:36"`
	Status        int             `gorm:"default:0;index"`
	Blocked       bool            `gorm:"default:false;index"`
	BlockedReason string          `gorm:"type:text"`
	StartDate     *datatypes.Date
	DueDate       *datatypes.Date `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Section       *Section           `gorm:"foreignKey:SectionID"`
	Owner         *Profile           `gorm:"foreignKey:OwnerID"`
	Supervisor    *Profile           `gorm:"foreignKey:SupervisorID"`
	Collaborators []TaskCollaborator `gorm:"foreignKey:TaskID"`
}

// TaskCollaborator is one entry of a task's ordered collaborator set.
type TaskCollaborator struct {
	TaskID    string `gorm:"primaryKey;size:32"`
	ProfileID string `gorm:"primaryKey;size:36"`
	Position  int    `gorm:"default:0"`

	Profile *Profile `gorm:"foreignKey:ProfileID"`
}
