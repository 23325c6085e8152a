package models

import "time"

// Section is a node of the report outline. Children are attached only when
// the outline is assembled, never stored.
type Section struct {
	ID                string  `gorm:"primaryKey;size:32"`
	Number            string  `gorm:"size:32;not null;index"`
	Title             string  `gorm:"not null"`
	Description       string  `gorm:"type:text"`
	Level             int     `gorm:"not null;default:1"`
	ParentID          *string `gorm:"size:32;index"`
	SortOrder         int     `gorm:"default:0"`
	DocumentsRequired int     `gorm:"default:0"`
	DocumentsUploaded int     `gorm:"default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Parent   *Section  `gorm:"foreignKey:ParentID"`
	Children []Section `gorm:"foreignKey:ParentID"`
	Tasks    []Task    `gorm:"foreignKey:SectionID"`
}
