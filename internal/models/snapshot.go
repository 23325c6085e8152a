package models

import "time"

// ProgressSnapshot records the headline numbers at a point in time.
type ProgressSnapshot struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	TakenAt        time.Time `gorm:"index"`
	ReportProgress int
	PlanProgress   int
	SectionCount   int
	GroupCount     int
	TaskCount      int
	CompletedCount int
	BlockedCount   int
	OverdueCount   int
}
