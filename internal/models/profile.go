package models

import "time"

// Profile is a contributor known to the tracker. Profiles are managed by the
// surrounding identity system; the tracker only references them.
type Profile struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"size:255;index"`
	Role      string `gorm:"size:32;default:contributor"`
	IsUser    bool
	CanEdit   bool   `gorm:"default:false"`
	CanAdmin  bool   `gorm:"default:false"`
	CreatedAt time.Time
}
