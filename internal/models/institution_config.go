package models

// InstitutionConfig stores instance-level configuration.
type InstitutionConfig struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Institution string `gorm:"size:64;uniqueIndex"`
	ReportTitle string `gorm:"type:text;not null"`
	Settings    string `gorm:"type:json"`
}
