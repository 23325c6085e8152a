package db

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"
)

// GenerateID creates an ID in prefix-xxxxx format (5-char hex).
func GenerateID(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("db: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b)[:5], nil
}

// UniqueID generates an ID not yet used in model's table, retrying once on
// collision.
func UniqueID(db *gorm.DB, model interface{}, prefix string) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		id, err := GenerateID(prefix)
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("db: check ID uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("db: failed to generate unique %s ID after retries", prefix)
}
