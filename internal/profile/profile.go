// Package profile manages the contributor references tasks and groups point at.
package profile

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/zulandar/accreditrack/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("profile: not found")

var validate = validator.New()

// CreateOpts holds parameters for registering a profile.
type CreateOpts struct {
	Name     string `validate:"required,max=255"`
	Email    string `validate:"omitempty,email"`
	Role     string `validate:"omitempty,oneof=contributor supervisor admin"`
	IsUser   bool
	CanEdit  bool
	CanAdmin bool
}

// Create registers a profile under a fresh UUID.
func Create(db *gorm.DB, opts CreateOpts) (*models.Profile, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("profile: invalid input: %w", err)
	}
	if opts.Role == "" {
		opts.Role = "contributor"
	}
	p := models.Profile{
		ID:       uuid.NewString(),
		Name:     opts.Name,
		Email:    opts.Email,
		Role:     opts.Role,
		IsUser:   opts.IsUser,
		CanEdit:  opts.CanEdit,
		CanAdmin: opts.CanAdmin,
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("profile: create: %w", err)
	}
	return &p, nil
}

// Get retrieves a profile by ID.
func Get(db *gorm.DB, id string) (*models.Profile, error) {
	var p models.Profile
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("profile: get %s: %w", id, err)
	}
	return &p, nil
}

// List returns all profiles ordered by name.
func List(db *gorm.DB) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := db.Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("profile: list: %w", err)
	}
	return profiles, nil
}
