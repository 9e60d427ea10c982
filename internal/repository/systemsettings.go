package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sanjshine99/carepath/internal/model"
)

// ErrSystemSettingsNotFound is returned when the singleton row is absent.
var ErrSystemSettingsNotFound = errors.New("system settings not found")

// SystemSettingsRepository handles the singleton settings row.
type SystemSettingsRepository struct {
	db *DB
}

// NewSystemSettingsRepository creates a new system settings repository.
func NewSystemSettingsRepository(db *DB) *SystemSettingsRepository {
	return &SystemSettingsRepository{db: db}
}

// Get retrieves the singleton row.
func (r *SystemSettingsRepository) Get(ctx context.Context) (*model.SystemSettings, error) {
	var settings model.SystemSettings
	err := r.db.GORM.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSystemSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system settings: %w", err)
	}
	return &settings, nil
}

// Create inserts the singleton row.
func (r *SystemSettingsRepository) Create(ctx context.Context, settings *model.SystemSettings) error {
	return r.db.GORM.WithContext(ctx).Create(settings).Error
}

// Update persists changes to the singleton row.
func (r *SystemSettingsRepository) Update(ctx context.Context, settings *model.SystemSettings) error {
	return r.db.GORM.WithContext(ctx).Save(settings).Error
}

// GetOrCreate retrieves the existing row or seeds it with defaults.
func (r *SystemSettingsRepository) GetOrCreate(ctx context.Context) (*model.SystemSettings, error) {
	settings, err := r.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, ErrSystemSettingsNotFound) {
		return nil, err
	}

	defaults := model.DefaultSettings()
	if err := r.Create(ctx, defaults); err != nil {
		existing, getErr := r.Get(ctx)
		if getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create default system settings: %w", err)
	}
	return defaults, nil
}
