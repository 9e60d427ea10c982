package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sanjshine99/carepath/internal/model"
)

// ErrAvailabilityVersionNotFound is returned when no version matches a lookup.
var ErrAvailabilityVersionNotFound = errors.New("availability version not found")

// AvailabilityRepository persists the append-only AvailabilityVersion history.
type AvailabilityRepository struct {
	db *DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// CurrentFor returns the unique version with effective_from <= atDate and
// (effective_to is null or effective_to >= atDate) and is_active, breaking
// ties by the greatest effective_from.
func (r *AvailabilityRepository) CurrentFor(ctx context.Context, careGiverID uuid.UUID, atDate model.TimeOnlyDate) (*model.AvailabilityVersion, error) {
	var version model.AvailabilityVersion
	err := r.db.GORM.WithContext(ctx).
		Where("care_giver_id = ? AND is_active = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)",
			careGiverID, true, atDate.Time(), atDate.Time()).
		Order("effective_from DESC").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAvailabilityVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up current availability version: %w", err)
	}
	return &version, nil
}

// At returns the version covering atDate regardless of is_active, for
// historical audit.
func (r *AvailabilityRepository) At(ctx context.Context, careGiverID uuid.UUID, atDate model.TimeOnlyDate) (*model.AvailabilityVersion, error) {
	var version model.AvailabilityVersion
	err := r.db.GORM.WithContext(ctx).
		Where("care_giver_id = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)",
			careGiverID, atDate.Time(), atDate.Time()).
		Order("effective_from DESC").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAvailabilityVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up availability version: %w", err)
	}
	return &version, nil
}

// History returns every version for a care giver, newest effective_from first.
func (r *AvailabilityRepository) History(ctx context.Context, careGiverID uuid.UUID) ([]model.AvailabilityVersion, error) {
	var versions []model.AvailabilityVersion
	err := r.db.GORM.WithContext(ctx).
		Where("care_giver_id = ?", careGiverID).
		Order("effective_from DESC").
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list availability history: %w", err)
	}
	return versions, nil
}

// CreateVersion atomically closes the currently open version(s) for
// careGiverID and inserts a new open version at version := max_existing + 1.
// The whole operation runs in one transaction so readers never observe two
// simultaneously-open versions.
func (r *AvailabilityRepository) CreateVersion(ctx context.Context, next *model.AvailabilityVersion) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var maxVersion int
		if err := tx.Model(&model.AvailabilityVersion{}).
			Where("care_giver_id = ?", next.CareGiverID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error; err != nil {
			return fmt.Errorf("failed to compute next version: %w", err)
		}

		result := tx.Model(&model.AvailabilityVersion{}).
			Where("care_giver_id = ? AND is_active = ? AND effective_to IS NULL", next.CareGiverID, true).
			Updates(map[string]interface{}{
				"effective_to": next.EffectiveFrom.Time(),
				"is_active":    false,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to close open availability version: %w", result.Error)
		}

		next.Version = maxVersion + 1
		next.IsActive = true
		if err := tx.Create(next).Error; err != nil {
			return fmt.Errorf("failed to insert availability version: %w", err)
		}
		return nil
	})
}
