package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sanjshine99/carepath/internal/model"
)

// ErrCareGiverNotFound is returned when a lookup by id matches no row.
var ErrCareGiverNotFound = errors.New("care giver not found")

// CareGiverRepository handles care-giver data access.
type CareGiverRepository struct {
	db *DB
}

// NewCareGiverRepository creates a new care-giver repository.
func NewCareGiverRepository(db *DB) *CareGiverRepository {
	return &CareGiverRepository{db: db}
}

// Create inserts a new care giver.
func (r *CareGiverRepository) Create(ctx context.Context, cg *model.CareGiver) error {
	return r.db.GORM.WithContext(ctx).Create(cg).Error
}

// GetByID retrieves a care giver by id.
func (r *CareGiverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CareGiver, error) {
	var cg model.CareGiver
	err := r.db.GORM.WithContext(ctx).First(&cg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCareGiverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get care giver: %w", err)
	}
	return &cg, nil
}

// ListActive returns every active care giver, ordered by id for deterministic,
// replayable candidate iteration.
func (r *CareGiverRepository) ListActive(ctx context.Context) ([]model.CareGiver, error) {
	var givers []model.CareGiver
	err := r.db.GORM.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&givers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active care givers: %w", err)
	}
	return givers, nil
}

// Update persists changes to an existing care giver.
func (r *CareGiverRepository) Update(ctx context.Context, cg *model.CareGiver) error {
	return r.db.GORM.WithContext(ctx).Save(cg).Error
}

// Delete removes a care giver by id.
func (r *CareGiverRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.GORM.WithContext(ctx).Delete(&model.CareGiver{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete care giver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCareGiverNotFound
	}
	return nil
}
