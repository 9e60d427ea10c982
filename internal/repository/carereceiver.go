package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sanjshine99/carepath/internal/model"
)

// ErrCareReceiverNotFound is returned when a lookup by id matches no row.
var ErrCareReceiverNotFound = errors.New("care receiver not found")

// CareReceiverRepository handles care-receiver data access.
type CareReceiverRepository struct {
	db *DB
}

// NewCareReceiverRepository creates a new care-receiver repository.
func NewCareReceiverRepository(db *DB) *CareReceiverRepository {
	return &CareReceiverRepository{db: db}
}

// Create inserts a care receiver together with its visit templates.
func (r *CareReceiverRepository) Create(ctx context.Context, receiver *model.CareReceiver) error {
	return r.db.GORM.WithContext(ctx).Create(receiver).Error
}

// GetByID retrieves a care receiver, preloading its visit templates ordered
// by visit_number.
func (r *CareReceiverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CareReceiver, error) {
	var receiver model.CareReceiver
	err := r.db.GORM.WithContext(ctx).
		Preload("VisitTemplates", func(db *gorm.DB) *gorm.DB {
			return db.Order("visit_number ASC")
		}).
		First(&receiver, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCareReceiverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get care receiver: %w", err)
	}
	return &receiver, nil
}

// ListByIDs retrieves care receivers by id, preserving no particular order
// (callers that need the bulk-mode "order supplied" guarantee re-order by
// the ids slice themselves).
func (r *CareReceiverRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.CareReceiver, error) {
	var receivers []model.CareReceiver
	err := r.db.GORM.WithContext(ctx).
		Preload("VisitTemplates", func(db *gorm.DB) *gorm.DB {
			return db.Order("visit_number ASC")
		}).
		Where("id IN ?", ids).
		Find(&receivers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list care receivers: %w", err)
	}
	return receivers, nil
}

// ListActive returns every active care receiver with visit templates preloaded.
func (r *CareReceiverRepository) ListActive(ctx context.Context) ([]model.CareReceiver, error) {
	var receivers []model.CareReceiver
	err := r.db.GORM.WithContext(ctx).
		Preload("VisitTemplates", func(db *gorm.DB) *gorm.DB {
			return db.Order("visit_number ASC")
		}).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&receivers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active care receivers: %w", err)
	}
	return receivers, nil
}

// Update persists changes to an existing care receiver.
func (r *CareReceiverRepository) Update(ctx context.Context, receiver *model.CareReceiver) error {
	return r.db.GORM.WithContext(ctx).Save(receiver).Error
}

// ReplaceVisitTemplates atomically replaces every visit template owned by
// receiverID. It does not check the visit_number prefix invariant (1..k with
// no gaps or duplicates); the templates are written as given.
func (r *CareReceiverRepository) ReplaceVisitTemplates(ctx context.Context, receiverID uuid.UUID, templates []model.VisitTemplate) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("care_receiver_id = ?", receiverID).Delete(&model.VisitTemplate{}).Error; err != nil {
			return fmt.Errorf("failed to clear visit templates: %w", err)
		}
		for i := range templates {
			templates[i].CareReceiverID = receiverID
		}
		if len(templates) == 0 {
			return nil
		}
		if err := tx.Create(&templates).Error; err != nil {
			return fmt.Errorf("failed to insert visit templates: %w", err)
		}
		return nil
	})
}
