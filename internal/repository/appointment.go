package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sanjshine99/carepath/internal/model"
)

// ErrAppointmentNotFound is returned when a lookup by id matches no row.
var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentFilter narrows AppointmentRepository.List.
type AppointmentFilter struct {
	StartDate      *model.TimeOnlyDate
	EndDate        *model.TimeOnlyDate
	CareGiverID    *uuid.UUID
	CareReceiverID *uuid.UUID
	Status         *model.AppointmentStatus
	Page           int
	Limit          int
}

// AppointmentRepository handles appointment data access.
type AppointmentRepository struct {
	db *DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts a new appointment.
func (r *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	return r.db.GORM.WithContext(ctx).Create(apt).Error
}

// GetByID retrieves an appointment by id.
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var apt model.Appointment
	err := r.db.GORM.WithContext(ctx).
		Preload("CareReceiver").
		Preload("CareGiver").
		First(&apt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

// Update persists changes to an existing appointment.
func (r *AppointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	return r.db.GORM.WithContext(ctx).Save(apt).Error
}

// Delete removes an appointment by id.
func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.GORM.WithContext(ctx).Delete(&model.Appointment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete appointment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// List returns a paginated, filtered appointment list.
func (r *AppointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, int64, error) {
	query := r.db.GORM.WithContext(ctx).Model(&model.Appointment{})
	query = applyAppointmentFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	var appointments []model.Appointment
	err := query.
		Preload("CareReceiver").
		Preload("CareGiver").
		Order("date ASC, start_time ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

// ForCareGiverOnDay returns every appointment (in any status) for cgID on day,
// used by the Feasibility Oracle's daily-cap, overlap, and travel-time checks.
func (r *AppointmentRepository) ForCareGiverOnDay(ctx context.Context, cgID uuid.UUID, day model.TimeOnlyDate) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.GORM.WithContext(ctx).
		Preload("CareReceiver").
		Where("date = ? AND (care_giver_id = ? OR secondary_care_giver_id = ?)", day.Time(), cgID, cgID).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list care giver's appointments for day: %w", err)
	}
	return appointments, nil
}

// InWindowByStatuses returns every appointment in the given UTC window whose
// status is one of statuses, used by the Validator.
func (r *AppointmentRepository) InWindowByStatuses(ctx context.Context, start, end model.TimeOnlyDate, statuses []model.AppointmentStatus) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.GORM.WithContext(ctx).
		Preload("CareReceiver").
		Preload("CareGiver").
		Where("date >= ? AND date <= ? AND status IN ?", start.Time(), end.Time(), statuses).
		Order("date ASC, visit_number ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments in window: %w", err)
	}
	return appointments, nil
}

// ExistsForVisit reports whether an appointment already exists for the exact
// (receiver, date, visit_number) tuple, which is what makes repeated
// generate runs over the same range insert nothing new.
func (r *AppointmentRepository) ExistsForVisit(ctx context.Context, receiverID uuid.UUID, day model.TimeOnlyDate, visitNumber int) (bool, error) {
	var count int64
	err := r.db.GORM.WithContext(ctx).Model(&model.Appointment{}).
		Where("care_receiver_id = ? AND date = ? AND visit_number = ? AND status != ?",
			receiverID, day.Time(), visitNumber, model.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing appointment: %w", err)
	}
	return count > 0, nil
}

// AppointmentStats is the per-status breakdown backing the stats endpoint
// GET /schedule/stats.
type AppointmentStats struct {
	Total    int64
	ByStatus map[model.AppointmentStatus]int64
}

// Stats counts appointments in [start, end] grouped by status, for the
// driving stats endpoint's completion-rate calculation.
func (r *AppointmentRepository) Stats(ctx context.Context, start, end model.TimeOnlyDate) (*AppointmentStats, error) {
	var rows []struct {
		Status model.AppointmentStatus
		Count  int64
	}
	err := r.db.GORM.WithContext(ctx).Model(&model.Appointment{}).
		Select("status, count(*) as count").
		Where("date >= ? AND date <= ?", start.Time(), end.Time()).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate appointment stats: %w", err)
	}

	stats := &AppointmentStats{ByStatus: make(map[model.AppointmentStatus]int64, len(rows))}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}
	return stats, nil
}

func applyAppointmentFilter(query *gorm.DB, filter AppointmentFilter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where("date >= ?", filter.StartDate.Time())
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", filter.EndDate.Time())
	}
	if filter.CareGiverID != nil {
		query = query.Where("care_giver_id = ? OR secondary_care_giver_id = ?", *filter.CareGiverID, *filter.CareGiverID)
	}
	if filter.CareReceiverID != nil {
		query = query.Where("care_receiver_id = ?", *filter.CareReceiverID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}
