package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/model"
	"github.com/sanjshine99/carepath/internal/repository"
)

// availabilityRepository defines the data access the Availability Store needs.
type availabilityRepository interface {
	CurrentFor(ctx context.Context, careGiverID uuid.UUID, atDate model.TimeOnlyDate) (*model.AvailabilityVersion, error)
	At(ctx context.Context, careGiverID uuid.UUID, atDate model.TimeOnlyDate) (*model.AvailabilityVersion, error)
	History(ctx context.Context, careGiverID uuid.UUID) ([]model.AvailabilityVersion, error)
	CreateVersion(ctx context.Context, next *model.AvailabilityVersion) error
}

// EffectiveAvailability is the resolved weekly pattern and time-off a care
// giver is subject to on a given date, regardless of whether it came from a
// versioned record or the legacy inline fallback.
type EffectiveAvailability struct {
	Schedule  model.WeeklySchedule
	TimeOff   []model.TimeOffWindow
	VersionID *uuid.UUID // nil when synthesized from the inline fallback
}

// AvailabilityStore is the versioned weekly-schedule and holiday history per
// care giver, with a read-path fallback onto the legacy inline pattern. The
// versioned store is the single source of truth; the fallback remains only
// for read-paths during migration.
type AvailabilityStore struct {
	repo availabilityRepository
}

// NewAvailabilityStore creates a new AvailabilityStore.
func NewAvailabilityStore(repo availabilityRepository) *AvailabilityStore {
	return &AvailabilityStore{repo: repo}
}

// CurrentFor resolves the care giver's effective availability at atDate,
// falling back to the inline CareGiver pattern when no version exists.
func (s *AvailabilityStore) CurrentFor(ctx context.Context, cg *model.CareGiver, atDate model.TimeOnlyDate) (*EffectiveAvailability, error) {
	version, err := s.repo.CurrentFor(ctx, cg.ID, atDate)
	if errors.Is(err, repository.ErrAvailabilityVersionNotFound) {
		return s.inlineFallback(cg)
	}
	if err != nil {
		return nil, err
	}
	return s.fromVersion(version)
}

// At resolves the care giver's availability at atDate for historical audit,
// ignoring is_active.
func (s *AvailabilityStore) At(ctx context.Context, cg *model.CareGiver, atDate model.TimeOnlyDate) (*EffectiveAvailability, error) {
	version, err := s.repo.At(ctx, cg.ID, atDate)
	if errors.Is(err, repository.ErrAvailabilityVersionNotFound) {
		return s.inlineFallback(cg)
	}
	if err != nil {
		return nil, err
	}
	return s.fromVersion(version)
}

// History returns every version for a care giver, newest first.
func (s *AvailabilityStore) History(ctx context.Context, careGiverID uuid.UUID) ([]model.AvailabilityVersion, error) {
	return s.repo.History(ctx, careGiverID)
}

// CreateVersion atomically closes the currently open version and inserts a
// new one.
func (s *AvailabilityStore) CreateVersion(ctx context.Context, careGiverID uuid.UUID, schedule model.WeeklySchedule, timeOff []model.TimeOffWindow, effectiveFrom model.TimeOnlyDate) (*model.AvailabilityVersion, error) {
	next := &model.AvailabilityVersion{
		CareGiverID:   careGiverID,
		EffectiveFrom: effectiveFrom,
	}
	if err := next.SetSchedule(schedule); err != nil {
		return nil, err
	}
	if err := next.SetTimeOff(timeOff); err != nil {
		return nil, err
	}
	if err := s.repo.CreateVersion(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to create availability version: %w", err)
	}
	return next, nil
}

// OnTimeOff reports whether date falls inside any time-off window.
func OnTimeOff(avail *EffectiveAvailability, date model.TimeOnlyDate) bool {
	for _, w := range avail.TimeOff {
		if w.Covers(date) {
			return true
		}
	}
	return false
}

// AvailableAt reports whether some slot on day fully contains [start,end].
func AvailableAt(avail *EffectiveAvailability, day model.TimeOnlyDate, startMinutes, endMinutes int) bool {
	return avail.Schedule.HasSlotContaining(day.Weekday(), startMinutes, endMinutes)
}

func (s *AvailabilityStore) fromVersion(version *model.AvailabilityVersion) (*EffectiveAvailability, error) {
	schedule, err := version.Schedule()
	if err != nil {
		return nil, err
	}
	timeOff, err := version.TimeOff()
	if err != nil {
		return nil, err
	}
	id := version.ID
	return &EffectiveAvailability{Schedule: schedule, TimeOff: timeOff, VersionID: &id}, nil
}

// inlineFallback synthesizes a read-only pseudo-version from the legacy
// inline weekly pattern and holiday list on the CareGiver record.
func (s *AvailabilityStore) inlineFallback(cg *model.CareGiver) (*EffectiveAvailability, error) {
	schedule, err := cg.Schedule()
	if err != nil {
		return nil, err
	}
	holidays, err := cg.Holidays()
	if err != nil {
		return nil, err
	}
	return &EffectiveAvailability{Schedule: schedule, TimeOff: holidays, VersionID: nil}, nil
}
