// Package service implements the scheduling core: the Availability Store,
// Feasibility Oracle, Assignment Engine, Validator, Diagnostic Analyzer,
// Settings cache, and the Orchestrator that drives them over a date range.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanjshine99/carepath/internal/model"
)

var (
	// ErrWeightsMustSumToOne is returned when a settings update's three
	// scoring weights do not sum to 1.0 within tolerance.
	ErrWeightsMustSumToOne = errors.New("preferred_caregiver_weight + distance_weight + availability_weight must sum to 1.0")
	// ErrWorkingHoursInverted is returned when the working-hours window ends
	// at or before it starts.
	ErrWorkingHoursInverted = errors.New("working hours end must be strictly after start")
)

// systemSettingsRepository defines the data access this service needs.
type systemSettingsRepository interface {
	GetOrCreate(ctx context.Context) (*model.SystemSettings, error)
	Update(ctx context.Context, settings *model.SystemSettings) error
}

// settingsCacheEntry pairs a cached snapshot with when it was fetched.
// Expired entries are refreshed from source on the next read rather than
// evicted proactively.
type settingsCacheEntry struct {
	settings  *model.SystemSettings
	fetchedAt time.Time
}

// SettingsService reads the SystemSettings singleton, caching it in memory
// for the configured TTL (default 60s) and invalidating on write.
type SettingsService struct {
	repo systemSettingsRepository
	ttl  time.Duration

	mu    sync.RWMutex
	entry *settingsCacheEntry
}

// NewSettingsService creates a SettingsService with the given cache TTL.
func NewSettingsService(repo systemSettingsRepository, ttl time.Duration) *SettingsService {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &SettingsService{repo: repo, ttl: ttl}
}

// Get returns the cached settings snapshot, refreshing from the repository
// when the cache is empty or older than the TTL.
func (s *SettingsService) Get(ctx context.Context) (*model.SystemSettings, error) {
	if cached, ok := s.cached(); ok {
		return cached, nil
	}

	settings, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entry = &settingsCacheEntry{settings: settings, fetchedAt: time.Now()}
	s.mu.Unlock()

	return settings, nil
}

func (s *SettingsService) cached() (*model.SystemSettings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return nil, false
	}
	if time.Since(s.entry.fetchedAt) > s.ttl {
		return nil, false
	}
	return s.entry.settings, true
}

// UpdateSettingsInput carries the subset of fields a caller wishes to change.
type UpdateSettingsInput struct {
	MaxDistanceKm            *decimal.Decimal
	TravelTimeBufferMinutes  *int
	MaxAppointmentsPerDay    *int
	WorkingHoursStart        *string
	WorkingHoursEnd          *string
	PreferredCareGiverWeight *decimal.Decimal
	DistanceWeight           *decimal.Decimal
	AvailabilityWeight       *decimal.Decimal
}

// Update validates and persists a settings change, then invalidates the cache.
func (s *SettingsService) Update(ctx context.Context, input UpdateSettingsInput) (*model.SystemSettings, error) {
	settings, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if input.MaxDistanceKm != nil {
		settings.MaxDistanceKm = *input.MaxDistanceKm
	}
	if input.TravelTimeBufferMinutes != nil {
		settings.TravelTimeBufferMinutes = *input.TravelTimeBufferMinutes
	}
	if input.MaxAppointmentsPerDay != nil {
		settings.MaxAppointmentsPerDay = *input.MaxAppointmentsPerDay
	}
	if input.WorkingHoursStart != nil {
		settings.WorkingHoursStart = *input.WorkingHoursStart
	}
	if input.WorkingHoursEnd != nil {
		settings.WorkingHoursEnd = *input.WorkingHoursEnd
	}
	if input.PreferredCareGiverWeight != nil {
		settings.PreferredCareGiverWeight = *input.PreferredCareGiverWeight
	}
	if input.DistanceWeight != nil {
		settings.DistanceWeight = *input.DistanceWeight
	}
	if input.AvailabilityWeight != nil {
		settings.AvailabilityWeight = *input.AvailabilityWeight
	}

	if settings.WorkingHoursEnd <= settings.WorkingHoursStart {
		return nil, ErrWorkingHoursInverted
	}
	if !settings.WeightsSumToOne() {
		return nil, ErrWeightsMustSumToOne
	}

	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entry = nil
	s.mu.Unlock()

	return settings, nil
}
