package model

import (
	"github.com/shopspring/decimal"
)

// SystemSettings is the single-row configuration singleton consulted by the
// Feasibility Oracle, Assignment Engine, and Diagnostic Analyzer.
type SystemSettings struct {
	BaseModel

	MaxDistanceKm           decimal.Decimal `gorm:"type:decimal(6,2);not null;default:20.00" json:"max_distance_km"`
	TravelTimeBufferMinutes int             `gorm:"not null;default:15" json:"travel_time_buffer_minutes"`
	MaxAppointmentsPerDay   int             `gorm:"not null;default:8" json:"max_appointments_per_day"`

	// Working-hours window is informational only; no component enforces it.
	WorkingHoursStart string `gorm:"type:varchar(5);default:'08:00'" json:"working_hours_start"`
	WorkingHoursEnd   string `gorm:"type:varchar(5);default:'18:00'" json:"working_hours_end"`

	// The three weights are validated to sum to 1.0, but only the
	// preferred-care-giver bonus is presently wired into scoring; see the
	// open question recorded in DESIGN.md.
	PreferredCareGiverWeight decimal.Decimal `gorm:"type:decimal(4,3);not null;default:0.200" json:"preferred_caregiver_weight"`
	DistanceWeight           decimal.Decimal `gorm:"type:decimal(4,3);not null;default:0.500" json:"distance_weight"`
	AvailabilityWeight       decimal.Decimal `gorm:"type:decimal(4,3);not null;default:0.300" json:"availability_weight"`
}

func (SystemSettings) TableName() string {
	return "system_settings"
}

// DefaultSettings returns the seed row created the first time Settings is
// read with none yet persisted.
func DefaultSettings() *SystemSettings {
	return &SystemSettings{
		MaxDistanceKm:            decimal.NewFromInt(20),
		TravelTimeBufferMinutes:  15,
		MaxAppointmentsPerDay:    8,
		WorkingHoursStart:        "08:00",
		WorkingHoursEnd:          "18:00",
		PreferredCareGiverWeight: decimal.NewFromFloat(0.2),
		DistanceWeight:           decimal.NewFromFloat(0.5),
		AvailabilityWeight:       decimal.NewFromFloat(0.3),
	}
}

// WeightsSumToOne reports whether the three scoring weights sum to 1.0
// within a 0.01 tolerance.
func (s *SystemSettings) WeightsSumToOne() bool {
	sum := s.PreferredCareGiverWeight.Add(s.DistanceWeight).Add(s.AvailabilityWeight)
	tolerance := decimal.NewFromFloat(0.01)
	diff := sum.Sub(decimal.NewFromInt(1)).Abs()
	return diff.LessThanOrEqual(tolerance)
}
