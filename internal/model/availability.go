package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sanjshine99/carepath/internal/geo"
)

// Slot is a single working window expressed as HH:MM clock times.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether [start,end] (minutes from midnight) falls
// entirely within the slot.
func (s Slot) Contains(start, end int) bool {
	slotStart, err := geo.ParseHHMM(s.Start)
	if err != nil {
		return false
	}
	slotEnd, err := geo.ParseHHMM(s.End)
	if err != nil {
		return false
	}
	return start >= slotStart && end <= slotEnd
}

// WeeklySchedule maps each weekday to its working slots. A weekday absent
// from the map, or mapped to an empty slice, means the care giver does not
// work that day.
type WeeklySchedule map[geo.Weekday][]Slot

// HasSlotContaining reports whether some slot on day fully contains [start,end].
func (ws WeeklySchedule) HasSlotContaining(day geo.Weekday, start, end int) bool {
	for _, slot := range ws[day] {
		if slot.Contains(start, end) {
			return true
		}
	}
	return false
}

// HasAnySlot reports whether the care giver works at all on day.
func (ws WeeklySchedule) HasAnySlot(day geo.Weekday) bool {
	return len(ws[day]) > 0
}

// TimeOffWindow is a holiday or leave interval, inclusive of both endpoints
// at day resolution.
type TimeOffWindow struct {
	Start  TimeOnlyDate `json:"start"`
	End    TimeOnlyDate `json:"end"`
	Reason string       `json:"reason,omitempty"`
}

// Covers reports whether day falls within the window, inclusive of both endpoints.
func (w TimeOffWindow) Covers(day TimeOnlyDate) bool {
	return !day.Before(w.Start) && !day.After(w.End)
}

// AvailabilityVersion is an append-only record of a care giver's weekly
// pattern and time-off valid over [EffectiveFrom, EffectiveTo], inclusive of
// both endpoints at day resolution.
type AvailabilityVersion struct {
	BaseModel
	CareGiverID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"care_giver_id"`
	Version       int           `gorm:"not null" json:"version"`
	EffectiveFrom TimeOnlyDate  `gorm:"type:date;not null;index" json:"effective_from"`
	EffectiveTo   *TimeOnlyDate `gorm:"type:date" json:"effective_to,omitempty"`
	IsActive      bool          `gorm:"default:true" json:"is_active"`

	ScheduleData datatypes.JSON `gorm:"column:schedule;type:jsonb;not null;default:'{}'" json:"-"`
	TimeOffData  datatypes.JSON `gorm:"column:time_off;type:jsonb;not null;default:'[]'" json:"-"`
}

func (AvailabilityVersion) TableName() string {
	return "availability_versions"
}

// Schedule decodes the versioned weekly pattern.
func (v *AvailabilityVersion) Schedule() (WeeklySchedule, error) {
	if len(v.ScheduleData) == 0 {
		return WeeklySchedule{}, nil
	}
	var schedule WeeklySchedule
	if err := json.Unmarshal(v.ScheduleData, &schedule); err != nil {
		return nil, fmt.Errorf("decoding availability schedule: %w", err)
	}
	return schedule, nil
}

// SetSchedule encodes the versioned weekly pattern.
func (v *AvailabilityVersion) SetSchedule(schedule WeeklySchedule) error {
	b, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encoding availability schedule: %w", err)
	}
	v.ScheduleData = b
	return nil
}

// TimeOff decodes the versioned time-off windows.
func (v *AvailabilityVersion) TimeOff() ([]TimeOffWindow, error) {
	if len(v.TimeOffData) == 0 {
		return nil, nil
	}
	var windows []TimeOffWindow
	if err := json.Unmarshal(v.TimeOffData, &windows); err != nil {
		return nil, fmt.Errorf("decoding availability time-off: %w", err)
	}
	return windows, nil
}

// SetTimeOff encodes the versioned time-off windows.
func (v *AvailabilityVersion) SetTimeOff(windows []TimeOffWindow) error {
	b, err := json.Marshal(windows)
	if err != nil {
		return fmt.Errorf("encoding availability time-off: %w", err)
	}
	v.TimeOffData = b
	return nil
}

// Open reports whether this version has no end (the current open version).
func (v *AvailabilityVersion) Open() bool {
	return v.EffectiveTo == nil
}

// CoversDate reports whether day falls within [EffectiveFrom, EffectiveTo].
func (v *AvailabilityVersion) CoversDate(day TimeOnlyDate) bool {
	if day.Before(v.EffectiveFrom) {
		return false
	}
	if v.EffectiveTo != nil && day.After(*v.EffectiveTo) {
		return false
	}
	return true
}
