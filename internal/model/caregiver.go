package model

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/sanjshine99/carepath/internal/geo"
)

// CareGiver is a care worker available for assignment to visits.
type CareGiver struct {
	BaseModel
	FirstName string  `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string  `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     string  `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone     string  `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Gender    Gender  `gorm:"type:varchar(20);not null" json:"gender"`
	HomeLon   float64 `gorm:"type:double precision;not null" json:"home_lon"`
	HomeLat   float64 `gorm:"type:double precision;not null" json:"home_lat"`

	Skills SkillSet `gorm:"type:text[]" json:"skills"`

	CanDrive         bool `gorm:"default:true" json:"can_drive"`
	SingleHandedOnly bool `gorm:"default:false" json:"single_handed_only"`
	// MaxReceivers is a soft cap surfaced for operational reporting; the
	// assignment engine does not presently enforce it.
	MaxReceivers int `gorm:"default:0" json:"max_receivers"`

	// InlineSchedule and InlineHolidays are the legacy fallback pattern,
	// superseded by an AvailabilityVersion once one exists for this care
	// giver (see the Availability Store in the service package). Each is
	// stored as raw jsonb and decoded on demand via Schedule/Holidays.
	InlineSchedule datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"inline_schedule,omitempty"`
	InlineHolidays datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"inline_holidays,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

func (CareGiver) TableName() string {
	return "care_givers"
}

// Schedule decodes the inline weekly fallback pattern.
func (c *CareGiver) Schedule() (WeeklySchedule, error) {
	if len(c.InlineSchedule) == 0 {
		return WeeklySchedule{}, nil
	}
	var schedule WeeklySchedule
	if err := json.Unmarshal(c.InlineSchedule, &schedule); err != nil {
		return nil, fmt.Errorf("decoding inline schedule: %w", err)
	}
	return schedule, nil
}

// SetSchedule encodes the inline weekly fallback pattern.
func (c *CareGiver) SetSchedule(schedule WeeklySchedule) error {
	b, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encoding inline schedule: %w", err)
	}
	c.InlineSchedule = b
	return nil
}

// Holidays decodes the inline holiday fallback list.
func (c *CareGiver) Holidays() ([]TimeOffWindow, error) {
	if len(c.InlineHolidays) == 0 {
		return nil, nil
	}
	var windows []TimeOffWindow
	if err := json.Unmarshal(c.InlineHolidays, &windows); err != nil {
		return nil, fmt.Errorf("decoding inline holidays: %w", err)
	}
	return windows, nil
}

// SetHolidays encodes the inline holiday fallback list.
func (c *CareGiver) SetHolidays(windows []TimeOffWindow) error {
	b, err := json.Marshal(windows)
	if err != nil {
		return fmt.Errorf("encoding inline holidays: %w", err)
	}
	c.InlineHolidays = b
	return nil
}

// FullName returns the display name used in diagnostic reports.
func (c *CareGiver) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Home returns the care giver's home location as a geo.Point.
func (c *CareGiver) Home() geo.Point {
	return geo.Point{Lon: c.HomeLon, Lat: c.HomeLat}
}

// HasSkills reports whether the care giver's skill set is a superset of required.
func (c *CareGiver) HasSkills(required SkillSet) bool {
	return c.Skills.HasAll(required)
}
