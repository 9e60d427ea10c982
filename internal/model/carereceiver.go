package model

import (
	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/geo"
)

// CareReceiver is a person receiving domiciliary care, with an ordered set
// of recurring visit templates.
type CareReceiver struct {
	BaseModel
	FirstName string  `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string  `gorm:"type:varchar(100);not null" json:"last_name"`
	Gender    Gender  `gorm:"type:varchar(20);not null" json:"gender"`
	HomeLon   float64 `gorm:"type:double precision;not null" json:"home_lon"`
	HomeLat   float64 `gorm:"type:double precision;not null" json:"home_lat"`

	GenderPreference GenderPreference `gorm:"type:varchar(20);not null;default:'No Preference'" json:"gender_preference"`

	// PreferredCareGiverID is a back-reference, never ownership: deleting
	// the referenced care giver does not cascade onto this record.
	PreferredCareGiverID *uuid.UUID `gorm:"type:uuid;index" json:"preferred_care_giver_id,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	VisitTemplates []VisitTemplate `gorm:"foreignKey:CareReceiverID" json:"visit_templates,omitempty"`
}

func (CareReceiver) TableName() string {
	return "care_receivers"
}

// FullName returns the display name used in diagnostic reports.
func (r *CareReceiver) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Home returns the care receiver's home location as a geo.Point.
func (r *CareReceiver) Home() geo.Point {
	return geo.Point{Lon: r.HomeLon, Lat: r.HomeLat}
}

// VisitTemplate is a recurring visit obligation owned by a CareReceiver.
// VisitNumber is 1-indexed, sequential, and unique within the receiver;
// callers must validate the full prefix invariant before persisting.
type VisitTemplate struct {
	BaseModel
	CareReceiverID uuid.UUID `gorm:"type:uuid;not null;index" json:"care_receiver_id"`
	VisitNumber    int       `gorm:"not null" json:"visit_number"`

	PreferredTime   string `gorm:"type:varchar(5);not null" json:"preferred_time"`
	DurationMinutes int    `gorm:"not null" json:"duration_minutes"`

	Requirements SkillSet `gorm:"type:text[]" json:"requirements"`
	DoubleHanded bool     `gorm:"default:false" json:"double_handed"`

	// Priority is an informational ordering hint (1-5); the assignment
	// engine does not use it to break scheduling ties.
	Priority int `gorm:"default:3" json:"priority"`

	DaysOfWeek WeekdaySet `gorm:"type:text[];not null" json:"days_of_week"`

	Recurrence         RecurrenceType `gorm:"type:varchar(20);not null;default:'weekly'" json:"recurrence"`
	RecurrenceInterval int            `gorm:"not null;default:1" json:"recurrence_interval"`
	RecurrenceStart    *TimeOnlyDate  `gorm:"type:date" json:"recurrence_start_date,omitempty"`
}

func (VisitTemplate) TableName() string {
	return "visit_templates"
}

// EndTime returns the visit's end clock time, erroring if preferred time
// plus duration would cross midnight.
func (v *VisitTemplate) EndTime() (string, error) {
	return geo.HHMMAdd(v.PreferredTime, v.DurationMinutes)
}

// RecursOn reports whether the template occurs on weekday w.
func (v *VisitTemplate) RecursOn(w geo.Weekday) bool {
	return v.DaysOfWeek.Contains(w)
}
