package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sanjshine99/carepath/internal/geo"
)

// Appointment is a materialized, dated instance of a VisitTemplate with
// care-giver(s) assigned.
type Appointment struct {
	BaseModel
	CareReceiverID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"care_receiver_id"`
	CareGiverID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"care_giver_id"`
	SecondaryCareGiverID *uuid.UUID `gorm:"type:uuid;index" json:"secondary_care_giver_id,omitempty"`

	Date      TimeOnlyDate `gorm:"type:date;not null;index" json:"date"`
	StartTime string       `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string       `gorm:"type:varchar(5);not null" json:"end_time"`
	Duration  int          `gorm:"not null" json:"duration"`

	VisitNumber  int      `gorm:"not null" json:"visit_number"`
	Requirements SkillSet `gorm:"type:text[]" json:"requirements"`
	DoubleHanded bool     `gorm:"default:false" json:"double_handed"`
	Priority     int      `gorm:"default:3" json:"priority"`

	Status AppointmentStatus `gorm:"type:varchar(30);not null;default:'scheduled';index" json:"status"`

	CancellationReason string        `gorm:"type:text" json:"cancellation_reason,omitempty"`
	InvalidationReason string        `gorm:"type:text" json:"invalidation_reason,omitempty"`
	InvalidatedAt      *TimeOnlyDate `gorm:"type:date" json:"invalidated_at,omitempty"`

	// Scheduling snapshot: the availability version in force at creation,
	// and a copy of the specific weekday slots honored, so the record
	// remains auditable after the care giver's schedule later changes.
	SnapshotVersionID *uuid.UUID     `gorm:"type:uuid" json:"snapshot_version_id,omitempty"`
	SnapshotSlotData  datatypes.JSON `gorm:"column:snapshot_slots;type:jsonb;default:'[]'" json:"-"`

	CareReceiver *CareReceiver `gorm:"foreignKey:CareReceiverID" json:"care_receiver,omitempty"`
	CareGiver    *CareGiver    `gorm:"foreignKey:CareGiverID" json:"care_giver,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// SnapshotSlots decodes the scheduling snapshot's weekday slots.
func (a *Appointment) SnapshotSlots() ([]Slot, error) {
	if len(a.SnapshotSlotData) == 0 {
		return nil, nil
	}
	var slots []Slot
	if err := json.Unmarshal(a.SnapshotSlotData, &slots); err != nil {
		return nil, fmt.Errorf("decoding scheduling snapshot: %w", err)
	}
	return slots, nil
}

// SetSnapshotSlots encodes the scheduling snapshot's weekday slots.
func (a *Appointment) SetSnapshotSlots(slots []Slot) error {
	b, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encoding scheduling snapshot: %w", err)
	}
	a.SnapshotSlotData = b
	return nil
}

// Overlaps reports whether [start,end) overlaps this appointment's window on
// the same day, under a half-open interval (touching endpoints do not
// overlap).
func (a *Appointment) Overlaps(startMinutes, endMinutes int) bool {
	aStart, err1 := geo.ParseHHMM(a.StartTime)
	aEnd, err2 := geo.ParseHHMM(a.EndTime)
	if err1 != nil || err2 != nil {
		return false
	}
	return startMinutes < aEnd && aStart < endMinutes
}

// HasCareGiver reports whether cgID is assigned to this appointment in
// either role.
func (a *Appointment) HasCareGiver(cgID uuid.UUID) bool {
	if a.CareGiverID == cgID {
		return true
	}
	return a.SecondaryCareGiverID != nil && *a.SecondaryCareGiverID == cgID
}

// ReceiverLocation is a convenience accessor used by travel-time checks;
// returns a zero point if the care receiver relation was not preloaded.
func (a *Appointment) ReceiverLocation() geo.Point {
	if a.CareReceiver == nil {
		return geo.Point{}
	}
	return a.CareReceiver.Home()
}
