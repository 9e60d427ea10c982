package service

import (
	"github.com/sanjshine99/carepath/internal/model"
)

// OccursOn reports whether visit template v recurs on day d, given the
// owning care receiver's created-at date to use as the recurrence anchor
// when the template itself sets none.
func OccursOn(v *model.VisitTemplate, d model.TimeOnlyDate, receiverCreatedAt model.TimeOnlyDate) bool {
	if !v.RecursOn(d.Weekday()) {
		return false
	}
	if v.Recurrence == model.RecurrenceWeekly {
		return true
	}

	anchor := receiverCreatedAt
	if v.RecurrenceStart != nil {
		anchor = *v.RecurrenceStart
	}

	interval := v.RecurrenceInterval
	if interval < 1 {
		interval = 1
	}

	daysDiff := d.DaysSince(anchor)
	if daysDiff < 0 {
		return false
	}
	weeks := daysDiff / 7
	return weeks%interval == 0
}
