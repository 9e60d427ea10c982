package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/model"
)

// validatorCareReceiverRepository defines the data access the Validator
// needs to confirm a care receiver still exists and is active.
type validatorCareReceiverRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.CareReceiver, error)
}

// validatorCareGiverRepository defines the data access the Validator needs
// to confirm a care giver still exists, is active, and is not on holiday.
type validatorCareGiverRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.CareGiver, error)
}

// validatorAppointmentRepository defines the data access the Validator
// needs to scan and update appointments.
type validatorAppointmentRepository interface {
	InWindowByStatuses(ctx context.Context, start, end model.TimeOnlyDate, statuses []model.AppointmentStatus) ([]model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
}

// ValidationReport summarizes one Validator run.
type ValidationReport struct {
	Invalidated []uuid.UUID
	Restored    []uuid.UUID
	Unchanged   int
}

// Validator scans scheduled/needs_reassignment appointments in a window and
// flags those whose preconditions have since broken. Deliberately not
// checked: weekly-pattern changes, preferred-time/duration changes,
// skill-requirement changes — left for manual review.
type Validator struct {
	receivers    validatorCareReceiverRepository
	careGivers   validatorCareGiverRepository
	appointments validatorAppointmentRepository
	availability *AvailabilityStore
}

// NewValidator creates a new Validator.
func NewValidator(
	receivers validatorCareReceiverRepository,
	careGivers validatorCareGiverRepository,
	appointments validatorAppointmentRepository,
	availability *AvailabilityStore,
) *Validator {
	return &Validator{
		receivers:    receivers,
		careGivers:   careGivers,
		appointments: appointments,
		availability: availability,
	}
}

// Run scans every scheduled/needs_reassignment appointment in [start, end]
// and applies status transitions. Idempotent: a second run over unchanged
// state produces no further transitions.
func (v *Validator) Run(ctx context.Context, start, end model.TimeOnlyDate) (*ValidationReport, error) {
	appointments, err := v.appointments.InWindowByStatuses(ctx, start, end, []model.AppointmentStatus{
		model.StatusScheduled,
		model.StatusNeedsReassignment,
	})
	if err != nil {
		return nil, fmt.Errorf("listing appointments to validate: %w", err)
	}

	report := &ValidationReport{}
	for i := range appointments {
		apt := &appointments[i]
		issues, err := v.issuesFor(ctx, apt)
		if err != nil {
			return nil, err
		}

		switch {
		case len(issues) > 0:
			apt.Status = model.StatusNeedsReassignment
			apt.InvalidationReason = strings.Join(issues, "; ")
			now := model.NewTimeOnlyDate(time.Now())
			apt.InvalidatedAt = &now
			if err := v.appointments.Update(ctx, apt); err != nil {
				return nil, fmt.Errorf("marking appointment needs_reassignment: %w", err)
			}
			report.Invalidated = append(report.Invalidated, apt.ID)

		case apt.Status == model.StatusNeedsReassignment:
			apt.Status = model.StatusScheduled
			apt.InvalidationReason = ""
			apt.InvalidatedAt = nil
			if err := v.appointments.Update(ctx, apt); err != nil {
				return nil, fmt.Errorf("restoring appointment to scheduled: %w", err)
			}
			report.Restored = append(report.Restored, apt.ID)

		default:
			report.Unchanged++
		}
	}

	return report, nil
}

func (v *Validator) issuesFor(ctx context.Context, apt *model.Appointment) ([]string, error) {
	var issues []string

	receiver, err := v.receivers.GetByID(ctx, apt.CareReceiverID)
	if err != nil || !receiver.IsActive {
		issues = append(issues, "care receiver no longer exists or is inactive")
	}

	if issue, err := v.careGiverIssue(ctx, apt.CareGiverID, apt.Date); err != nil {
		return nil, err
	} else if issue != "" {
		issues = append(issues, issue)
	}

	if apt.SecondaryCareGiverID != nil {
		if issue, err := v.careGiverIssue(ctx, *apt.SecondaryCareGiverID, apt.Date); err != nil {
			return nil, err
		} else if issue != "" {
			issues = append(issues, "secondary: "+issue)
		}
	}

	if apt.DoubleHanded && apt.SecondaryCareGiverID == nil {
		issues = append(issues, "double-handed visit is missing a secondary care giver")
	}

	return issues, nil
}

func (v *Validator) careGiverIssue(ctx context.Context, cgID uuid.UUID, date model.TimeOnlyDate) (string, error) {
	cg, err := v.careGivers.GetByID(ctx, cgID)
	if err != nil {
		return "care giver no longer exists", nil
	}
	if !cg.IsActive {
		return "care giver is no longer active", nil
	}

	avail, err := v.availability.CurrentFor(ctx, cg, date)
	if err != nil {
		return "", err
	}
	if OnTimeOff(avail, date) {
		return fmt.Sprintf("%s is on time off", cg.FullName()), nil
	}
	return "", nil
}
