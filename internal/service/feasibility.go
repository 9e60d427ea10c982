package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/geo"
	"github.com/sanjshine99/carepath/internal/model"
)

// feasibilityCareGiverRepository defines the data access the Feasibility
// Oracle needs for check 1 (existence & active).
type feasibilityCareGiverRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.CareGiver, error)
}

// feasibilityAppointmentRepository defines the data access the Feasibility
// Oracle needs for checks 4 through 7.
type feasibilityAppointmentRepository interface {
	ForCareGiverOnDay(ctx context.Context, cgID uuid.UUID, day model.TimeOnlyDate) ([]model.Appointment, error)
}

// FeasibilityResult is the outcome of a single is_available call.
type FeasibilityResult struct {
	Available bool
	Reason    string
	Conflicts []uuid.UUID
}

func available() FeasibilityResult {
	return FeasibilityResult{Available: true}
}

func infeasible(reason string, conflicts ...uuid.UUID) FeasibilityResult {
	return FeasibilityResult{Available: false, Reason: reason, Conflicts: conflicts}
}

// FeasibilityOracle answers "can care giver X take visit V on date D at
// [t0,t1]?", running seven ordered, short-circuiting checks.
type FeasibilityOracle struct {
	careGivers   feasibilityCareGiverRepository
	appointments feasibilityAppointmentRepository
	availability *AvailabilityStore
	settings     *SettingsService
	estimator    *geo.Estimator
}

// NewFeasibilityOracle creates a new FeasibilityOracle.
func NewFeasibilityOracle(
	careGivers feasibilityCareGiverRepository,
	appointments feasibilityAppointmentRepository,
	availability *AvailabilityStore,
	settings *SettingsService,
	estimator *geo.Estimator,
) *FeasibilityOracle {
	return &FeasibilityOracle{
		careGivers:   careGivers,
		appointments: appointments,
		availability: availability,
		settings:     settings,
		estimator:    estimator,
	}
}

// IsAvailable runs the seven ordered checks and reports the first failure,
// or availability if every check passes.
func (o *FeasibilityOracle) IsAvailable(
	ctx context.Context,
	cgID uuid.UUID,
	date model.TimeOnlyDate,
	startMinutes, endMinutes int,
	receiverLocation geo.Point,
	excludeApt *uuid.UUID,
	cache *geo.TravelCache,
) (FeasibilityResult, error) {
	// 1. Existence & active.
	cg, err := o.careGivers.GetByID(ctx, cgID)
	if err != nil {
		return infeasible("care giver not found"), nil
	}
	if !cg.IsActive {
		return infeasible("care giver is not active"), nil
	}

	// 2. Holiday.
	avail, err := o.availability.CurrentFor(ctx, cg, date)
	if err != nil {
		return FeasibilityResult{}, err
	}
	if OnTimeOff(avail, date) {
		return infeasible("care giver is on time off"), nil
	}

	// 3. Weekly pattern.
	if !AvailableAt(avail, date, startMinutes, endMinutes) {
		return infeasible("care giver does not work that slot"), nil
	}

	settings, err := o.settings.Get(ctx)
	if err != nil {
		return FeasibilityResult{}, err
	}

	dayAppointments, err := o.appointments.ForCareGiverOnDay(ctx, cgID, date)
	if err != nil {
		return FeasibilityResult{}, err
	}
	active := activeAppointments(dayAppointments, excludeApt)

	// 4. Daily cap.
	if len(active) >= settings.MaxAppointmentsPerDay {
		return infeasible("care giver is at or above the daily appointment cap"), nil
	}

	// 5. Intra-day overlap.
	for _, apt := range active {
		if apt.Overlaps(startMinutes, endMinutes) {
			return infeasible("overlaps an existing appointment", apt.ID), nil
		}
	}

	// 6. Travel time before: the latest appointment ending at or before start.
	if prior := latestEndingBy(active, startMinutes); prior != nil {
		if ok, reason := o.checkTravelGap(ctx, prior.ReceiverLocation(), receiverLocation, priorEndMinutes(prior), startMinutes, settings.TravelTimeBufferMinutes, cache, "insufficient travel time from previous"); !ok {
			return infeasible(reason, prior.ID), nil
		}
	}

	// 7. Travel time after: the earliest appointment starting at or after end.
	if next := earliestStartingAt(active, endMinutes); next != nil {
		nextStart, err := geo.ParseHHMM(next.StartTime)
		if err != nil {
			return infeasible("care giver has an appointment with an unparseable start time", next.ID), nil
		}
		if ok, reason := o.checkTravelGap(ctx, receiverLocation, next.ReceiverLocation(), endMinutes, nextStart, settings.TravelTimeBufferMinutes, cache, "insufficient travel time to next"); !ok {
			return infeasible(reason, next.ID), nil
		}
	}

	return available(), nil
}

// checkTravelGap enforces gap >= travel_time(from, to) + buffer, skipping
// silently when either endpoint lacks a geolocation. reason is the literal
// text returned on failure, distinct for the before- and after-visit checks.
func (o *FeasibilityOracle) checkTravelGap(ctx context.Context, from, to geo.Point, fromMinutes, toMinutes, bufferMinutes int, cache *geo.TravelCache, reason string) (bool, string) {
	if from.IsZero() || to.IsZero() {
		return true, ""
	}
	gap := toMinutes - fromMinutes
	required := o.estimator.TravelTimeMinutes(ctx, from, to, cache) + bufferMinutes
	if gap < required {
		return false, reason
	}
	return true, ""
}

func activeAppointments(appointments []model.Appointment, excludeApt *uuid.UUID) []model.Appointment {
	active := make([]model.Appointment, 0, len(appointments))
	for _, apt := range appointments {
		if excludeApt != nil && apt.ID == *excludeApt {
			continue
		}
		if apt.Status.Active() {
			active = append(active, apt)
		}
	}
	return active
}

func priorEndMinutes(apt *model.Appointment) int {
	end, err := geo.ParseHHMM(apt.EndTime)
	if err != nil {
		return 0
	}
	return end
}

// latestEndingBy returns the appointment with the greatest end time at or
// before startMinutes, or nil if none.
func latestEndingBy(appointments []model.Appointment, startMinutes int) *model.Appointment {
	var best *model.Appointment
	bestEnd := -1
	for i := range appointments {
		apt := &appointments[i]
		end, err := geo.ParseHHMM(apt.EndTime)
		if err != nil || end > startMinutes {
			continue
		}
		if end > bestEnd {
			bestEnd = end
			best = apt
		}
	}
	return best
}

// earliestStartingAt returns the appointment with the smallest start time at
// or after endMinutes, or nil if none.
func earliestStartingAt(appointments []model.Appointment, endMinutes int) *model.Appointment {
	var best *model.Appointment
	bestStart := -1
	for i := range appointments {
		apt := &appointments[i]
		start, err := geo.ParseHHMM(apt.StartTime)
		if err != nil || start < endMinutes {
			continue
		}
		if bestStart == -1 || start < bestStart {
			bestStart = start
			best = apt
		}
	}
	return best
}
