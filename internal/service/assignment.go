package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/geo"
	"github.com/sanjshine99/carepath/internal/model"
)

// assignmentCareGiverRepository defines the data access the Assignment
// Engine needs to build a candidate set.
type assignmentCareGiverRepository interface {
	ListActive(ctx context.Context) ([]model.CareGiver, error)
}

// assignmentAppointmentRepository defines the data access the Assignment
// Engine needs to materialize and deduplicate appointments.
type assignmentAppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	ExistsForVisit(ctx context.Context, receiverID uuid.UUID, day model.TimeOnlyDate, visitNumber int) (bool, error)
}

// FailedVisit records a visit that could not be scheduled: infeasibility is
// a first-class result, never an error.
type FailedVisit struct {
	CareReceiverID uuid.UUID          `json:"care_receiver_id"`
	VisitNumber    int                `json:"visit_number"`
	Date           model.TimeOnlyDate `json:"date"`
	Reason         string             `json:"reason"`
}

// ScheduleResult is the outcome of running the Assignment Engine over a
// care receiver's templates across a date range.
type ScheduleResult struct {
	Scheduled []model.Appointment
	Failed    []FailedVisit
}

// AssignmentEngine expands recurring visit templates into dated
// appointments, selecting a primary (and, for double-handed visits, a
// secondary) care giver.
type AssignmentEngine struct {
	careGivers   assignmentCareGiverRepository
	appointments assignmentAppointmentRepository
	availability *AvailabilityStore
	feasibility  *FeasibilityOracle
	settings     *SettingsService
}

// NewAssignmentEngine creates a new AssignmentEngine.
func NewAssignmentEngine(
	careGivers assignmentCareGiverRepository,
	appointments assignmentAppointmentRepository,
	availability *AvailabilityStore,
	feasibility *FeasibilityOracle,
	settings *SettingsService,
) *AssignmentEngine {
	return &AssignmentEngine{
		careGivers:   careGivers,
		appointments: appointments,
		availability: availability,
		feasibility:  feasibility,
		settings:     settings,
	}
}

// GenerateForReceiver expands every visit template on receiver across
// [startDate, endDate] (inclusive, UTC days ascending) and attempts to
// schedule each occurrence in visit_number order.
func (e *AssignmentEngine) GenerateForReceiver(
	ctx context.Context,
	receiver *model.CareReceiver,
	startDate, endDate model.TimeOnlyDate,
	cache *geo.TravelCache,
) (*ScheduleResult, error) {
	result := &ScheduleResult{}
	receiverCreatedAt := model.NewTimeOnlyDate(receiver.CreatedAt)
	templates := sortedTemplates(receiver.VisitTemplates)

	for day := startDate; !day.After(endDate); day = day.AddDays(1) {
		for _, template := range templates {
			v := template
			if !OccursOn(&v, day, receiverCreatedAt) {
				continue
			}

			exists, err := e.appointments.ExistsForVisit(ctx, receiver.ID, day, v.VisitNumber)
			if err != nil {
				return nil, fmt.Errorf("checking existing visit: %w", err)
			}
			if exists {
				continue
			}

			apt, reason, err := e.scheduleOccurrence(ctx, receiver, &v, day, cache, true)
			if err != nil {
				return nil, err
			}
			if apt == nil {
				result.Failed = append(result.Failed, FailedVisit{
					CareReceiverID: receiver.ID,
					VisitNumber:    v.VisitNumber,
					Date:           day,
					Reason:         reason,
				})
				continue
			}
			result.Scheduled = append(result.Scheduled, *apt)
		}
	}

	return result, nil
}

// PreviewForReceiver runs the same candidate selection as GenerateForReceiver
// across [startDate, endDate] but never persists an appointment, reporting
// only the visits that would fail and why. Used by the read-only
// unscheduled-visits report.
func (e *AssignmentEngine) PreviewForReceiver(
	ctx context.Context,
	receiver *model.CareReceiver,
	startDate, endDate model.TimeOnlyDate,
	cache *geo.TravelCache,
) ([]FailedVisit, error) {
	var failed []FailedVisit
	receiverCreatedAt := model.NewTimeOnlyDate(receiver.CreatedAt)
	templates := sortedTemplates(receiver.VisitTemplates)

	for day := startDate; !day.After(endDate); day = day.AddDays(1) {
		for _, template := range templates {
			v := template
			if !OccursOn(&v, day, receiverCreatedAt) {
				continue
			}

			exists, err := e.appointments.ExistsForVisit(ctx, receiver.ID, day, v.VisitNumber)
			if err != nil {
				return nil, fmt.Errorf("checking existing visit: %w", err)
			}
			if exists {
				continue
			}

			apt, reason, err := e.scheduleOccurrence(ctx, receiver, &v, day, cache, false)
			if err != nil {
				return nil, err
			}
			if apt == nil {
				failed = append(failed, FailedVisit{
					CareReceiverID: receiver.ID,
					VisitNumber:    v.VisitNumber,
					Date:           day,
					Reason:         reason,
				})
			}
		}
	}

	return failed, nil
}

func (e *AssignmentEngine) scheduleOccurrence(
	ctx context.Context,
	receiver *model.CareReceiver,
	v *model.VisitTemplate,
	day model.TimeOnlyDate,
	cache *geo.TravelCache,
	persist bool,
) (*model.Appointment, string, error) {
	endTime, err := v.EndTime()
	if err != nil {
		return nil, "", fmt.Errorf("computing end time: %w", err)
	}
	startMinutes, err := geo.ParseHHMM(v.PreferredTime)
	if err != nil {
		return nil, "", fmt.Errorf("parsing preferred time: %w", err)
	}
	endMinutes, err := geo.ParseHHMM(endTime)
	if err != nil {
		return nil, "", fmt.Errorf("parsing end time: %w", err)
	}

	settings, err := e.settings.Get(ctx)
	if err != nil {
		return nil, "", err
	}

	candidates, err := e.candidatesFor(ctx, receiver, v, settings)
	if err != nil {
		return nil, "", err
	}

	primary, reason, err := e.selectBest(ctx, candidates, receiver, day, startMinutes, endMinutes, cache)
	if err != nil {
		return nil, "", err
	}
	if primary == nil {
		return nil, reason, nil
	}

	var secondary *model.CareGiver
	if v.DoubleHanded {
		remaining := excludeCareGiver(candidates, primary.ID)
		secondary, reason, err = e.selectBest(ctx, remaining, receiver, day, startMinutes, endMinutes, cache)
		if err != nil {
			return nil, "", err
		}
		if secondary == nil {
			return nil, "no secondary care giver available: " + reason, nil
		}
	}

	avail, err := e.availability.CurrentFor(ctx, primary, day)
	if err != nil {
		return nil, "", err
	}

	apt := &model.Appointment{
		CareReceiverID: receiver.ID,
		CareGiverID:    primary.ID,
		Date:           day,
		StartTime:      v.PreferredTime,
		EndTime:        endTime,
		Duration:       v.DurationMinutes,
		VisitNumber:    v.VisitNumber,
		Requirements:   v.Requirements,
		DoubleHanded:   v.DoubleHanded,
		Priority:       v.Priority,
		Status:         model.StatusScheduled,
		SnapshotVersionID: avail.VersionID,
	}
	if secondary != nil {
		apt.SecondaryCareGiverID = &secondary.ID
	}
	if err := apt.SetSnapshotSlots(avail.Schedule[day.Weekday()]); err != nil {
		return nil, "", err
	}

	if !persist {
		return apt, "", nil
	}

	if err := e.appointments.Create(ctx, apt); err != nil {
		return nil, "", fmt.Errorf("creating appointment: %w", err)
	}
	return apt, "", nil
}

// candidatesFor applies the candidate filter for a given visit template.
func (e *AssignmentEngine) candidatesFor(ctx context.Context, receiver *model.CareReceiver, v *model.VisitTemplate, settings *model.SystemSettings) ([]model.CareGiver, error) {
	all, err := e.careGivers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active care givers: %w", err)
	}

	maxDistance, _ := settings.MaxDistanceKm.Float64()
	return FilterCandidates(all, receiver, v.Requirements, v.DoubleHanded, maxDistance), nil
}

// FilterCandidates narrows givers down to active care givers whose skills
// are a superset of requirements, excluding single-handed-only care givers
// from double-handed visits, honoring the receiver's gender preference, and
// the geographic radius relative to the receiver's home. Shared by the
// Assignment Engine and the find-available driving endpoint so both apply
// identical candidate semantics.
func FilterCandidates(givers []model.CareGiver, receiver *model.CareReceiver, requirements model.SkillSet, doubleHanded bool, maxDistanceKm float64) []model.CareGiver {
	receiverHome := receiver.Home()
	candidates := make([]model.CareGiver, 0, len(givers))
	for _, cg := range givers {
		if !cg.HasSkills(requirements) {
			continue
		}
		// single_handed_only care givers are excluded from any double-handed
		// visit, even as primary.
		if doubleHanded && cg.SingleHandedOnly {
			continue
		}
		if receiver.GenderPreference != model.PreferenceNoPreference && !receiver.GenderPreference.Satisfies(cg.Gender) {
			continue
		}
		if geo.Haversine(cg.Home(), receiverHome) > maxDistanceKm {
			continue
		}
		candidates = append(candidates, cg)
	}
	return candidates
}

// selectBest runs the Feasibility Oracle over candidates and returns the
// minimum-score feasible care giver. Ties are broken by keeping the first
// encountered (candidates is already in stable order).
func (e *AssignmentEngine) selectBest(
	ctx context.Context,
	candidates []model.CareGiver,
	receiver *model.CareReceiver,
	day model.TimeOnlyDate,
	startMinutes, endMinutes int,
	cache *geo.TravelCache,
) (*model.CareGiver, string, error) {
	if len(candidates) == 0 {
		return nil, "no care giver matches skills, gender preference, or distance constraints", nil
	}

	receiverHome := receiver.Home()
	var best *model.CareGiver
	bestScore := 0.0
	lastReason := "no candidate passed the feasibility checks"

	for i := range candidates {
		cg := candidates[i]
		result, err := e.feasibility.IsAvailable(ctx, cg.ID, day, startMinutes, endMinutes, receiverHome, nil, cache)
		if err != nil {
			return nil, "", err
		}
		if !result.Available {
			lastReason = fmt.Sprintf("%s: %s", cg.FullName(), result.Reason)
			continue
		}

		score := geo.Haversine(cg.Home(), receiverHome)
		if receiver.PreferredCareGiverID != nil && *receiver.PreferredCareGiverID == cg.ID {
			score -= 10
		}
		if best == nil || score < bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	if best == nil {
		return nil, lastReason, nil
	}
	return best, "", nil
}

func excludeCareGiver(candidates []model.CareGiver, id uuid.UUID) []model.CareGiver {
	remaining := make([]model.CareGiver, 0, len(candidates))
	for _, cg := range candidates {
		if cg.ID != id {
			remaining = append(remaining, cg)
		}
	}
	return remaining
}

// sortedTemplates returns v's templates ordered by ascending visit_number,
// without mutating the receiver's slice.
func sortedTemplates(templates []model.VisitTemplate) []model.VisitTemplate {
	sorted := make([]model.VisitTemplate, len(templates))
	copy(sorted, templates)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].VisitNumber < sorted[j-1].VisitNumber; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}
