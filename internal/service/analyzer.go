package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/geo"
	"github.com/sanjshine99/carepath/internal/model"
)

// CareGiverDiagnosis is one care giver's entry in a Diagnostic Analyzer
// report: {id, name, can_assign, rejection_reasons[], match_score,
// distance_km}.
type CareGiverDiagnosis struct {
	CareGiverID      uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	CanAssign        bool      `json:"can_assign"`
	RejectionReasons []string  `json:"rejection_reasons"`
	MatchScore       int       `json:"match_score"`
	DistanceKm       float64   `json:"distance_km"`
}

// AnalysisReport is the Diagnostic Analyzer's output for one still-
// unassigned visit: every active care giver, sorted assignable-first then
// by descending score.
type AnalysisReport struct {
	CareGivers []CareGiverDiagnosis `json:"care_givers"`
}

// Analyzer shares the Feasibility Oracle's checks but, instead of
// short-circuiting on the first failure, runs every check and accumulates a
// per–care-giver rejection report and match score.
type Analyzer struct {
	careGivers   assignmentCareGiverRepository
	appointments feasibilityAppointmentRepository
	availability *AvailabilityStore
	settings     *SettingsService
	estimator    *geo.Estimator
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(
	careGivers assignmentCareGiverRepository,
	appointments feasibilityAppointmentRepository,
	availability *AvailabilityStore,
	settings *SettingsService,
	estimator *geo.Estimator,
) *Analyzer {
	return &Analyzer{
		careGivers:   careGivers,
		appointments: appointments,
		availability: availability,
		settings:     settings,
		estimator:    estimator,
	}
}

// Analyze produces a report for visit template v of receiver on date,
// scoring every active care giver against the full penalty table.
func (a *Analyzer) Analyze(
	ctx context.Context,
	receiver *model.CareReceiver,
	v *model.VisitTemplate,
	date model.TimeOnlyDate,
	cache *geo.TravelCache,
) (*AnalysisReport, error) {
	endTime, err := v.EndTime()
	if err != nil {
		return nil, fmt.Errorf("computing end time: %w", err)
	}
	startMinutes, err := geo.ParseHHMM(v.PreferredTime)
	if err != nil {
		return nil, fmt.Errorf("parsing preferred time: %w", err)
	}
	endMinutes, err := geo.ParseHHMM(endTime)
	if err != nil {
		return nil, fmt.Errorf("parsing end time: %w", err)
	}

	settings, err := a.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	maxDistance, _ := settings.MaxDistanceKm.Float64()

	givers, err := a.careGivers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active care givers: %w", err)
	}

	receiverHome := receiver.Home()
	report := &AnalysisReport{CareGivers: make([]CareGiverDiagnosis, 0, len(givers))}

	for i := range givers {
		cg := &givers[i]
		diag, err := a.diagnose(ctx, cg, receiver, v, date, startMinutes, endMinutes, receiverHome, maxDistance, settings, cache)
		if err != nil {
			return nil, err
		}
		report.CareGivers = append(report.CareGivers, *diag)
	}

	sort.SliceStable(report.CareGivers, func(i, j int) bool {
		if report.CareGivers[i].CanAssign != report.CareGivers[j].CanAssign {
			return report.CareGivers[i].CanAssign
		}
		return report.CareGivers[i].MatchScore > report.CareGivers[j].MatchScore
	})

	return report, nil
}

func (a *Analyzer) diagnose(
	ctx context.Context,
	cg *model.CareGiver,
	receiver *model.CareReceiver,
	v *model.VisitTemplate,
	date model.TimeOnlyDate,
	startMinutes, endMinutes int,
	receiverHome geo.Point,
	maxDistance float64,
	settings *model.SystemSettings,
	cache *geo.TravelCache,
) (*CareGiverDiagnosis, error) {
	diag := &CareGiverDiagnosis{CareGiverID: cg.ID, Name: cg.FullName(), CanAssign: true, MatchScore: 100}

	penalize := func(points int, reason string, blocks bool) {
		diag.MatchScore -= points
		diag.RejectionReasons = append(diag.RejectionReasons, reason)
		if blocks {
			diag.CanAssign = false
		}
	}

	if missing := cg.Skills.Missing(v.Requirements); len(missing) > 0 {
		penalize(25*len(missing), fmt.Sprintf("missing required skills: %v", missing), true)
	}

	if receiver.GenderPreference != model.PreferenceNoPreference && !receiver.GenderPreference.Satisfies(cg.Gender) {
		penalize(30, "gender preference not satisfied", true)
	}

	if v.DoubleHanded && cg.SingleHandedOnly {
		penalize(50, "care giver is single-handed-only but visit requires a secondary", true)
	}

	avail, err := a.availability.CurrentFor(ctx, cg, date)
	if err != nil {
		return nil, err
	}

	if len(avail.Schedule) == 0 {
		penalize(100, "no availability schedule on record", true)
	} else {
		weekday := date.Weekday()
		if !avail.Schedule.HasAnySlot(weekday) {
			penalize(40, fmt.Sprintf("does not work on %s", weekday), true)
		} else if !AvailableAt(avail, date, startMinutes, endMinutes) {
			penalize(30, "not within a working slot at the visit time", true)
		}
		if OnTimeOff(avail, date) {
			penalize(100, "care giver is on time off", true)
		}
	}

	dist := geo.Haversine(cg.Home(), receiverHome)
	diag.DistanceKm = dist
	if dist > maxDistance {
		penalize(20, fmt.Sprintf("distance %.1fkm exceeds max %.1fkm", dist, maxDistance), true)
	} else if maxDistance > 0 {
		diag.MatchScore += int(math.Round(10 * (maxDistance - dist) / maxDistance))
	}

	dayAppointments, err := a.appointments.ForCareGiverOnDay(ctx, cg.ID, date)
	if err != nil {
		return nil, err
	}
	active := activeAppointments(dayAppointments, nil)

	if len(active) >= settings.MaxAppointmentsPerDay {
		penalize(30, "at or above the daily appointment cap", true)
	}

	for _, apt := range active {
		if apt.Overlaps(startMinutes, endMinutes) {
			penalize(40, "overlaps an existing appointment", true)
			break
		}
	}

	if prior := latestEndingBy(active, startMinutes); prior != nil {
		if ok, _ := a.checkTravelGap(ctx, prior.ReceiverLocation(), receiverHome, priorEndMinutes(prior), startMinutes, settings.TravelTimeBufferMinutes, cache); !ok {
			penalize(25, "insufficient travel time from a previous appointment", true)
		}
	}
	if next := earliestStartingAt(active, endMinutes); next != nil {
		if nextStart, err := geo.ParseHHMM(next.StartTime); err == nil {
			if ok, _ := a.checkTravelGap(ctx, receiverHome, next.ReceiverLocation(), endMinutes, nextStart, settings.TravelTimeBufferMinutes, cache); !ok {
				penalize(25, "insufficient travel time to a following appointment", true)
			}
		}
	}

	if diag.MatchScore < 0 {
		diag.MatchScore = 0
	}
	if diag.MatchScore > 100 {
		diag.MatchScore = 100
	}
	return diag, nil
}

// checkTravelGap mirrors FeasibilityOracle.checkTravelGap; duplicated rather
// than shared because the analyzer must keep evaluating after a travel-gap
// failure instead of short-circuiting.
func (a *Analyzer) checkTravelGap(ctx context.Context, from, to geo.Point, fromMinutes, toMinutes, bufferMinutes int, cache *geo.TravelCache) (bool, string) {
	if from.IsZero() || to.IsZero() {
		return true, ""
	}
	gap := toMinutes - fromMinutes
	required := a.estimator.TravelTimeMinutes(ctx, from, to, cache) + bufferMinutes
	if gap < required {
		return false, "insufficient travel time"
	}
	return true, ""
}
