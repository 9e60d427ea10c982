package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjshine99/carepath/internal/geo"
	"github.com/sanjshine99/carepath/internal/model"
)

func newAnalyzerFixture(t *testing.T, careGivers ...*model.CareGiver) (*Analyzer, *fakeAvailabilityRepo, *fakeAppointmentRepo) {
	t.Helper()
	cgRepo := newFakeCareGiverRepo(careGivers...)
	aptRepo := newFakeAppointmentRepo()
	availRepo := newFakeAvailabilityRepo()
	for _, cg := range careGivers {
		availRepo.seed(model.AvailabilityVersion{
			CareGiverID:   cg.ID,
			EffectiveFrom: date(2020, 1, 1),
			IsActive:      true,
		})
		v := &availRepo.byCareGiver[cg.ID][0]
		require.NoError(t, v.SetSchedule(weekdaySchedule(model.Slot{Start: "08:00", End: "18:00"})))
		require.NoError(t, v.SetTimeOff(nil))
	}

	availability := NewAvailabilityStore(availRepo)
	settings := NewSettingsService(newFakeSettingsRepo(), 0)
	estimator := geo.NewEstimator(nil)
	analyzer := NewAnalyzer(cgRepo, aptRepo, availability, settings, estimator)
	return analyzer, availRepo, aptRepo
}

// TestAnalyzer_AssignableCareGiverScoresHighAndSortsFirst verifies a fully
// qualified, nearby care giver comes back assignable with a high score,
// ordered ahead of a blocked candidate missing the required skill.
func TestAnalyzer_AssignableCareGiverScoresHighAndSortsFirst(t *testing.T) {
	good := &model.CareGiver{BaseModel: model.BaseModel{ID: uuid.New()}, IsActive: true, Gender: model.GenderFemale, Skills: model.SkillSet{model.SkillMedicationManagement}}
	blocked := &model.CareGiver{BaseModel: model.BaseModel{ID: uuid.New()}, IsActive: true, Gender: model.GenderFemale}
	analyzer, _, _ := newAnalyzerFixture(t, good, blocked)

	receiver := &model.CareReceiver{
		BaseModel:        model.BaseModel{ID: uuid.New()},
		GenderPreference: model.PreferenceNoPreference,
	}
	v := &model.VisitTemplate{
		PreferredTime:   "09:00",
		DurationMinutes: 60,
		Requirements:    model.SkillSet{model.SkillMedicationManagement},
	}

	report, err := analyzer.Analyze(context.Background(), receiver, v, date(2026, 1, 5), nil)
	require.NoError(t, err)
	require.Len(t, report.CareGivers, 2)

	assert.True(t, report.CareGivers[0].CanAssign)
	assert.Equal(t, good.ID, report.CareGivers[0].CareGiverID)
	assert.False(t, report.CareGivers[1].CanAssign)
	assert.Equal(t, blocked.ID, report.CareGivers[1].CareGiverID)
	assert.Contains(t, report.CareGivers[1].RejectionReasons[0], "missing required skills")
}

// TestAnalyzer_ReportsAllRejectionReasonsWithoutShortCircuiting verifies
// that, unlike the Feasibility Oracle, the analyzer accumulates every
// violation instead of stopping at the first.
func TestAnalyzer_ReportsAllRejectionReasonsWithoutShortCircuiting(t *testing.T) {
	cg := &model.CareGiver{
		BaseModel:        model.BaseModel{ID: uuid.New()},
		IsActive:         true,
		Gender:           model.GenderMale,
		SingleHandedOnly: true,
	}
	analyzer, _, _ := newAnalyzerFixture(t, cg)

	receiver := &model.CareReceiver{
		BaseModel:        model.BaseModel{ID: uuid.New()},
		GenderPreference: model.PreferenceFemale,
	}
	v := &model.VisitTemplate{
		PreferredTime:   "09:00",
		DurationMinutes: 60,
		Requirements:    model.SkillSet{model.SkillDementiaCare},
		DoubleHanded:    true,
	}

	report, err := analyzer.Analyze(context.Background(), receiver, v, date(2026, 1, 5), nil)
	require.NoError(t, err)
	require.Len(t, report.CareGivers, 1)

	diag := report.CareGivers[0]
	assert.False(t, diag.CanAssign)
	assert.GreaterOrEqual(t, len(diag.RejectionReasons), 3, "missing skill, gender preference, and single-handed-only should all be reported")
	assert.Equal(t, 5, diag.MatchScore, "105 penalty points plus the 10-point distance bonus leave 5")
}

// TestAnalyzer_SortsAssignableBeforeBlockedAndByDescendingScore verifies the
// ordering contract: assignable candidates first, then, within the blocked
// group, descending score (fewer/lighter violations first).
func TestAnalyzer_SortsAssignableBeforeBlockedAndByDescendingScore(t *testing.T) {
	fullyQualified := &model.CareGiver{BaseModel: model.BaseModel{ID: uuid.New()}, IsActive: true, Gender: model.GenderFemale, Skills: model.SkillSet{model.SkillDementiaCare}}
	missingSkillOnly := &model.CareGiver{BaseModel: model.BaseModel{ID: uuid.New()}, IsActive: true, Gender: model.GenderFemale}
	missingSkillAndGender := &model.CareGiver{BaseModel: model.BaseModel{ID: uuid.New()}, IsActive: true, Gender: model.GenderMale}
	analyzer, _, _ := newAnalyzerFixture(t, fullyQualified, missingSkillOnly, missingSkillAndGender)

	receiver := &model.CareReceiver{
		BaseModel:        model.BaseModel{ID: uuid.New()},
		GenderPreference: model.PreferenceFemale,
	}
	v := &model.VisitTemplate{
		PreferredTime:   "09:00",
		DurationMinutes: 60,
		Requirements:    model.SkillSet{model.SkillDementiaCare},
	}

	report, err := analyzer.Analyze(context.Background(), receiver, v, date(2026, 1, 5), nil)
	require.NoError(t, err)
	require.Len(t, report.CareGivers, 3)

	assert.True(t, report.CareGivers[0].CanAssign)
	assert.Equal(t, fullyQualified.ID, report.CareGivers[0].CareGiverID)

	assert.False(t, report.CareGivers[1].CanAssign)
	assert.False(t, report.CareGivers[2].CanAssign)
	assert.Equal(t, missingSkillOnly.ID, report.CareGivers[1].CareGiverID, "one violation should outrank two")
	assert.Equal(t, missingSkillAndGender.ID, report.CareGivers[2].CareGiverID)
	assert.Greater(t, report.CareGivers[1].MatchScore, report.CareGivers[2].MatchScore)
}
