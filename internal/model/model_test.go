package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjshine99/carepath/internal/geo"
)

func TestSkillSetHasAll(t *testing.T) {
	set := SkillSet{SkillPersonalCare, SkillDementiaCare, SkillMealPreparation}

	assert.True(t, set.HasAll(SkillSet{SkillPersonalCare}))
	assert.True(t, set.HasAll(SkillSet{SkillPersonalCare, SkillDementiaCare}))
	assert.False(t, set.HasAll(SkillSet{SkillSpecializedMedical}))
}

func TestSkillSetMissing(t *testing.T) {
	set := SkillSet{SkillPersonalCare}
	missing := set.Missing(SkillSet{SkillPersonalCare, SkillDementiaCare, SkillSpecializedMedical})
	assert.Equal(t, SkillSet{SkillDementiaCare, SkillSpecializedMedical}, missing)
}

func TestGenderPreferenceSatisfies(t *testing.T) {
	assert.True(t, PreferenceNoPreference.Satisfies(GenderMale))
	assert.True(t, PreferenceFemale.Satisfies(GenderFemale))
	assert.False(t, PreferenceFemale.Satisfies(GenderMale))
}

func TestAppointmentStatusActive(t *testing.T) {
	assert.True(t, StatusScheduled.Active())
	assert.True(t, StatusInProgress.Active())
	assert.False(t, StatusCompleted.Active())
	assert.False(t, StatusNeedsReassignment.Active())
}

func TestSlotContains(t *testing.T) {
	slot := Slot{Start: "08:00", End: "17:00"}

	assert.True(t, slot.Contains(480, 1020))  // exact bounds
	assert.True(t, slot.Contains(540, 600))   // within
	assert.False(t, slot.Contains(420, 600))  // starts before
	assert.False(t, slot.Contains(540, 1080)) // ends after
}

func TestWeeklyScheduleHasSlotContaining(t *testing.T) {
	schedule := WeeklySchedule{
		geo.Monday: {{Start: "09:00", End: "12:00"}, {Start: "13:00", End: "17:00"}},
	}

	assert.True(t, schedule.HasSlotContaining(geo.Monday, 540, 600))
	assert.False(t, schedule.HasSlotContaining(geo.Monday, 600, 780))
	assert.False(t, schedule.HasSlotContaining(geo.Tuesday, 540, 600))
}

func TestTimeOffWindowCovers(t *testing.T) {
	window := TimeOffWindow{
		Start: NewTimeOnlyDate(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
		End:   NewTimeOnlyDate(time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)),
	}

	assert.True(t, window.Covers(NewTimeOnlyDate(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))))
	assert.True(t, window.Covers(NewTimeOnlyDate(time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC))))
	assert.True(t, window.Covers(NewTimeOnlyDate(time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC))))
	assert.False(t, window.Covers(NewTimeOnlyDate(time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC))))
}

func TestAppointmentOverlapsHalfOpen(t *testing.T) {
	apt := &Appointment{StartTime: "09:00", EndTime: "10:00"}

	assert.True(t, apt.Overlaps(540, 630))   // 09:00-10:30 overlaps
	assert.False(t, apt.Overlaps(600, 660))  // 10:00-11:00 touches end, no overlap
	assert.False(t, apt.Overlaps(480, 540))  // 08:00-09:00 touches start, no overlap
	assert.True(t, apt.Overlaps(570, 630))   // 09:30-10:30 overlaps
}

func TestAppointmentSnapshotSlotsRoundTrip(t *testing.T) {
	apt := &Appointment{}
	slots := []Slot{{Start: "08:00", End: "12:00"}}

	require.NoError(t, apt.SetSnapshotSlots(slots))
	got, err := apt.SnapshotSlots()
	require.NoError(t, err)
	assert.Equal(t, slots, got)
}

func TestCareGiverScheduleRoundTrip(t *testing.T) {
	cg := &CareGiver{}
	schedule := WeeklySchedule{geo.Monday: {{Start: "08:00", End: "16:00"}}}

	require.NoError(t, cg.SetSchedule(schedule))
	got, err := cg.Schedule()
	require.NoError(t, err)
	assert.Equal(t, schedule, got)
}

func TestCareGiverHolidaysRoundTrip(t *testing.T) {
	cg := &CareGiver{}
	windows := []TimeOffWindow{{
		Start:  NewTimeOnlyDate(time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)),
		End:    NewTimeOnlyDate(time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC)),
		Reason: "Christmas",
	}}

	require.NoError(t, cg.SetHolidays(windows))
	got, err := cg.Holidays()
	require.NoError(t, err)
	assert.Equal(t, windows, got)
}

func TestAvailabilityVersionCoversDate(t *testing.T) {
	from := NewTimeOnlyDate(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	to := NewTimeOnlyDate(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC))
	v := &AvailabilityVersion{EffectiveFrom: from, EffectiveTo: &to}

	assert.True(t, v.CoversDate(from))
	assert.True(t, v.CoversDate(to))
	assert.False(t, v.CoversDate(NewTimeOnlyDate(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))))
	assert.False(t, v.CoversDate(NewTimeOnlyDate(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))))

	openVersion := &AvailabilityVersion{EffectiveFrom: from}
	assert.True(t, openVersion.Open())
	assert.True(t, openVersion.CoversDate(NewTimeOnlyDate(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))))
}

func TestSystemSettingsWeightsSumToOne(t *testing.T) {
	settings := DefaultSettings()
	assert.True(t, settings.WeightsSumToOne())

	settings.DistanceWeight = settings.DistanceWeight.Add(settings.DistanceWeight)
	assert.False(t, settings.WeightsSumToOne())
}

func TestTimeOnlyDateJSONRoundTrip(t *testing.T) {
	d := NewTimeOnlyDate(time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC))

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-15"`, string(b))

	var decoded TimeOnlyDate
	require.NoError(t, decoded.UnmarshalJSON(b))
	assert.True(t, d.Equal(decoded))
}

func TestVisitTemplateRecursOn(t *testing.T) {
	v := &VisitTemplate{DaysOfWeek: WeekdaySet{geo.Tuesday, geo.Friday}}

	assert.True(t, v.RecursOn(geo.Tuesday))
	assert.True(t, v.RecursOn(geo.Friday))
	assert.False(t, v.RecursOn(geo.Monday))
}
