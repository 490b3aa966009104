package cadence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, v string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, v)
	require.NoError(t, err)
	return ts
}

func TestNextDue_EveryXHoursIgnoresNow(t *testing.T) {
	spec := Spec{Type: TypeEveryXHours, Hours: 2, Minutes: 30}
	last := at(t, "2024-03-10T08:00:00Z")
	want := at(t, "2024-03-10T10:30:00Z")
	for _, now := range []string{"2024-01-01T00:00:00Z", "2024-03-10T09:00:00Z", "2025-06-01T00:00:00Z"} {
		assert.Equal(t, want, NextDue(spec, last, at(t, now)), "now=%s", now)
	}
}

func TestNextDue_NeverReviewedEveryXHoursIsNow(t *testing.T) {
	now := at(t, "2024-03-10T08:00:00Z")
	assert.Equal(t, now, NextDue(Spec{Type: TypeEveryXHours, Hours: 5}, time.Time{}, now))
	assert.Equal(t, now, NextDue(Default(), time.Time{}, now))
}

func TestNextDue_NeverReviewedCalendarIsAfterNow(t *testing.T) {
	now := at(t, "2024-03-10T09:00:00Z")
	specs := []Spec{
		{Type: TypeDaily, Time: "09:00"},
		{Type: TypeWeekly, Time: "09:00", Days: []int{0}},
		{Type: TypeMonthly, Time: "09:00", Day: 10},
		{Type: TypeYearly, Time: "09:00", Day: 10, Month: 3},
	}
	for _, s := range specs {
		got := NextDue(s, time.Time{}, now)
		assert.True(t, got.After(now), "%s: %s not after %s", s.Type, got, now)
	}
}

func TestNextDue_Daily(t *testing.T) {
	spec := Spec{Type: TypeDaily, Time: "09:00"}
	assert.Equal(t, at(t, "2024-03-10T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-03-10T08:59:00Z")))
	assert.Equal(t, at(t, "2024-03-11T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-03-10T09:00:00Z")))
	assert.Equal(t, at(t, "2024-03-11T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-03-10T17:00:00Z")))
}

func TestNextDue_DailyMissingTimeUsesDefault(t *testing.T) {
	got := NextDue(Spec{Type: TypeDaily}, time.Time{}, at(t, "2024-03-10T06:00:00Z"))
	assert.Equal(t, at(t, "2024-03-10T09:00:00Z"), got)
}

func TestNextDue_FutureLastReviewAnchors(t *testing.T) {
	spec := Spec{Type: TypeDaily, Time: "09:00"}
	now := at(t, "2024-03-10T08:00:00Z")
	last := at(t, "2024-03-12T10:00:00Z")
	assert.Equal(t, at(t, "2024-03-13T09:00:00Z"), NextDue(spec, last, now))
}

func TestNextDue_WeeklySelection(t *testing.T) {
	spec := Spec{Type: TypeWeekly, Time: "09:00", Days: []int{1, 3}}
	start := at(t, "2024-03-01T00:00:00Z")
	for i := 0; i < 14*24; i += 5 {
		base := start.Add(time.Duration(i) * time.Hour)
		got := NextDue(spec, time.Time{}, base)
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday}, got.Weekday())
		assert.True(t, got.After(base))
		assert.LessOrEqual(t, got.Sub(base), 7*24*time.Hour)
	}
}

func TestNextDue_WeeklySameDayExactInstantRolls(t *testing.T) {
	spec := Spec{Type: TypeWeekly, Time: "09:00", Days: []int{1}}
	monday := at(t, "2024-03-11T09:00:00Z")
	assert.Equal(t, at(t, "2024-03-18T09:00:00Z"), NextDue(spec, time.Time{}, monday))
}

func TestNextDue_WeeklyEmptyDaysTerminates(t *testing.T) {
	base := at(t, "2024-03-10T10:00:00Z")
	got := NextDue(Spec{Type: TypeWeekly, Time: "09:00"}, time.Time{}, base)
	assert.Equal(t, at(t, "2024-03-23T09:00:00Z"), got)
}

func TestNextDue_Monthly(t *testing.T) {
	spec := Spec{Type: TypeMonthly, Time: "09:00", Day: 15}
	assert.Equal(t, at(t, "2024-03-15T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-03-02T00:00:00Z")))
	assert.Equal(t, at(t, "2024-04-15T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-03-15T09:00:00Z")))
	assert.Equal(t, at(t, "2024-04-15T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-03-20T00:00:00Z")))
	assert.Equal(t, at(t, "2025-01-15T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-12-31T00:00:00Z")))
}

func TestNextDue_MonthlyDay31SkipsShortMonths(t *testing.T) {
	spec := Spec{Type: TypeMonthly, Time: "09:00", Day: 31}
	got := NextDue(spec, time.Time{}, at(t, "2024-02-15T00:00:00Z"))
	assert.Equal(t, at(t, "2024-03-31T09:00:00Z"), got)

	got = NextDue(spec, time.Time{}, at(t, "2024-03-31T10:00:00Z"))
	assert.Equal(t, at(t, "2024-05-31T09:00:00Z"), got)
}

func TestNextDue_Yearly(t *testing.T) {
	spec := Spec{Type: TypeYearly, Time: "09:00", Day: 15, Month: 6}
	assert.Equal(t, at(t, "2024-06-15T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-03-01T00:00:00Z")))
	assert.Equal(t, at(t, "2025-06-15T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-06-15T09:00:00Z")))
	assert.Equal(t, at(t, "2025-06-15T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-11-01T00:00:00Z")))
}

func TestNextDue_YearlyLeapDay(t *testing.T) {
	spec := Spec{Type: TypeYearly, Time: "09:00", Day: 29, Month: 2}
	assert.Equal(t, at(t, "2028-02-29T09:00:00Z"), NextDue(spec, time.Time{}, at(t, "2024-03-01T00:00:00Z")))
}

func TestNextDue_YearlyImpossibleDateTerminates(t *testing.T) {
	base := at(t, "2024-01-01T00:00:00Z")
	got := NextDue(Spec{Type: TypeYearly, Time: "09:00", Day: 30, Month: 2}, time.Time{}, base)
	assert.True(t, got.After(base))
}

func TestNextDue_UsesBaseLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, loc)
	got := NextDue(Spec{Type: TypeDaily, Time: "09:00"}, time.Time{}, now)
	assert.Equal(t, time.Date(2024, 3, 10, 9, 0, 0, 0, loc), got)
}

func TestNextDue_FutureLastReviewUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)

	cases := []struct {
		name string
		spec Spec
		now  time.Time
		want time.Time
	}{
		{
			name: "daily",
			spec: Spec{Type: TypeDaily, Time: "09:00"},
			now:  time.Date(2024, 3, 12, 6, 0, 0, 0, loc),
			want: time.Date(2024, 3, 12, 9, 0, 0, 0, loc),
		},
		{
			name: "weekly",
			spec: Spec{Type: TypeWeekly, Time: "09:00", Days: []int{3}},
			now:  time.Date(2024, 3, 12, 22, 0, 0, 0, loc),
			want: time.Date(2024, 3, 13, 9, 0, 0, 0, loc),
		},
		{
			name: "monthly",
			spec: Spec{Type: TypeMonthly, Time: "09:00", Day: 13},
			now:  time.Date(2024, 3, 12, 22, 0, 0, 0, loc),
			want: time.Date(2024, 3, 13, 9, 0, 0, 0, loc),
		},
		{
			name: "yearly",
			spec: Spec{Type: TypeYearly, Time: "09:00", Day: 13, Month: 3},
			now:  time.Date(2024, 3, 12, 22, 0, 0, 0, loc),
			want: time.Date(2024, 3, 13, 9, 0, 0, 0, loc),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// History timestamps come back in UTC.
			last := tc.now.Add(10 * time.Minute).UTC()
			got := NextDue(tc.spec, last, tc.now)
			assert.True(t, tc.want.Equal(got), "got %s, want %s", got, tc.want)
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestNextDue_UnknownTypeFallsBackToDefault(t *testing.T) {
	last := at(t, "2024-01-01T00:00:00Z")
	got := NextDue(Spec{Type: "bogus"}, last, at(t, "2024-01-01T01:00:00Z"))
	assert.Equal(t, at(t, "2024-01-01T12:00:00Z"), got)
}

func TestEffectiveDue_SnoozeWins(t *testing.T) {
	last := at(t, "2024-01-01T00:00:00Z")
	until := at(t, "2024-01-05T00:00:00Z")
	now := at(t, "2024-01-02T00:00:00Z")
	assert.Equal(t, until, EffectiveDue(Default(), last, until, now))
	assert.Equal(t, at(t, "2024-01-01T12:00:00Z"), EffectiveDue(Default(), last, time.Time{}, now))
}

func TestScenario_TwelveHourNote(t *testing.T) {
	content := "meta::watch\nmeta::review_cadence::type=every-x-hours;hours=12;minutes=0"
	spec := FromContent(content)
	last := at(t, "2024-01-01T00:00:00Z")

	now := at(t, "2024-01-01T11:59:00Z")
	assert.True(t, NextDue(spec, last, now).After(now), "not due yet")

	now = at(t, "2024-01-01T12:00:01Z")
	assert.False(t, NextDue(spec, last, now).After(now), "due")
}
