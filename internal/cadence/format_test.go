package cadence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeRemaining(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	spec := Spec{Type: TypeEveryXHours, Hours: 12}

	assert.Equal(t, NeverReviewed, FormatTimeRemaining(time.Time{}, spec, now))
	assert.Equal(t, "Needs review now", FormatTimeRemaining(now.Add(-13*time.Hour), spec, now))
	assert.Equal(t, "Needs review now", FormatTimeRemaining(now.Add(-12*time.Hour), spec, now))
	assert.Equal(t, "Next review in: 2h 30m", FormatTimeRemaining(now.Add(-9*time.Hour-30*time.Minute), spec, now))
	assert.Equal(t, "Next review in: 4m 10s", FormatTimeRemaining(now.Add(-11*time.Hour-55*time.Minute-50*time.Second), spec, now))
	assert.Equal(t, "Next review in: 9s", FormatTimeRemaining(now.Add(-11*time.Hour-59*time.Minute-51*time.Second), spec, now))
}

func TestFormatTimeElapsed(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, NeverReviewed, FormatTimeElapsed(time.Time{}, now))
	assert.Contains(t, FormatTimeElapsed(now.Add(-59*time.Second), now), "seconds")
	assert.Contains(t, FormatTimeElapsed(now.Add(-61*time.Second), now), "minutes")
	assert.Equal(t, "1 minutes ago", FormatTimeElapsed(now.Add(-61*time.Second), now))
	assert.Equal(t, "3 hours ago", FormatTimeElapsed(now.Add(-3*time.Hour-10*time.Minute), now))
	assert.Equal(t, "2 days ago", FormatTimeElapsed(now.Add(-50*time.Hour), now))
	assert.Equal(t, "0 seconds ago", FormatTimeElapsed(now.Add(time.Minute), now))
}

func TestFormatUntil(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "now", FormatUntil(now, now))
	assert.Equal(t, "now", FormatUntil(now.Add(-time.Hour), now))
	assert.Equal(t, "in <1m", FormatUntil(now.Add(30*time.Second), now))
	assert.Equal(t, "in 5m", FormatUntil(now.Add(5*time.Minute), now))
	assert.Equal(t, "in 2h 0m", FormatUntil(now.Add(2*time.Hour), now))
	assert.Equal(t, "in 1d 0h 7m", FormatUntil(now.Add(24*time.Hour+7*time.Minute), now))
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "Never", FormatDateTime(time.Time{}))
	assert.Equal(t, "Mar 5, 2024 2:07 PM", FormatDateTime(time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		spec Spec
		want string
	}{
		{NewInterval(2, 3, 0), "Review every 2d 3h"},
		{Default(), "Review every 12h"},
		{Spec{Type: TypeEveryXHours, Minutes: 90}, "Review every 1h 30m"},
		{Spec{Type: TypeEveryXHours}, "Review every 0m"},
		{Spec{Type: TypeDaily, Time: "09:00"}, "Review daily at 09:00"},
		{Spec{Type: TypeDaily}, "Review daily at 09:00"},
		{Spec{Type: TypeWeekly, Time: "09:00", Days: []int{1, 3}}, "Review weekly on Monday, Wednesday at 09:00"},
		{Spec{Type: TypeWeekly, Time: "18:30"}, "Review weekly at 18:30"},
		{Spec{Type: TypeMonthly, Time: "07:00", Day: 15}, "Review monthly on day 15 at 07:00"},
		{Spec{Type: TypeYearly, Time: "09:00", Day: 15, Month: 3}, "Review yearly on March 15 at 09:00"},
		{Spec{Type: TypeDaily, Time: "09:00", Start: "2024-01-01", End: "2024-12-31"},
			"Review daily at 09:00 • Starts: 2024-01-01 • Ends: 2024-12-31"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Summary(tt.spec))
	}
}
