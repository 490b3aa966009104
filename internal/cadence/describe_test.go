package cadence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDescribe_AcceptsBareValueList(t *testing.T) {
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC) // Monday
	d := Describe("type=weekly;time=08:00;days=3", now)

	assert.True(t, d.Valid)
	assert.Empty(t, d.Error)
	assert.Equal(t, "Review weekly on Wednesday at 08:00", d.Summary)
	assert.Equal(t, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), d.NextDue)
	assert.Equal(t, "May 8, 2024 8:00 AM", d.NextDueText)
	assert.Equal(t, "meta::review_cadence::type=weekly;hours=0;minutes=0;time=08:00;days=3", d.Line)
}

func TestDescribe_UnknownTypeFallsBackToDefault(t *testing.T) {
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	d := Describe("meta::review_cadence::type=fortnightly", now)

	assert.False(t, d.Valid)
	assert.NotEmpty(t, d.Error)
	assert.True(t, d.Spec.Implicit)
	assert.Equal(t, now, d.NextDue)
}

func TestDescribe_InvalidFieldsReported(t *testing.T) {
	d := Describe("type=monthly;time=25:00", time.Now())
	assert.False(t, d.Valid)
	assert.Contains(t, d.Error, "day")
}
