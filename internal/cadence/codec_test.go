package cadence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullLine(t *testing.T) {
	content := "Some note\nmeta::watch\nmeta::review_cadence::type=weekly;hours=0;minutes=0;time=07:30;days=1,3,5\nmore"
	spec, ok := Parse(content)
	require.True(t, ok)
	assert.Equal(t, TypeWeekly, spec.Type)
	assert.Equal(t, "07:30", spec.Time)
	assert.Equal(t, []int{1, 3, 5}, spec.Days)
	assert.False(t, spec.Implicit)
}

func TestParse_Missing(t *testing.T) {
	_, ok := Parse("just text\nmeta::watch")
	assert.False(t, ok)

	spec := FromContent("just text")
	assert.Equal(t, TypeEveryXHours, spec.Type)
	assert.Equal(t, 12, spec.Hours)
	assert.True(t, spec.Implicit)
}

func TestParse_UnknownTypeIsMalformed(t *testing.T) {
	_, ok := Parse("meta::review_cadence::type=fortnightly;hours=1;minutes=0")
	assert.False(t, ok)
	_, ok = Parse("meta::review_cadence::hours=1;minutes=0")
	assert.False(t, ok)
}

func TestParse_GarbageNumbersBecomeZero(t *testing.T) {
	spec, ok := Parse("meta::review_cadence::type=every-x-hours;hours=abc;minutes=;day=x;days=1,z,9,4")
	require.True(t, ok)
	assert.Equal(t, 0, spec.Hours)
	assert.Equal(t, 0, spec.Minutes)
	assert.Equal(t, 0, spec.Day)
	assert.Equal(t, []int{1, 4}, spec.Days)
}

func TestParse_UnknownKeysPreserved(t *testing.T) {
	line := "meta::review_cadence::type=daily;hours=0;minutes=0;time=10:00;color=blue;zone=utc"
	spec, ok := Parse(line)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"color": "blue", "zone": "utc"}, spec.Extra)
	assert.Equal(t, line, Line(spec))
}

func TestEncode_AlwaysEmitsIntervalFields(t *testing.T) {
	assert.Equal(t, "type=daily;hours=0;minutes=0;time=09:00", Encode(Spec{Type: TypeDaily, Time: "09:00"}))
	assert.Equal(t, "type=yearly;hours=0;minutes=0;time=08:00;day=4;month=7",
		Encode(Spec{Type: TypeYearly, Time: "08:00", Day: 4, Month: 7}))
	assert.Equal(t, "type=every-x-hours;hours=51;minutes=15", Encode(NewInterval(2, 3, 15)))
}

func TestRoundTrip(t *testing.T) {
	specs := []Spec{
		{Type: TypeEveryXHours, Hours: 2, Minutes: 30},
		{Type: TypeDaily, Time: "21:45"},
		{Type: TypeWeekly, Time: "09:00", Days: []int{0, 6}},
		{Type: TypeMonthly, Time: "12:00", Day: 31},
		{Type: TypeYearly, Time: "06:15", Day: 29, Month: 2, Start: "2024-01-01", End: "2030-12-31"},
	}
	for _, s := range specs {
		t.Run(string(s.Type), func(t *testing.T) {
			got, ok := Parse(SetLine("", s))
			require.True(t, ok)
			assert.Equal(t, s, got)
			assert.Equal(t, Encode(s), Encode(got))
		})
	}
}

func TestSetLine_ReplacesInPlace(t *testing.T) {
	content := "title\nmeta::review_cadence::type=daily;hours=0;minutes=0\nfooter"
	got := SetLine(content, NewInterval(0, 4, 0))
	assert.Equal(t, "title\nmeta::review_cadence::type=every-x-hours;hours=4;minutes=0\nfooter", got)
}

func TestSetLine_Appends(t *testing.T) {
	spec := Spec{Type: TypeDaily, Time: "09:00"}
	assert.Equal(t, "a\nb\n"+Line(spec), SetLine("a\nb", spec))
	assert.Equal(t, "a\n"+Line(spec)+"\n", SetLine("a\n", spec))
}

func TestStripLine(t *testing.T) {
	content := "a\nmeta::review_cadence::type=daily;hours=0;minutes=0\nb"
	assert.Equal(t, "a\nb", StripLine(content))
	assert.Equal(t, "a\nb", StripLine("a\nb"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Spec{Type: TypeEveryXHours, Hours: 3}.Validate())
	assert.NoError(t, Spec{Type: TypeWeekly, Time: "09:00", Days: []int{1}}.Validate())
	assert.Error(t, Spec{Type: "hourly"}.Validate())
	assert.Error(t, Spec{Type: TypeWeekly, Time: "09:00"}.Validate())
	assert.Error(t, Spec{Type: TypeDaily, Time: "9am"}.Validate())
	assert.Error(t, Spec{Type: TypeMonthly, Time: "09:00", Day: 32}.Validate())
	assert.Error(t, Spec{Type: TypeYearly, Time: "09:00", Day: 1}.Validate())
	assert.Error(t, Spec{Type: TypeEveryXHours, Hours: -1}.Validate())
}
