package cadence

import (
	"strings"
	"time"
)

// Description is a human-facing rendering of a cadence line.
type Description struct {
	Spec        Spec      `json:"spec"`
	Valid       bool      `json:"valid"`
	Error       string    `json:"error,omitempty"`
	Line        string    `json:"line"`
	Summary     string    `json:"summary"`
	NextDue     time.Time `json:"next_due"`
	NextDueText string    `json:"next_due_text"`
}

// Describe parses raw (a full meta line or just its key=value list) and
// reports the schedule a never-reviewed note with that line would follow.
// Lines that do not parse describe Default.
func Describe(raw string, now time.Time) Description {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, LinePrefix) {
		raw = LinePrefix + raw
	}

	d := Description{Valid: true}
	spec, ok := Parse(raw)
	if !ok {
		spec = Default()
		d.Valid = false
		d.Error = "unrecognised cadence type"
	} else if err := spec.Validate(); err != nil {
		d.Valid = false
		d.Error = err.Error()
	}

	d.Spec = spec
	d.Line = Line(spec)
	d.Summary = Summary(spec)
	d.NextDue = NextDue(spec, time.Time{}, now)
	d.NextDueText = FormatDateTime(d.NextDue)
	return d
}
