// Package cadence implements review cadences: the meta::review_cadence line
// codec, the next-due calculator, and the human-readable formatters built on
// top of them.
package cadence

import (
	"strconv"
	"strings"
)

// Type is the kind of schedule a cadence follows.
type Type string

// Cadence types.
const (
	TypeEveryXHours Type = "every-x-hours"
	TypeDaily       Type = "daily"
	TypeWeekly      Type = "weekly"
	TypeMonthly     Type = "monthly"
	TypeYearly      Type = "yearly"
)

// DefaultTime is the time-of-day anchor used when a spec carries none.
const DefaultTime = "09:00"

// DefaultHours is the interval of the implicit cadence.
const DefaultHours = 12

// Valid reports whether t is a known cadence type.
func (t Type) Valid() bool {
	switch t {
	case TypeEveryXHours, TypeDaily, TypeWeekly, TypeMonthly, TypeYearly:
		return true
	}
	return false
}

// Spec is the scheduling rule attached to a note.
type Spec struct {
	Type    Type   `json:"type"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Time    string `json:"time,omitempty"`
	Days    []int  `json:"days,omitempty"`
	Day     int    `json:"day,omitempty"`
	Month   int    `json:"month,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`

	// Extra holds keys this version does not interpret, kept for re-encoding.
	Extra map[string]string `json:"extra,omitempty"`

	// Implicit is set when the spec was not read from a note but substituted
	// by Default.
	Implicit bool `json:"implicit,omitempty"`
}

// Default returns the cadence applied to notes without a cadence line.
func Default() Spec {
	return Spec{Type: TypeEveryXHours, Hours: DefaultHours, Minutes: 0, Implicit: true}
}

// NewInterval builds an every-x-hours spec, folding days into hours.
func NewInterval(days, hours, minutes int) Spec {
	return Spec{
		Type:    TypeEveryXHours,
		Hours:   max(days, 0)*24 + max(hours, 0),
		Minutes: max(minutes, 0),
	}
}

// clock returns the spec's time-of-day anchor as hour and minute,
// falling back to DefaultTime for anything that does not parse.
func (s Spec) clock() (int, int) {
	if h, m, ok := parseClock(s.Time); ok {
		return h, m
	}
	h, m, _ := parseClock(DefaultTime)
	return h, m
}

func parseClock(v string) (int, int, bool) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// hasWeekday reports whether d is one of the spec's selected weekdays.
func (s Spec) hasWeekday(d int) bool {
	for _, v := range s.Days {
		if v == d {
			return true
		}
	}
	return false
}
