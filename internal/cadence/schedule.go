package cadence

import "time"

// Search caps for the calendar scans. Weekly scans two weeks, monthly two
// years (a day-31 cadence skips at most two short months in a row), yearly
// eight years (enough to reach the next Feb 29).
const (
	weeklyScanDays   = 14
	monthlyScanLimit = 24
	yearlyScanLimit  = 8
)

// NextDue returns when a note with spec and lastReview should next be
// reviewed. A zero lastReview means the note was never reviewed.
//
// Calendar cadences anchor on base, the later of now and a future-dated
// lastReview, and always return an instant strictly after base. Calendar
// fields are read in now's location. Only
// every-x-hours returns now for a note that was never reviewed.
func NextDue(spec Spec, lastReview, now time.Time) time.Time {
	if !spec.Type.Valid() {
		spec = Default()
	}

	base := now
	if !lastReview.IsZero() && lastReview.After(now) {
		base = lastReview.In(now.Location())
	}

	switch spec.Type {
	case TypeDaily:
		return nextDaily(spec, base)
	case TypeWeekly:
		return nextWeekly(spec, base)
	case TypeMonthly:
		return nextMonthly(spec, base)
	case TypeYearly:
		return nextYearly(spec, base)
	default:
		if lastReview.IsZero() {
			return now
		}
		return lastReview.Add(Interval(spec))
	}
}

// EffectiveDue is NextDue unless the note is snoozed, in which case the snooze
// override wins until the note is reviewed again.
func EffectiveDue(spec Spec, lastReview, snoozedUntil, now time.Time) time.Time {
	if !snoozedUntil.IsZero() {
		return snoozedUntil
	}
	return NextDue(spec, lastReview, now)
}

// Interval returns the every-x-hours interval of spec. Negative fields count
// as zero.
func Interval(spec Spec) time.Duration {
	return time.Duration(max(spec.Hours, 0))*time.Hour +
		time.Duration(max(spec.Minutes, 0))*time.Minute
}

func nextDaily(spec Spec, base time.Time) time.Time {
	c := atClock(spec, base)
	if !c.After(base) {
		c = c.AddDate(0, 0, 1)
	}
	return c
}

func nextWeekly(spec Spec, base time.Time) time.Time {
	start := atClock(spec, base)
	var c time.Time
	for i := 0; i < weeklyScanDays; i++ {
		c = start.AddDate(0, 0, i)
		if spec.hasWeekday(int(c.Weekday())) && c.After(base) {
			return c
		}
	}
	return c
}

func nextMonthly(spec Spec, base time.Time) time.Time {
	h, m := spec.clock()
	day := clamp(spec.Day, 1, 31)
	year, month := base.Year(), base.Month()

	var c time.Time
	for i := 0; i < monthlyScanLimit; i++ {
		c = time.Date(year, month+time.Month(i), day, h, m, 0, 0, base.Location())
		// time.Date normalises Feb 31 into March; that month has no such day.
		if c.Day() == day && c.After(base) {
			return c
		}
	}
	return c
}

func nextYearly(spec Spec, base time.Time) time.Time {
	h, m := spec.clock()
	day := clamp(spec.Day, 1, 31)
	month := time.Month(clamp(spec.Month, 1, 12))

	var c time.Time
	for i := 0; i < yearlyScanLimit; i++ {
		c = time.Date(base.Year()+i, month, day, h, m, 0, 0, base.Location())
		if c.Month() == month && c.Day() == day && c.After(base) {
			return c
		}
	}
	return c
}

// atClock returns base's calendar date at the spec's time of day.
func atClock(spec Spec, base time.Time) time.Time {
	h, m := spec.clock()
	return time.Date(base.Year(), base.Month(), base.Day(), h, m, 0, 0, base.Location())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
