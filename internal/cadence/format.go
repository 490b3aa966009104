package cadence

import (
	"fmt"
	"strings"
	"time"
)

// NeverReviewed is shown wherever a note has no review history.
const NeverReviewed = "Never reviewed"

// FormatTimeRemaining renders the countdown to the note's next review.
func FormatTimeRemaining(lastReview time.Time, spec Spec, now time.Time) string {
	if lastReview.IsZero() {
		return NeverReviewed
	}
	remaining := NextDue(spec, lastReview, now).Sub(now)
	if remaining <= 0 {
		return "Needs review now"
	}
	return "Next review in: " + shortDuration(remaining)
}

// shortDuration shows the two largest units of d: "5h 3m", "3m 12s" or "12s".
// Hours are not folded into days.
func shortDuration(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatTimeElapsed renders how long ago ts was, in the largest whole unit.
func FormatTimeElapsed(ts, now time.Time) string {
	if ts.IsZero() {
		return NeverReviewed
	}
	secs := int64(now.Sub(ts) / time.Second)
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%d seconds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%d minutes ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d hours ago", secs/3600)
	default:
		return fmt.Sprintf("%d days ago", secs/86400)
	}
}

// FormatUntil renders the distance from now to target as "in 1d 2h 3m",
// dropping leading zero units.
func FormatUntil(target, now time.Time) string {
	diff := target.Sub(now)
	if diff <= 0 {
		return "now"
	}
	mins := int64(diff / time.Minute)
	d := mins / (24 * 60)
	h := (mins % (24 * 60)) / 60
	m := mins % 60
	switch {
	case d > 0:
		return fmt.Sprintf("in %dd %dh %dm", d, h, m)
	case h > 0:
		return fmt.Sprintf("in %dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("in %dm", m)
	default:
		return "in <1m"
	}
}

// FormatDateTime renders t for display in its own location.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// Summary describes spec in one sentence, e.g. "Review daily at 09:00".
func Summary(spec Spec) string {
	if !spec.Type.Valid() {
		spec = Default()
	}

	clock := spec.Time
	if _, _, ok := parseClock(clock); !ok {
		clock = DefaultTime
	}

	var head string
	switch spec.Type {
	case TypeDaily:
		head = "Review daily at " + clock
	case TypeWeekly:
		var names []string
		for _, d := range spec.Days {
			if d >= 0 && d <= 6 {
				names = append(names, time.Weekday(d).String())
			}
		}
		if len(names) == 0 {
			head = "Review weekly at " + clock
		} else {
			head = "Review weekly on " + strings.Join(names, ", ") + " at " + clock
		}
	case TypeMonthly:
		head = fmt.Sprintf("Review monthly on day %d at %s", clamp(spec.Day, 1, 31), clock)
	case TypeYearly:
		head = fmt.Sprintf("Review yearly on %s %d at %s",
			time.Month(clamp(spec.Month, 1, 12)), clamp(spec.Day, 1, 31), clock)
	default:
		head = "Review every " + intervalText(spec)
	}

	parts := []string{head}
	if spec.Start != "" {
		parts = append(parts, "Starts: "+spec.Start)
	}
	if spec.End != "" {
		parts = append(parts, "Ends: "+spec.End)
	}
	return strings.Join(parts, " • ")
}

// intervalText renders an every-x-hours interval as "2d 3h 15m", omitting
// zero units.
func intervalText(spec Spec) string {
	hours := max(spec.Hours, 0)
	mins := max(spec.Minutes, 0)
	hours += mins / 60
	mins %= 60

	var parts []string
	if d := hours / 24; d > 0 {
		parts = append(parts, fmt.Sprintf("%dd", d))
	}
	if h := hours % 24; h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, " ")
}
