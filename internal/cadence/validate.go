package cadence

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validate checks a spec supplied by a user before it is written into a note.
// Specs read back from notes are never validated; the calculator tolerates
// whatever they contain.
func (s Spec) Validate() error {
	calendar := s.Type == TypeDaily || s.Type == TypeWeekly || s.Type == TypeMonthly || s.Type == TypeYearly
	return validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.Required, validation.In(
			TypeEveryXHours, TypeDaily, TypeWeekly, TypeMonthly, TypeYearly)),
		validation.Field(&s.Hours, validation.Min(0)),
		validation.Field(&s.Minutes, validation.Min(0)),
		validation.Field(&s.Time,
			validation.When(calendar, validation.Match(clockRe).Error("must be HH:MM"))),
		validation.Field(&s.Days,
			validation.When(s.Type == TypeWeekly, validation.Required),
			validation.Each(validation.Min(0), validation.Max(6))),
		validation.Field(&s.Day,
			validation.When(s.Type == TypeMonthly || s.Type == TypeYearly,
				validation.Required, validation.Min(1), validation.Max(31))),
		validation.Field(&s.Month,
			validation.When(s.Type == TypeYearly, validation.Required, validation.Min(1), validation.Max(12))),
		validation.Field(&s.Start, validation.Match(dateRe).Error("must be YYYY-MM-DD")),
		validation.Field(&s.End, validation.Match(dateRe).Error("must be YYYY-MM-DD")),
	)
}
