// Package watchlist sorts watched notes into due, snoozed, and reminder buckets.
package watchlist

import (
	"sort"
	"time"

	"github.com/starford/revue/internal/cadence"
	"github.com/starford/revue/internal/models"
	"github.com/starford/revue/internal/reviews"
)

// Entry is a classified note with its schedule resolved.
type Entry struct {
	Note         models.WatchedNote `json:"note"`
	Cadence      cadence.Spec       `json:"cadence"`
	Summary      string             `json:"summary"`
	LastReview   time.Time          `json:"last_review,omitzero"`
	SnoozedUntil time.Time          `json:"snoozed_until,omitzero"`
	NextDue      time.Time          `json:"next_due"`
	Due          bool               `json:"due"`
	Remaining    string             `json:"remaining"`
	Elapsed      string             `json:"elapsed"`
	Until        string             `json:"until"`
}

// Buckets is the classification of a note collection at one instant.
type Buckets struct {
	Overdue         []Entry `json:"overdue"`
	DueReminders    []Entry `json:"due_reminders"`
	NotDueReminders []Entry `json:"not_due_reminders"`
	Snoozed         []Entry `json:"snoozed"`
}

// Resolve computes the schedule of a single note.
func Resolve(note models.WatchedNote, snap reviews.Snapshot, now time.Time) Entry {
	spec := cadence.FromContent(note.Content)
	last := snap.LastReview(note.ID)
	snoozed := snap.SnoozedUntil(note.ID)
	next := cadence.EffectiveDue(spec, last, snoozed, now)

	return Entry{
		Note:         note,
		Cadence:      spec,
		Summary:      cadence.Summary(spec),
		LastReview:   last,
		SnoozedUntil: snoozed,
		NextDue:      next,
		Due:          note.Flags.Watch && !note.Flags.Dismissed && !next.After(now),
		Remaining:    remaining(last, snoozed, next, spec, now),
		Elapsed:      cadence.FormatTimeElapsed(last, now),
		Until:        cadence.FormatUntil(next, now),
	}
}

// remaining renders the countdown. A snoozed note counts down to its override
// even when it was never reviewed.
func remaining(last, snoozed, next time.Time, spec cadence.Spec, now time.Time) string {
	if snoozed.IsZero() {
		return cadence.FormatTimeRemaining(last, spec, now)
	}
	if !next.After(now) {
		return "Needs review now"
	}
	return "Snoozed: " + cadence.FormatUntil(next, now)
}

// IsDue reports whether a watched, non-dismissed note has reached its next
// review.
func IsDue(note models.WatchedNote, snap reviews.Snapshot, now time.Time) bool {
	if !note.Flags.Watch || note.Flags.Dismissed {
		return false
	}
	return Resolve(note, snap, now).Due
}

// Classify partitions notes relative to now. Overdue notes flagged with
// review_overdue_priority come first; otherwise input order is kept.
func Classify(notes []models.WatchedNote, snap reviews.Snapshot, now time.Time) Buckets {
	b := Buckets{
		Overdue:         []Entry{},
		DueReminders:    []Entry{},
		NotDueReminders: []Entry{},
		Snoozed:         []Entry{},
	}

	for _, n := range notes {
		if !n.Flags.Tracked() {
			continue
		}
		e := Resolve(n, snap, now)
		f := n.Flags

		switch {
		case e.Due && !f.Reminder:
			b.Overdue = append(b.Overdue, e)
		case e.Due && f.Reminder:
			b.DueReminders = append(b.DueReminders, e)
		}
		if f.Reminder && !f.Dismissed && !e.Due {
			b.NotDueReminders = append(b.NotDueReminders, e)
		}
		if f.Watch && !f.Reminder && !e.Due {
			b.Snoozed = append(b.Snoozed, e)
		}
	}

	sort.SliceStable(b.Overdue, func(i, j int) bool {
		return b.Overdue[i].Note.Flags.Priority && !b.Overdue[j].Note.Flags.Priority
	})
	return b
}

// Counts summarises bucket sizes.
type Counts struct {
	Overdue         int `json:"overdue"`
	DueReminders    int `json:"due_reminders"`
	NotDueReminders int `json:"not_due_reminders"`
	Snoozed         int `json:"snoozed"`
}

// Counts returns the size of each bucket.
func (b Buckets) Counts() Counts {
	return Counts{
		Overdue:         len(b.Overdue),
		DueReminders:    len(b.DueReminders),
		NotDueReminders: len(b.NotDueReminders),
		Snoozed:         len(b.Snoozed),
	}
}

// Membership returns the note ids of every bucket in order. Two
// classifications with equal membership render the same lists.
func (b Buckets) Membership() [4][]string {
	ids := func(es []Entry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Note.ID
		}
		return out
	}
	return [4][]string{ids(b.Overdue), ids(b.DueReminders), ids(b.NotDueReminders), ids(b.Snoozed)}
}
