// Package models defines the domain types for revue.
package models

import "time"

// Meta flag names recognised in note content (meta::<name> lines).
const (
	MetaWatch             = "watch"
	MetaReminder          = "reminder"
	MetaReminderDismissed = "reminder_dismissed"
	MetaOverduePriority   = "review_overdue_priority"
	MetaReviewCadence     = "review_cadence"
)

// Flags are the review-related meta flags of a note.
type Flags struct {
	Watch     bool `json:"watch"`
	Reminder  bool `json:"reminder"`
	Dismissed bool `json:"reminder_dismissed"`
	Priority  bool `json:"priority"`
}

// Tracked reports whether the note takes part in the review system at all.
func (f Flags) Tracked() bool {
	return f.Watch || f.Reminder
}

// WatchedNote is a note as seen by the review engine.
type WatchedNote struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"-"`
	Flags        Flags     `json:"flags"`
	WatchedSince time.Time `json:"watched_since,omitzero"`
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
