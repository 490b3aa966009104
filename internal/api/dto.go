package api

import (
	"github.com/starford/revue/internal/cadence"
	"github.com/starford/revue/internal/noteservice"
	"github.com/starford/revue/internal/watchlist"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// MoveNoteRequest is the request body for renaming a note.
type MoveNoteRequest struct {
	From string `json:"from" example:"inbox/a.md" validate:"required"`
	To   string `json:"to" example:"topics/a.md" validate:"required"`
}

// SnoozeRequest is the request body for snoozing a note.
type SnoozeRequest struct {
	Hours int `json:"hours" example:"3" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// ReviewEntry is a note with its resolved review schedule.
type ReviewEntry = watchlist.Entry

// WatchlistResponse is the classified watchlist plus bucket sizes.
type WatchlistResponse struct {
	watchlist.Buckets
	Counts watchlist.Counts `json:"counts" validate:"required"`
}

// CadenceSpec is the JSON form of a review cadence.
type CadenceSpec = cadence.Spec

// CadenceDescription explains a cadence line.
type CadenceDescription = cadence.Description
