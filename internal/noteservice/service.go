// Package noteservice coordinates note storage, the index and review
// history behind the HTTP, MCP and CLI surfaces.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/starford/revue/internal/apperr"
	"github.com/starford/revue/internal/index"
	"github.com/starford/revue/internal/models"
	"github.com/starford/revue/internal/parser"
	"github.com/starford/revue/internal/reviews"
	"github.com/starford/revue/internal/storage"
)

// Change kinds passed to the OnChange hook. They double as SSE event names.
const (
	NoteCreated     = "note.created"
	NoteUpdated     = "note.updated"
	NoteDeleted     = "note.deleted"
	ReviewMarked    = "review.marked"
	ReviewUnmarked  = "review.unmarked"
	ReviewSnoozed   = "review.snoozed"
	ReviewCadence   = "review.cadence"
	ReviewWatched   = "review.watched"
	ReviewUnwatched = "review.unwatched"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string              `json:"path"`
	Title       string              `json:"title"`
	Content     string              `json:"content"`
	Checksum    string              `json:"checksum"`
	Flags       models.Flags        `json:"flags"`
	Meta        map[string][]string `json:"meta"`
	Frontmatter map[string]any      `json:"frontmatter,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string       `json:"path"`
	Title     string       `json:"title"`
	Checksum  string       `json:"checksum"`
	Flags     models.Flags `json:"flags"`
	Cadence   string       `json:"cadence,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ChangeFunc is notified after every successful mutation.
type ChangeFunc func(kind, id string)

// Service coordinates storage, index and review history.
type Service struct {
	store        storage.Provider
	db           index.NoteIndex
	history      *reviews.History
	loc          *time.Location
	defaultHours int
	now          func() time.Time
	onChange     ChangeFunc
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone calendar cadences are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDefaultHours sets the interval written for notes watched without a
// cadence line.
func WithDefaultHours(h int) Option {
	return func(s *Service) {
		if h > 0 {
			s.defaultHours = h
		}
	}
}

// WithOnChange registers the mutation hook.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Service) { s.onChange = fn }
}

// NewService creates a new service.
func NewService(store storage.Provider, db index.NoteIndex, history *reviews.History, opts ...Option) *Service {
	s := &Service{
		store:        store,
		db:           db,
		history:      history,
		loc:          time.Local,
		defaultHours: 12,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetOnChange replaces the mutation hook after construction.
func (s *Service) SetOnChange(fn ChangeFunc) {
	s.onChange = fn
}

// Now returns the service clock in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// GetNote reads and parses a note.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	path, err := storage.NoteID(path)
	if err != nil {
		return nil, err
	}
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	return buildDetail(path, data), nil
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	path, err := storage.NoteID(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.persist(path, content); err != nil {
		return nil, err
	}
	s.emit(NoteCreated, path)
	return buildDetail(path, content), nil
}

// UpdateNote writes updated content. A non-empty ifMatch must equal the
// stored checksum.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	path, err := storage.NoteID(path)
	if err != nil {
		return nil, err
	}
	existing, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != storage.Checksum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.persist(path, content); err != nil {
		return nil, err
	}
	s.emit(NoteUpdated, path)
	return buildDetail(path, content), nil
}

// DeleteNote removes a note from storage and index and forgets its history.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	path, err := storage.NoteID(path)
	if err != nil {
		return err
	}
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.DeleteNote(path); err != nil {
		return err
	}
	if err := s.history.Forget(path); err != nil {
		return err
	}
	s.emit(NoteDeleted, path)
	return nil
}

// MoveNote renames a note and carries its review history along.
func (s *Service) MoveNote(_ context.Context, from, to string) (*NoteDetail, error) {
	from, err := storage.NoteID(from)
	if err != nil {
		return nil, err
	}
	to, err = storage.NoteID(to)
	if err != nil {
		return nil, err
	}
	data, err := s.read(from)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Read(to); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if err := s.db.DeleteNote(from); err != nil {
		return nil, err
	}
	if err := index.IndexFile(s.db, to, data); err != nil {
		return nil, err
	}
	if err := s.history.Rename(from, to); err != nil {
		return nil, err
	}
	s.emit(NoteDeleted, from)
	s.emit(NoteCreated, to)
	return buildDetail(to, data), nil
}

// ListNotes returns one page of indexed notes.
func (s *Service) ListNotes(_ context.Context, f index.ListFilter) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListNotes(f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Flags:     r.Flags,
			Cadence:   r.Cadence,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

func (s *Service) read(path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// persist writes content and re-indexes the note right away so review
// queries see the change before the file watcher does.
func (s *Service) persist(path string, content []byte) error {
	if err := s.store.Write(path, content); err != nil {
		return err
	}
	return index.IndexFile(s.db, path, content)
}

func (s *Service) emit(kind, id string) {
	if s.onChange != nil {
		s.onChange(kind, id)
	}
}

func buildDetail(path string, data []byte) *NoteDetail {
	res := parser.Parse(data)
	return &NoteDetail{
		Path:        path,
		Title:       res.Title,
		Content:     string(data),
		Checksum:    storage.Checksum(data),
		Flags:       res.Flags,
		Meta:        res.Meta,
		Frontmatter: res.Frontmatter,
		UpdatedAt:   time.Now(),
	}
}
