package noteservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/revue/internal/apperr"
	"github.com/starford/revue/internal/cadence"
	"github.com/starford/revue/internal/models"
	"github.com/starford/revue/internal/parser"
	"github.com/starford/revue/internal/storage"
	"github.com/starford/revue/internal/watchlist"
)

// Watchlist classifies every watched or reminder note at the current time.
func (s *Service) Watchlist(_ context.Context) (watchlist.Buckets, error) {
	notes, err := s.db.ListTracked()
	if err != nil {
		return watchlist.Buckets{}, err
	}
	snap, err := s.history.Load()
	if err != nil {
		return watchlist.Buckets{}, err
	}
	return watchlist.Classify(notes, snap, s.Now()), nil
}

// Status resolves the schedule of a single note.
func (s *Service) Status(_ context.Context, id string) (watchlist.Entry, error) {
	id, err := storage.NoteID(id)
	if err != nil {
		return watchlist.Entry{}, err
	}
	data, err := s.read(id)
	if err != nil {
		return watchlist.Entry{}, err
	}
	snap, err := s.history.Load()
	if err != nil {
		return watchlist.Entry{}, err
	}
	return watchlist.Resolve(parser.Note(id, data), snap, s.Now()), nil
}

// MarkReviewed records a review of a tracked note now.
func (s *Service) MarkReviewed(ctx context.Context, id string) (watchlist.Entry, error) {
	id, err := storage.NoteID(id)
	if err != nil {
		return watchlist.Entry{}, err
	}
	if err := s.requireTracked(id); err != nil {
		return watchlist.Entry{}, err
	}
	if err := s.history.MarkReviewed(id, s.now()); err != nil {
		return watchlist.Entry{}, err
	}
	s.emit(ReviewMarked, id)
	return s.Status(ctx, id)
}

// RemoveReview forgets the note's last review and snooze. Unknown ids are a
// no-op so stale history can always be cleared.
func (s *Service) RemoveReview(_ context.Context, id string) error {
	id, err := storage.NoteID(id)
	if err != nil {
		return err
	}
	if err := s.history.RemoveReview(id); err != nil {
		return err
	}
	s.emit(ReviewUnmarked, id)
	return nil
}

// Snooze pushes a tracked note's next review to now + hours.
func (s *Service) Snooze(ctx context.Context, id string, hours int) (watchlist.Entry, error) {
	id, err := storage.NoteID(id)
	if err != nil {
		return watchlist.Entry{}, err
	}
	if hours <= 0 {
		return watchlist.Entry{}, fmt.Errorf("hours must be positive: %w", apperr.ErrInvalid)
	}
	if err := s.requireTracked(id); err != nil {
		return watchlist.Entry{}, err
	}
	until := s.now().Add(time.Duration(hours) * time.Hour)
	if err := s.history.Snooze(id, until); err != nil {
		return watchlist.Entry{}, err
	}
	s.emit(ReviewSnoozed, id)
	return s.Status(ctx, id)
}

// SetCadence validates spec and writes it into the note, replacing any
// existing cadence line in place.
func (s *Service) SetCadence(ctx context.Context, id string, spec cadence.Spec) (watchlist.Entry, error) {
	id, err := storage.NoteID(id)
	if err != nil {
		return watchlist.Entry{}, err
	}
	spec.Implicit = false
	if err := spec.Validate(); err != nil {
		return watchlist.Entry{}, fmt.Errorf("%v: %w", err, apperr.ErrInvalid)
	}
	data, err := s.read(id)
	if err != nil {
		return watchlist.Entry{}, err
	}
	updated := cadence.SetLine(string(data), spec)
	if err := s.persist(id, []byte(updated)); err != nil {
		return watchlist.Entry{}, err
	}
	s.emit(ReviewCadence, id)
	return s.Status(ctx, id)
}

// Watch adds a meta::watch line dated today. A note without a cadence line
// also gets the default interval written out.
func (s *Service) Watch(ctx context.Context, id string) (watchlist.Entry, error) {
	id, err := storage.NoteID(id)
	if err != nil {
		return watchlist.Entry{}, err
	}
	data, err := s.read(id)
	if err != nil {
		return watchlist.Entry{}, err
	}
	content := string(data)
	changed := false

	if !parser.HasMeta(content, models.MetaWatch) {
		line := "meta::" + models.MetaWatch + "::" + s.Now().Format(time.DateOnly)
		content = parser.AppendLine(content, line)
		changed = true
	}
	if _, ok := cadence.Parse(content); !ok {
		content = cadence.SetLine(content, cadence.NewInterval(0, s.defaultHours, 0))
		changed = true
	}

	if changed {
		if err := s.persist(id, []byte(content)); err != nil {
			return watchlist.Entry{}, err
		}
		s.emit(ReviewWatched, id)
	}
	return s.Status(ctx, id)
}

// Unwatch removes the watch and cadence lines. Review history is kept so a
// re-watched note resumes where it left off.
func (s *Service) Unwatch(_ context.Context, id string) error {
	id, err := storage.NoteID(id)
	if err != nil {
		return err
	}
	data, err := s.read(id)
	if err != nil {
		return err
	}
	content := string(data)
	if !parser.HasMeta(content, models.MetaWatch) {
		return fmt.Errorf("%s: %w", id, apperr.ErrNotWatched)
	}
	content = cadence.StripLine(parser.StripMeta(content, models.MetaWatch))
	if err := s.persist(id, []byte(content)); err != nil {
		return err
	}
	s.emit(ReviewUnwatched, id)
	return nil
}

func (s *Service) requireTracked(id string) error {
	row, err := s.db.GetNote(id)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%s: %w", id, apperr.ErrNotFound)
	}
	if !row.Flags.Tracked() {
		return fmt.Errorf("%s: %w", id, apperr.ErrNotWatched)
	}
	return nil
}
