package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/starford/revue/internal/models"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Path         string
	Title        string
	Checksum     string
	Flags        models.Flags
	Cadence      string
	WatchedSince time.Time
	UpdatedAt    time.Time
}

// Flag filters accepted by ListNotes.
const (
	FilterTracked   = "tracked"
	FilterWatch     = "watch"
	FilterReminder  = "reminder"
	FilterDismissed = "dismissed"
	FilterPriority  = "priority"
)

// ListFilter narrows and orders ListNotes.
type ListFilter struct {
	Limit  int
	Offset int
	Flag   string
	Sort   string
}

var noteColumns = []string{
	"path", "title", "checksum", "watch", "reminder", "dismissed", "priority",
	"cadence", "watched_since", "updated_at",
}

// UpsertNote inserts or replaces a note row together with its raw content.
func (db *DB) UpsertNote(n NoteRow, content string) error {
	var since sql.NullTime
	if !n.WatchedSince.IsZero() {
		since = sql.NullTime{Time: n.WatchedSince, Valid: true}
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now()
	}

	_, err := db.conn.Exec(`
		INSERT INTO notes (path, title, checksum, content, watch, reminder, dismissed, priority, cadence, watched_since, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title         = excluded.title,
			checksum      = excluded.checksum,
			content       = excluded.content,
			watch         = excluded.watch,
			reminder      = excluded.reminder,
			dismissed     = excluded.dismissed,
			priority      = excluded.priority,
			cadence       = excluded.cadence,
			watched_since = excluded.watched_since,
			updated_at    = excluded.updated_at
	`, n.Path, n.Title, n.Checksum, content,
		n.Flags.Watch, n.Flags.Reminder, n.Flags.Dismissed, n.Flags.Priority,
		n.Cadence, since, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}
	return nil
}

// DeleteNote removes a note row.
func (db *DB) DeleteNote(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetNote returns the row for path, or nil when it is not indexed.
func (db *DB) GetNote(path string) (*NoteRow, error) {
	row := sq.Select(noteColumns...).From("notes").Where(sq.Eq{"path": path}).
		RunWith(db.conn).QueryRow()
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	return n, nil
}

// ListNotes returns one page of notes and the total matching the filter.
func (db *DB) ListNotes(f ListFilter) ([]NoteRow, int, error) {
	where := flagWhere(f.Flag)

	countQ := sq.Select("count(*)").From("notes")
	if where != nil {
		countQ = countQ.Where(where)
	}
	var total int
	if err := countQ.RunWith(db.conn).QueryRow().Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q := sq.Select(noteColumns...).From("notes").
		OrderBy(sortClause(f.Sort)).
		Limit(uint64(limit)).
		Offset(uint64(max(f.Offset, 0)))
	if where != nil {
		q = q.Where(where)
	}

	rows, err := q.RunWith(db.conn).Query()
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("index: scan note: %w", err)
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// ListTracked returns every watched or reminder note with its content,
// ordered by path.
func (db *DB) ListTracked() ([]models.WatchedNote, error) {
	rows, err := sq.Select("path", "title", "content", "watch", "reminder", "dismissed", "priority", "watched_since").
		From("notes").
		Where(flagWhere(FilterTracked)).
		OrderBy("path").
		RunWith(db.conn).Query()
	if err != nil {
		return nil, fmt.Errorf("index: list tracked: %w", err)
	}
	defer rows.Close()

	var out []models.WatchedNote
	for rows.Next() {
		var (
			n     models.WatchedNote
			since sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content,
			&n.Flags.Watch, &n.Flags.Reminder, &n.Flags.Dismissed, &n.Flags.Priority, &since); err != nil {
			return nil, fmt.Errorf("index: scan tracked: %w", err)
		}
		if since.Valid {
			n.WatchedSince = since.Time
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// AllChecksums returns path -> checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*NoteRow, error) {
	var (
		n     NoteRow
		since sql.NullTime
	)
	err := s.Scan(&n.Path, &n.Title, &n.Checksum,
		&n.Flags.Watch, &n.Flags.Reminder, &n.Flags.Dismissed, &n.Flags.Priority,
		&n.Cadence, &since, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if since.Valid {
		n.WatchedSince = since.Time
	}
	return &n, nil
}

func flagWhere(flag string) sq.Sqlizer {
	switch flag {
	case FilterTracked:
		return sq.Or{sq.Eq{"watch": 1}, sq.Eq{"reminder": 1}}
	case FilterWatch:
		return sq.Eq{"watch": 1}
	case FilterReminder:
		return sq.Eq{"reminder": 1}
	case FilterDismissed:
		return sq.Eq{"dismissed": 1}
	case FilterPriority:
		return sq.Eq{"priority": 1}
	}
	return nil
}

func sortClause(sort string) string {
	switch sort {
	case "updated_at":
		return "updated_at DESC"
	case "title":
		return "title COLLATE NOCASE, path"
	case "watched_since":
		return "watched_since DESC, path"
	}
	return "path"
}
