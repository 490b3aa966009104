package index

import (
	"github.com/starford/revue/internal/models"
	"github.com/starford/revue/internal/reviews"
)

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type NoteIndex interface {
	UpsertNote(n NoteRow, content string) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	GetNote(path string) (*NoteRow, error)
	ListNotes(f ListFilter) ([]NoteRow, int, error)
	ListTracked() ([]models.WatchedNote, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies NoteIndex and the review history KV at compile time.
var (
	_ NoteIndex  = (*DB)(nil)
	_ reviews.KV = (*DB)(nil)
)
