// Package storage defines where note files live. FS reads a local vault
// directory; the notesapi package offers a remote implementation.
package storage

import "github.com/starford/revue/internal/models"

// Provider is the interface for note file operations. Read returns an error
// wrapping os.ErrNotExist when the note is missing.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to vault root).
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to vault root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to vault root).
	Move(oldPath, newPath string) error
}
