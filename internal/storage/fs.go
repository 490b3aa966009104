package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/revue/internal/models"
)

// FS implements Provider over a local vault directory. Every path it accepts
// or returns is a note id (see NoteID), so ids read back from List match the
// keys review history was written under.
type FS struct {
	root string
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// locate turns a note id into an absolute path under root.
func (f *FS) locate(id string) (string, string, error) {
	id, err := NoteID(id)
	if err != nil {
		return "", "", err
	}
	abs := filepath.Join(f.root, filepath.FromSlash(id))
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", "", fmt.Errorf("%w: %q escapes the vault", ErrInvalidID, id)
	}
	return id, abs, nil
}

// locateNote is locate for paths that are written to, which must be notes.
func (f *FS) locateNote(id string) (string, string, error) {
	id, abs, err := f.locate(id)
	if err != nil {
		return "", "", err
	}
	if !IsNoteFile(id) {
		return "", "", fmt.Errorf("%w: %q is not a .md note", ErrInvalidID, id)
	}
	return id, abs, nil
}

// List returns metadata for every note under dir ("" for the whole vault).
// Hidden files and directories are skipped.
func (f *FS) List(dir string) ([]models.NoteMetadata, error) {
	base := f.root
	if dir != "" {
		_, abs, err := f.locate(dir)
		if err != nil {
			return nil, err
		}
		base = abs
	}

	var out []models.NoteMetadata
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsNoteFile(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, models.NoteMetadata{
			Path:      filepath.ToSlash(rel),
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a note.
func (f *FS) Read(id string) ([]byte, error) {
	id, abs, err := f.locate(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", id, err)
	}
	return data, nil
}

// Write replaces a note atomically: temp file, fsync, rename.
func (f *FS) Write(id string, content []byte) error {
	id, abs, err := f.locateNote(id)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".revue-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write %s: %w", id, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: commit %s: %w", id, err)
	}
	committed = true
	return nil
}

// Delete removes a note.
func (f *FS) Delete(id string) error {
	id, abs, err := f.locate(id)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	return nil
}

// Move renames a note, creating the target directory when needed.
func (f *FS) Move(from, to string) error {
	from, absFrom, err := f.locate(from)
	if err != nil {
		return err
	}
	to, absTo, err := f.locateNote(to)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absTo), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absFrom, absTo); err != nil {
		return fmt.Errorf("storage: move %s to %s: %w", from, to, err)
	}
	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of a note's content. It is
// the value clients send back in If-Match.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
