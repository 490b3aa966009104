package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/revue/internal/apperr"
)

// ErrInvalidID marks a path that cannot be a note id.
var ErrInvalidID = fmt.Errorf("note id: %w", apperr.ErrInvalid)

// NoteID normalises a vault-relative path into the id shared by the index
// and the review history: forward slashes, no "." or empty segments, no
// leading slash. Paths that leave the vault are rejected.
func NoteID(p string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if s == "" || strings.HasPrefix(s, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, p)
	}
	s = path.Clean(s)
	if s == "." || s == ".." || strings.HasPrefix(s, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, p)
	}
	return s, nil
}

// IsNoteFile reports whether rel, a path relative to the vault root, names a
// note: a .md file with no hidden segment. That excludes atomic-write temp
// files and tool directories such as .git or .obsidian.
func IsNoteFile(rel string) bool {
	rel = filepath.ToSlash(rel)
	if !strings.HasSuffix(rel, ".md") {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg != "." && seg != ".." && strings.HasPrefix(seg, ".") {
			return false
		}
	}
	return true
}
