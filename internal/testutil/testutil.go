// Package testutil provides shared test helpers for setting up vaults,
// databases and review history.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/revue/internal/index"
	"github.com/starford/revue/internal/reviews"
	"github.com/starford/revue/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "revue-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Env bundles a vault, its index and a review history stored in the index.
type Env struct {
	Dir     string
	Store   storage.Provider
	DB      *index.DB
	History *reviews.History
	Clock   *Clock
}

// NewEnv creates an Env whose clock starts at now.
func NewEnv(t *testing.T, now time.Time) *Env {
	t.Helper()
	dir, store := TestVault(t)
	db := TestDB(t)
	return &Env{
		Dir:     dir,
		Store:   store,
		DB:      db,
		History: reviews.NewHistory(db),
		Clock:   NewClock(now),
	}
}

// WriteNote writes a note into the vault and indexes it.
func (e *Env) WriteNote(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(filepath.Join(e.Dir, path)), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(e.Dir, path), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := index.IndexFile(e.DB, path, []byte(content)); err != nil {
		t.Fatal(err)
	}
}

// ReadNote returns a vault file's content.
func (e *Env) ReadNote(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.Dir, path))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock reading now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
