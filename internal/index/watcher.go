package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/revue/internal/storage"
)

// Event kinds reported to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// reconcileDelay debounces the reconciliation pass that follows renames.
const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, path string)

// watcher keeps the index in step with a vault directory.
type watcher struct {
	db     NoteIndex
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
}

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation, so review surfaces can refresh when a
// note gains or loses its watch flags or cadence line.
//
// Directories created at runtime are added to the watch list. fsnotify only
// reports the old path of a rename; a debounced reconciliation pass picks up
// the new one.
func Watch(ctx context.Context, db NoteIndex, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, vaultRoot); err != nil {
		return err
	}

	w := &watcher{db: db, store: store, root: vaultRoot, logger: logger, cb: cb}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	var (
		reconcileTimer *time.Timer
		reconcileCh    <-chan time.Time
	)
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name), slog.String("error", addErr.Error()))
					}
					w.indexDir(ev.Name)
					continue
				}
			}
			if w.handle(ev) {
				scheduleReconcile()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies one file event and reports whether a reconciliation pass
// is needed.
func (w *watcher) handle(ev fsnotify.Event) bool {
	rel, ok := w.noteID(ev.Name)
	if !ok {
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := EventUpdated
		if ev.Op&fsnotify.Create != 0 {
			kind = EventCreated
		}
		w.index(rel, kind)

	case ev.Op&fsnotify.Remove != 0:
		w.remove(rel)

	case ev.Op&fsnotify.Rename != 0:
		w.remove(rel)
		return true
	}
	return false
}

func (w *watcher) index(rel, kind string) bool {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return false
	}
	if cs, _ := w.db.GetChecksum(rel); cs == storage.Checksum(data) {
		return false
	}
	if err := IndexFile(w.db, rel, data); err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return false
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	w.emit(kind, rel)
	return true
}

func (w *watcher) remove(rel string) {
	if err := w.db.DeleteNote(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.emit(EventDeleted, rel)
}

// reconcile removes index entries without a file and indexes files the index
// does not know about.
func (w *watcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	onDisk := make(map[string]string, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := onDisk[p]; !ok {
			w.remove(p)
		}
	}
	for p, cs := range onDisk {
		if checksums[p] != cs {
			w.index(p, EventCreated)
		}
	}
}

// indexDir indexes the notes already present in a newly created directory.
func (w *watcher) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, ok := w.noteID(path); ok {
			w.index(rel, EventCreated)
		}
		return nil
	})
}

func (w *watcher) emit(kind, rel string) {
	if w.cb != nil {
		w.cb(kind, rel)
	}
}

// noteID maps an absolute event path to the note id the index and review
// history use. Temp files and hidden paths are not notes.
func (w *watcher) noteID(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || !storage.IsNoteFile(rel) {
		return "", false
	}
	id, err := storage.NoteID(rel)
	if err != nil {
		return "", false
	}
	return id, true
}

// addDirsRecursive adds root and its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
