package index

import (
	"log/slog"
	"time"

	"github.com/starford/revue/internal/parser"
	"github.com/starford/revue/internal/storage"
)

// Sync walks the note store and brings the index up to date:
//   - new/changed notes are parsed and upserted
//   - notes removed from the store are deleted from the index
func Sync(db NoteIndex, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		seen[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := seen[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// Row builds the index row for a note's raw content.
func Row(path string, data []byte) NoteRow {
	res := parser.Parse(data)
	return NoteRow{
		Path:         path,
		Title:        res.Title,
		Checksum:     storage.Checksum(data),
		Flags:        res.Flags,
		Cadence:      res.CadenceLine,
		WatchedSince: res.WatchedSince,
		UpdatedAt:    time.Now(),
	}
}

// IndexFile parses data and upserts it into the index.
func IndexFile(db NoteIndex, path string, data []byte) error {
	return db.UpsertNote(Row(path, data), string(data))
}
