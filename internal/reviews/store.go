// Package reviews persists per-note review history on top of a plain
// key/value store: when each note was last reviewed and, when it is snoozed,
// the absolute time its next review has been pushed to.
package reviews

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Keys used in the underlying KV store. Each holds a JSON object mapping
// note id to an ISO-8601 timestamp.
const (
	ReviewsKey = "noteReviews"
	SnoozesKey = "noteSnoozes"
)

// TimestampLayout matches the ISO form browsers produce with toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// KV is the minimal key/value store the history is kept in.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// History reads and writes review timestamps.
//
// Writes inside one process are serialised. Separate processes sharing a KV
// race last-write-wins.
type History struct {
	kv KV
	mu sync.Mutex
}

// NewHistory creates a History backed by kv.
func NewHistory(kv KV) *History {
	return &History{kv: kv}
}

// Snapshot is a point-in-time copy of the history.
type Snapshot struct {
	Reviews map[string]time.Time
	Snoozes map[string]time.Time
}

// LastReview returns the note's last review, or the zero time.
func (s Snapshot) LastReview(id string) time.Time {
	return s.Reviews[id]
}

// SnoozedUntil returns the note's snooze override, or the zero time.
func (s Snapshot) SnoozedUntil(id string) time.Time {
	return s.Snoozes[id]
}

// Load reads the whole history.
func (h *History) Load() (Snapshot, error) {
	reviews, err := h.read(ReviewsKey)
	if err != nil {
		return Snapshot{}, err
	}
	snoozes, err := h.read(SnoozesKey)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Reviews: toTimes(reviews), Snoozes: toTimes(snoozes)}, nil
}

// MarkReviewed records now as the note's last review and ends any snooze.
func (h *History) MarkReviewed(id string, now time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.update(ReviewsKey, func(m map[string]string) { m[id] = formatTime(now) }); err != nil {
		return err
	}
	return h.update(SnoozesKey, func(m map[string]string) { delete(m, id) })
}

// RemoveReview drops the note's last review and any snooze.
func (h *History) RemoveReview(id string) error {
	return h.Forget(id)
}

// Snooze sets an absolute next-due override for the note. It stays in force
// until the note is marked reviewed or its review is removed.
func (h *History) Snooze(id string, until time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.update(SnoozesKey, func(m map[string]string) { m[id] = formatTime(until) })
}

// Forget removes every trace of the note from the history.
func (h *History) Forget(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.update(ReviewsKey, func(m map[string]string) { delete(m, id) }); err != nil {
		return err
	}
	return h.update(SnoozesKey, func(m map[string]string) { delete(m, id) })
}

// Rename moves the note's history from oldID to newID.
func (h *History) Rename(oldID, newID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	move := func(m map[string]string) {
		if v, ok := m[oldID]; ok {
			m[newID] = v
			delete(m, oldID)
		}
	}
	if err := h.update(ReviewsKey, move); err != nil {
		return err
	}
	return h.update(SnoozesKey, move)
}

// read returns the map stored under key. Missing or malformed JSON reads as
// an empty map.
func (h *History) read(key string) (map[string]string, error) {
	raw, ok, err := h.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("reviews: get %s: %w", key, err)
	}
	m := make(map[string]string)
	if !ok || raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return make(map[string]string), nil
	}
	return m, nil
}

func (h *History) update(key string, fn func(map[string]string)) error {
	m, err := h.read(key)
	if err != nil {
		return err
	}
	fn(m)
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("reviews: encode %s: %w", key, err)
	}
	if err := h.kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("reviews: set %s: %w", key, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTime accepts RFC 3339 timestamps with or without fractional seconds.
func ParseTime(v string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func toTimes(m map[string]string) map[string]time.Time {
	out := make(map[string]time.Time, len(m))
	for id, v := range m {
		if t, ok := ParseTime(v); ok {
			out[id] = t
		}
	}
	return out
}
