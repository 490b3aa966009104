package reviews

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkReviewed_WritesISOTimestamp(t *testing.T) {
	kv := NewMemoryKV()
	h := NewHistory(kv)
	now := time.Date(2024, 1, 1, 12, 30, 0, 0, time.FixedZone("X", 3600))

	require.NoError(t, h.MarkReviewed("a.md", now))

	raw, ok, _ := kv.Get(ReviewsKey)
	require.True(t, ok)
	assert.JSONEq(t, `{"a.md":"2024-01-01T11:30:00.000Z"}`, raw)

	snap, err := h.Load()
	require.NoError(t, err)
	assert.True(t, snap.LastReview("a.md").Equal(now))
	assert.True(t, snap.LastReview("missing.md").IsZero())
}

func TestMarkReviewed_Idempotent(t *testing.T) {
	h := NewHistory(NewMemoryKV())
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	require.NoError(t, h.MarkReviewed("a.md", t1))
	require.NoError(t, h.MarkReviewed("a.md", t2))

	snap, err := h.Load()
	require.NoError(t, err)
	assert.Len(t, snap.Reviews, 1)
	assert.True(t, snap.LastReview("a.md").Equal(t2))
}

func TestSnooze_ClearedByReview(t *testing.T) {
	h := NewHistory(NewMemoryKV())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, h.Snooze("a.md", now.Add(3*time.Hour)))
	snap, _ := h.Load()
	assert.True(t, snap.SnoozedUntil("a.md").Equal(now.Add(3*time.Hour)))

	require.NoError(t, h.MarkReviewed("a.md", now))
	snap, _ = h.Load()
	assert.True(t, snap.SnoozedUntil("a.md").IsZero())
}

func TestRemoveReview(t *testing.T) {
	h := NewHistory(NewMemoryKV())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.MarkReviewed("a.md", now))
	require.NoError(t, h.MarkReviewed("b.md", now))
	require.NoError(t, h.Snooze("a.md", now.Add(time.Hour)))

	require.NoError(t, h.RemoveReview("a.md"))

	snap, _ := h.Load()
	assert.True(t, snap.LastReview("a.md").IsZero())
	assert.True(t, snap.SnoozedUntil("a.md").IsZero())
	assert.False(t, snap.LastReview("b.md").IsZero())
}

func TestRename(t *testing.T) {
	h := NewHistory(NewMemoryKV())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.MarkReviewed("old.md", now))

	require.NoError(t, h.Rename("old.md", "new.md"))

	snap, _ := h.Load()
	assert.True(t, snap.LastReview("old.md").IsZero())
	assert.True(t, snap.LastReview("new.md").Equal(now))
}

func TestLoad_MalformedJSONIsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(ReviewsKey, "{not json")
	_ = kv.Set(SnoozesKey, `{"a.md":"yesterday","b.md":"2024-01-01T00:00:00Z"}`)

	snap, err := NewHistory(kv).Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Reviews)
	assert.Len(t, snap.Snoozes, 1)
	assert.False(t, snap.SnoozedUntil("b.md").IsZero())
}

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingKV) Set(string, string) error         { return errors.New("disk gone") }

func TestLoad_PropagatesStoreErrors(t *testing.T) {
	h := NewHistory(failingKV{})
	_, err := h.Load()
	assert.ErrorContains(t, err, "disk gone")
	assert.Error(t, h.MarkReviewed("a.md", time.Now()))
}
