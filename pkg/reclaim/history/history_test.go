package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Append(Record{Kind: KindScan, Root: "/projects"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Append(Record{
			Kind:      KindScan,
			Root:      "/projects",
			Entries:   i,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	records, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 2, records[0].Entries)
	assert.Equal(t, 1, records[1].Entries)
	assert.Equal(t, 0, records[2].Entries)
}

func TestListLimit(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.Append(Record{
			Kind:      KindExecution,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := store.List(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGet(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Append(Record{Kind: KindExecution, PlanFile: "plan.yaml", SpaceFreed: 4096})
	require.NoError(t, err)

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "plan.yaml", got.PlanFile)
	assert.Equal(t, int64(4096), got.SpaceFreed)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrune(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := store.Append(Record{
			Kind:      KindScan,
			Entries:   i,
			Timestamp: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	// Drops the two records older than June 3rd.
	removed, err := store.Prune(base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	records, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3, records[0].Entries)
	assert.Equal(t, 2, records[1].Entries)
}

func TestPruneEmpty(t *testing.T) {
	store := newTestStore(t)

	removed, err := store.Prune(time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRecordsSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	rec, err := store.Append(Record{Kind: KindScan, Root: "/data"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "/data", got.Root)
}
