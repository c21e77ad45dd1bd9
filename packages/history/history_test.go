package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, Entry{
		ID:        "req-1",
		Method:    "GET",
		URL:       "http://example.com/",
		Request:   "GET / HTTP/1.1\r\nHost: example.com\r\nConnection: close\r\n\r\n",
		Response:  "HTTP/1.1 200 OK\r\n\r\nhello",
		Duration:  75 * time.Millisecond,
		CreatedAt: created,
	}))

	e, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "GET", e.Method)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\nhello", e.Response)
	assert.Equal(t, 75*time.Millisecond, e.Duration)
	assert.True(t, created.Equal(e.CreatedAt))
	assert.Empty(t, e.Error)
}

func TestStore_RecentNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Record(ctx, Entry{
			ID:        id,
			Method:    "POST",
			URL:       "http://example.com/" + id,
			Error:     "No data",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
	assert.Equal(t, "No data", entries[0].Error)
}

func TestStore_DuplicateID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Entry{ID: "dup", Method: "GET", URL: "http://x/"}))
	assert.Error(t, store.Record(ctx, Entry{ID: "dup", Method: "GET", URL: "http://x/"}))
}

func TestStore_GetMissing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOpen_Prefixes(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"sqlite://" + filepath.Join(dir, "a.db"), "sqlite:" + filepath.Join(dir, "b.db")} {
		store, err := Open(p)
		require.NoError(t, err)
		require.NoError(t, store.Close())
	}

	_, err := Open("  ")
	assert.Error(t, err)
}
