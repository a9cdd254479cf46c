package store

import (
	"context"
	"path/filepath"
	"testing"

	"tournament-tracker/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := NewDB(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db, zerolog.Nop())
}

func TestStore_InsertGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "teams", "TE111", Record{"id": "TE111", "name": "Soul"}))

	got, err := s.Get(ctx, "teams", "TE111")
	require.NoError(t, err)
	assert.Equal(t, "Soul", got["name"])

	require.NoError(t, s.Delete(ctx, "teams", "TE111"))

	_, err = s.Get(ctx, "teams", "TE111")
	require.ErrorIs(t, err, ErrRecordNotFound)

	err = s.Delete(ctx, "teams", "TE111")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStore_InsertUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "teams", "TE111", Record{"id": "TE111", "name": "Soul"}))
	require.NoError(t, s.Insert(ctx, "teams", "TE111", Record{"id": "TE111", "name": "Godlike"}))

	got, err := s.Get(ctx, "teams", "TE111")
	require.NoError(t, err)
	assert.Equal(t, "Godlike", got["name"])

	records, err := s.List(ctx, "teams")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_ListPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Insert(ctx, "announcements", id, Record{"id": id}))
	}

	records, err := s.List(ctx, "announcements")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0]["id"])
	assert.Equal(t, "a", records[1]["id"])
	assert.Equal(t, "b", records[2]["id"])
}

func TestStore_ListEmptyCollection(t *testing.T) {
	s := newTestStore(t)

	records, err := s.List(context.Background(), "winners")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "players", "PE100", Record{"id": "PE100"}))
	require.NoError(t, s.Insert(ctx, "teams", "PE100", Record{"id": "PE100"}))

	players, err := s.List(ctx, "players")
	require.NoError(t, err)
	assert.Len(t, players, 1)

	require.NoError(t, s.Delete(ctx, "players", "PE100"))
	_, err = s.Get(ctx, "teams", "PE100")
	require.NoError(t, err, "deleting from one collection must not touch another")
}

func TestStore_UpdateMerges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "tournaments", "t1", Record{"id": "t1", "status": "upcoming", "prize_pool": 5000.0}))

	next, err := s.Update(ctx, "tournaments", "t1", func(current Record) Record {
		current["status"] = "ongoing"
		return current
	})
	require.NoError(t, err)
	assert.Equal(t, "ongoing", next["status"])

	got, err := s.Get(ctx, "tournaments", "t1")
	require.NoError(t, err)
	assert.Equal(t, "ongoing", got["status"])
	assert.Equal(t, 5000.0, got["prize_pool"], "untouched fields survive the merge")

	_, err = s.Update(ctx, "tournaments", "missing", func(r Record) Record { return r })
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStore_ReplaceAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "winners", "old", Record{"id": "old"}))

	err := s.ReplaceAll(ctx, "winners",
		[]string{"w1", "w2"},
		[]Record{{"id": "w1", "position": 1.0}, {"id": "w2", "position": 2.0}})
	require.NoError(t, err)

	records, err := s.List(ctx, "winners")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "w1", records[0]["id"])
	assert.Equal(t, "w2", records[1]["id"])

	err = s.ReplaceAll(ctx, "winners", []string{"only-one"}, nil)
	require.Error(t, err, "mismatched ids and records must be rejected")
}
