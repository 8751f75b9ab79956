package geocode

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetsignal/streetsignal/internal/model"
)

func newTestSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "geocode.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() }) //nolint:errcheck
	return cache
}

func TestSQLiteCache_PutGet(t *testing.T) {
	cache := newTestSQLiteCache(t)
	ctx := context.Background()

	coord := model.Coordinate{Lat: 51.5175, Lon: -0.0662}
	require.NoError(t, cache.Put(ctx, "E1", coord))

	got, ok, err := cache.Get(ctx, "E1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, coord, got)
}

func TestSQLiteCache_Miss(t *testing.T) {
	cache := newTestSQLiteCache(t)

	_, ok, err := cache.Get(context.Background(), "SW1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteCache_WriteOnce(t *testing.T) {
	cache := newTestSQLiteCache(t)
	ctx := context.Background()

	first := model.Coordinate{Lat: 51.5175, Lon: -0.0662}
	require.NoError(t, cache.Put(ctx, "E1", first))

	// A second Put for the same district must not overwrite the first.
	require.NoError(t, cache.Put(ctx, "E1", model.Coordinate{Lat: 99, Lon: 99}))

	got, ok, err := cache.Get(ctx, "E1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, got)
}

func TestSQLiteCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geocode.db")
	ctx := context.Background()
	coord := model.Coordinate{Lat: 51.4613, Lon: -0.1156}

	cache, err := NewSQLiteCache(path)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, "SW1", coord))
	require.NoError(t, cache.Close())

	reopened, err := NewSQLiteCache(path)
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck

	got, ok, err := reopened.Get(ctx, "SW1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, coord, got)
}
