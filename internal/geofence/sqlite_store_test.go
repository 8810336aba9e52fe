package geofence_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrail/sentinel-agent/internal/geofence"
	"github.com/safetrail/sentinel-agent/internal/models"
)

func newTestSQLiteStore(t *testing.T) *geofence.SQLiteStore {
	t.Helper()

	store, err := geofence.NewSQLiteStore(filepath.Join(t.TempDir(), "geofences.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_FreshDatabaseHasZeroFences(t *testing.T) {
	store := newTestSQLiteStore(t)

	// A device that has never synced must read as unfenced, not error.
	regions, err := store.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestSQLiteStore_ReplaceThenFetchRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	fences := []models.GeofenceRegion{
		{Latitude: 20.0, Longitude: 78.0, RadiusMeters: 50},
		{Latitude: 12.97, Longitude: 77.59, RadiusMeters: 120.5},
	}
	require.NoError(t, store.Replace(ctx, fences))

	regions, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, 20.0, regions[0].Latitude)
	assert.Equal(t, 78.0, regions[0].Longitude)
	assert.Equal(t, 50.0, regions[0].RadiusMeters)
	assert.Equal(t, 120.5, regions[1].RadiusMeters)
}

func TestSQLiteStore_ReplaceSwapsTheWholeSet(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, []models.GeofenceRegion{
		{Latitude: 1, Longitude: 1, RadiusMeters: 10},
		{Latitude: 2, Longitude: 2, RadiusMeters: 20},
	}))
	require.NoError(t, store.Replace(ctx, []models.GeofenceRegion{
		{Latitude: 3, Longitude: 3, RadiusMeters: 30},
	}))

	regions, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, 3.0, regions[0].Latitude)
}

func TestSQLiteStore_ReplaceWithEmptySetClearsFences(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, []models.GeofenceRegion{
		{Latitude: 1, Longitude: 1, RadiusMeters: 10},
	}))
	require.NoError(t, store.Replace(ctx, nil))

	regions, err := store.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, regions)
}
