package geofence_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrail/sentinel-agent/internal/geofence"
)

func TestHTTPStore_FetchDecodesRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/geofences", r.URL.Path)
		assert.Equal(t, "latitude,longitude,radius", r.URL.Query().Get("select"))
		assert.Equal(t, "test-api-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"latitude": 20.0, "longitude": 78.0, "radius": 50},
			{"latitude": 12.97, "longitude": 77.59, "radius": 120.5}
		]`))
	}))
	defer server.Close()

	store := geofence.NewHTTPStore(server.URL, "test-api-key", 2*time.Second)

	regions, err := store.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, 20.0, regions[0].Latitude)
	assert.Equal(t, 78.0, regions[0].Longitude)
	assert.Equal(t, 50.0, regions[0].RadiusMeters)
	assert.Equal(t, 120.5, regions[1].RadiusMeters)
}

func TestHTTPStore_FetchEmptyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	store := geofence.NewHTTPStore(server.URL, "test-api-key", 2*time.Second)

	regions, err := store.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestHTTPStore_FetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := geofence.NewHTTPStore(server.URL, "bad-key", 2*time.Second)

	regions, err := store.Fetch(context.Background())
	assert.Error(t, err)
	assert.Nil(t, regions)
	assert.Contains(t, err.Error(), "status 401")
}

func TestHTTPStore_FetchUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	store := geofence.NewHTTPStore(server.URL, "test-api-key", time.Second)

	_, err := store.Fetch(context.Background())
	assert.Error(t, err)
}
