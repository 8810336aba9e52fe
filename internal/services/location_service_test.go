package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/services"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/pkg/location"
	"github.com/safetrail/sentinel-agent/tests/mocks"
)

func TestLocationService_PublishesFixesToStoreAndSubscribers(t *testing.T) {
	// Setup
	mockProvider := new(mocks.LocationProvider)
	store := state.NewStore()

	mockProvider.On("Authorize").Return(nil).Once()
	mockProvider.On("GetLocation").Return(location.Location{Latitude: 20.0, Longitude: 78.0, Accuracy: 4}, nil)
	mockProvider.On("Close").Return(nil).Once()

	var mu sync.Mutex
	var received []models.Position

	l := services.NewLocationService(30*time.Millisecond, mockProvider, store, zerolog.Nop())
	l.OnPosition(func(p models.Position) {
		mu.Lock()
		received = append(received, p)
		mu.Unlock()
	})

	// Execute
	require.NoError(t, l.Start())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, l.Stop())

	// Assert
	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, received)
	assert.Equal(t, 20.0, received[0].Latitude)
	assert.Equal(t, 78.0, received[0].Longitude)
	assert.Equal(t, 4.0, received[0].AccuracyMeters)
	assert.False(t, received[0].CapturedAt.IsZero())

	published, ok := store.LastPosition()
	require.True(t, ok)
	assert.Equal(t, 20.0, published.Latitude)

	mockProvider.AssertExpectations(t)
}

func TestLocationService_SkipsCycleOnProviderError(t *testing.T) {
	mockProvider := new(mocks.LocationProvider)
	store := state.NewStore()

	mockProvider.On("Authorize").Return(nil).Once()
	mockProvider.On("GetLocation").Return(location.Location{}, assert.AnError)
	mockProvider.On("Close").Return(nil).Once()

	l := services.NewLocationService(30*time.Millisecond, mockProvider, store, zerolog.Nop())

	require.NoError(t, l.Start())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, l.Stop())

	// Failed cycles publish nothing.
	_, ok := store.LastPosition()
	assert.False(t, ok)
}

func TestLocationService_PermissionDeniedIsTerminal(t *testing.T) {
	mockProvider := new(mocks.LocationProvider)

	mockProvider.On("Authorize").Return(location.ErrPermissionDenied).Once()

	l := services.NewLocationService(time.Hour, mockProvider, state.NewStore(), zerolog.Nop())

	err := l.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, location.ErrPermissionDenied)

	// Further starts are silent no-ops: no second Authorize, no loop.
	assert.NoError(t, l.Start())
	assert.NoError(t, l.Start())

	// Never started, so nothing to stop.
	assert.NoError(t, l.Stop())

	mockProvider.AssertExpectations(t)
}

func TestLocationService_Lifecycle(t *testing.T) {
	mockProvider := new(mocks.LocationProvider)
	mockProvider.On("Authorize").Return(nil).Once()
	mockProvider.On("GetLocation").Return(location.Location{}, nil)
	mockProvider.On("Close").Return(nil).Once()

	l := services.NewLocationService(time.Hour, mockProvider, state.NewStore(), zerolog.Nop())

	assert.NoError(t, l.Stop()) // Stop before start is a no-op

	assert.NoError(t, l.Start())
	err := l.Start()
	assert.Error(t, err)
	assert.Equal(t, "location service is already running", err.Error())

	assert.NoError(t, l.Stop())
	assert.NoError(t, l.Stop())
	mockProvider.AssertNumberOfCalls(t, "Close", 1)
}
