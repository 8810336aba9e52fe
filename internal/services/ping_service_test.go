package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/services"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/pkg/dispatch"
	"github.com/safetrail/sentinel-agent/tests/mocks"
)

func TestPingService_SuccessResetsMissedCount(t *testing.T) {
	// Setup
	mockDeviceInfo := new(mocks.DeviceInfo)
	mockDispatcher := new(mocks.Dispatcher)
	store := state.NewStore()

	mockDeviceInfo.On("GetDeviceID").Return("device-1234")

	var mu sync.Mutex
	var pings []models.Ping
	mockDispatcher.On("Post", mock.Anything, "/api/ping", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			pings = append(pings, args.Get(2).(models.Ping))
			mu.Unlock()
		}).
		Return(nil)

	p := services.NewPingService(30*time.Millisecond, mockDeviceInfo, mockDispatcher, store, zerolog.Nop())

	// Execute
	require.NoError(t, p.Start())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, p.Stop())

	// Assert
	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, pings)
	assert.Equal(t, "device-1234", pings[0].DeviceID)
	assert.Equal(t, "alive", pings[0].Status)

	status, ok := store.PingStatus()
	require.True(t, ok)
	assert.Equal(t, 0, status.MissedCount)
	assert.False(t, status.LastSuccess.IsZero())
}

func TestPingService_FailuresAccumulateMissedCount(t *testing.T) {
	mockDeviceInfo := new(mocks.DeviceInfo)
	mockDispatcher := new(mocks.Dispatcher)
	store := state.NewStore()

	mockDeviceInfo.On("GetDeviceID").Return("device-1234")
	mockDispatcher.On("Post", mock.Anything, "/api/ping", mock.Anything, mock.Anything).
		Return(&dispatch.Error{Kind: dispatch.KindNetwork})

	p := services.NewPingService(25*time.Millisecond, mockDeviceInfo, mockDispatcher, store, zerolog.Nop())

	require.NoError(t, p.Start())
	time.Sleep(120 * time.Millisecond)
	require.NoError(t, p.Stop())

	status, ok := store.PingStatus()
	require.True(t, ok)
	assert.GreaterOrEqual(t, status.MissedCount, 2)
	assert.True(t, status.LastSuccess.IsZero())
}

func TestPingService_Lifecycle(t *testing.T) {
	mockDeviceInfo := new(mocks.DeviceInfo)
	mockDeviceInfo.On("GetDeviceID").Return("device-1234")
	mockDispatcher := new(mocks.Dispatcher)
	mockDispatcher.On("Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	p := services.NewPingService(time.Hour, mockDeviceInfo, mockDispatcher, state.NewStore(), zerolog.Nop())

	assert.NoError(t, p.Stop()) // Stop before start is a no-op

	assert.NoError(t, p.Start())
	err := p.Start()
	assert.Error(t, err)
	assert.Equal(t, "ping service is already running", err.Error())

	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}
