package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/safetrail/sentinel-agent/pkg/location"
)

// LocationProvider is a mock implementation of the location.Provider interface.
type LocationProvider struct {
	mock.Mock
}

func (m *LocationProvider) Authorize() error {
	args := m.Called()
	return args.Error(0)
}

func (m *LocationProvider) GetLocation() (location.Location, error) {
	args := m.Called()
	return args.Get(0).(location.Location), args.Error(1)
}

func (m *LocationProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}
