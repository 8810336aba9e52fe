package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/safetrail/sentinel-agent/pkg/identity"
)

// DeviceInfo is a mock implementation of the identity.DeviceInfoInterface.
type DeviceInfo struct {
	mock.Mock
}

func (m *DeviceInfo) LoadDeviceInfo() error {
	args := m.Called()
	return args.Error(0)
}

func (m *DeviceInfo) GetDeviceID() string {
	args := m.Called()
	return args.String(0)
}

func (m *DeviceInfo) GetDeviceIdentity() *identity.Identity {
	args := m.Called()
	return args.Get(0).(*identity.Identity)
}
