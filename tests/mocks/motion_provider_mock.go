package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/safetrail/sentinel-agent/pkg/motion"
)

// MotionProvider is a mock implementation of the motion.Provider interface.
type MotionProvider struct {
	mock.Mock
}

func (m *MotionProvider) Read() (motion.Sample, error) {
	args := m.Called()
	return args.Get(0).(motion.Sample), args.Error(1)
}

func (m *MotionProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}
