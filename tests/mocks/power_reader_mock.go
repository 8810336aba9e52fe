package mocks

import (
	"github.com/stretchr/testify/mock"
)

// PowerReader is a mock implementation of the power.Reader interface.
type PowerReader struct {
	mock.Mock
}

func (m *PowerReader) Level() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}
