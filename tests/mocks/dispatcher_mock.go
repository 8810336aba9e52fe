package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Dispatcher is a mock implementation of the dispatch.Client interface.
type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) Post(ctx context.Context, path string, body any, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}
