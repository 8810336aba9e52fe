package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/safetrail/sentinel-agent/internal/models"
)

// GeofenceRegistry is a mock implementation of the geofence.Registry interface.
type GeofenceRegistry struct {
	mock.Mock
}

func (m *GeofenceRegistry) Fetch(ctx context.Context) ([]models.GeofenceRegion, error) {
	args := m.Called(ctx)
	if regions := args.Get(0); regions != nil {
		return regions.([]models.GeofenceRegion), args.Error(1)
	}
	return nil, args.Error(1)
}
