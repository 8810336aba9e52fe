// Package geofence provides read access to the set of geofenced regions
// registered for this device's deployment. The registry is queried once per
// assessment cycle and never cached across cycles, so fences added or
// removed on the dashboard take effect on the next cycle.
package geofence

import (
	"context"

	"github.com/safetrail/sentinel-agent/internal/models"
)

// Registry fetches the current geofence set. Callers treat a fetch error the
// same as an empty set (fail-open): containment becomes false but the
// assessment cycle proceeds.
type Registry interface {
	Fetch(ctx context.Context) ([]models.GeofenceRegion, error)
}
