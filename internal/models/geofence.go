package models

// GeofenceRegion is a circular region owned by the external registry.
// Read-only to the agent; refreshed once per assessment cycle.
type GeofenceRegion struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius"`
}
