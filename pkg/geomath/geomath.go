// Package geomath provides the pure geospatial math used by the safety
// pipeline: great-circle distances and circular containment tests.
package geomath

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// DistanceMeters returns the haversine great-circle distance between two
// points. Accurate to well under a meter for distances below 100 km.
func DistanceMeters(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// InRadius reports whether p lies within radiusMeters of center. A point
// exactly on the boundary counts as inside.
func InRadius(p, center Point, radiusMeters float64) bool {
	return DistanceMeters(p, center) <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
