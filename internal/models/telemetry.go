package models

import (
	"math"
	"time"
)

// Position is a single location fix. It is immutable once captured; the
// next sample supersedes it rather than mutating it.
type Position struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	CapturedAt     time.Time `json:"captured_at"`
}

// MotionSample is the latest accelerometer reading coalesced with the
// network reachability state. Only the most recent sample is retained.
type MotionSample struct {
	X                float64   `json:"x"`
	Y                float64   `json:"y"`
	Z                float64   `json:"z"`
	NetworkReachable bool      `json:"network_reachable"`
	CapturedAt       time.Time `json:"captured_at"`
}

// Magnitude returns the vector magnitude of the acceleration reading.
func (m MotionSample) Magnitude() float64 {
	return math.Sqrt(m.X*m.X + m.Y*m.Y + m.Z*m.Z)
}

// SafetyAssessment is the outcome of one assessment cycle. SafetyScore is
// nil when the scoring service could not be reached or returned garbage.
type SafetyAssessment struct {
	Position    Position  `json:"position"`
	IsGeofenced bool      `json:"is_geofenced"`
	SafetyScore *float64  `json:"safety_score,omitempty"`
	RiskLevel   RiskLevel `json:"risk_level"`
	AssessedAt  time.Time `json:"assessed_at"`
}

// ScoringRequest is the body of a /calculate_safety call.
type ScoringRequest struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	IsGeofenced bool    `json:"is_geofenced"`
}

// ScoringResponse is the body returned by /calculate_safety.
type ScoringResponse struct {
	SafetyScore float64 `json:"safety_score"`
	RiskLevel   string  `json:"risk_level"`
}

// PingStatus tracks the health of the link to the ingestion service.
// Owned by the ping service, read by the anomaly reporters.
type PingStatus struct {
	LastSuccess time.Time `json:"last_success"`
	MissedCount int       `json:"missed_count"`
}

// Ping is the body of a /api/ping heartbeat, including a small system
// snapshot so the backend can spot struggling devices.
type Ping struct {
	DeviceID      string    `json:"device_id"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
	CPUPercent    *float64  `json:"cpu_percent,omitempty"`
	MemoryPercent *float64  `json:"memory_percent,omitempty"`
	UptimeSeconds *uint64   `json:"uptime_seconds,omitempty"`
}
