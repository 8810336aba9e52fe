package constants

// Ingestion service endpoint paths.
const (
	ScoringEndpoint    = "/calculate_safety"
	DropoffEndpoint    = "/api/dropoff"
	InactivityEndpoint = "/api/inactivity"
	PingEndpoint       = "/api/ping"
)

// StatusAlive is the status reported in ping heartbeats.
const StatusAlive = "alive"
