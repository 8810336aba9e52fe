package models

// RiskLevel is the coarse risk bucket derived from a numeric safety score.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

// RiskFromScore buckets a safety score: >= 80 low, >= 40 medium, else high.
// A missing score is unknown.
func RiskFromScore(score *float64) RiskLevel {
	if score == nil {
		return RiskUnknown
	}
	switch {
	case *score >= 80:
		return RiskLow
	case *score >= 40:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// ParseRiskLevel normalizes the scoring service's risk enum. Anything
// outside the known set maps to unknown rather than failing the cycle.
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(s)
	default:
		return RiskUnknown
	}
}
