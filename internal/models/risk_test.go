package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safetrail/sentinel-agent/internal/models"
)

func TestRiskFromScore(t *testing.T) {
	score := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		score *float64
		want  models.RiskLevel
	}{
		{"nil score is unknown", nil, models.RiskUnknown},
		{"80 is low", score(80), models.RiskLow},
		{"just below 80 is medium", score(79.9), models.RiskMedium},
		{"40 is medium", score(40), models.RiskMedium},
		{"just below 40 is high", score(39.9), models.RiskHigh},
		{"zero is high", score(0), models.RiskHigh},
		{"perfect score is low", score(100), models.RiskLow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, models.RiskFromScore(tc.score))
		})
	}
}

func TestParseRiskLevel(t *testing.T) {
	assert.Equal(t, models.RiskLow, models.ParseRiskLevel("low"))
	assert.Equal(t, models.RiskMedium, models.ParseRiskLevel("medium"))
	assert.Equal(t, models.RiskHigh, models.ParseRiskLevel("high"))

	// Unrecognized values degrade to unknown instead of erroring.
	assert.Equal(t, models.RiskUnknown, models.ParseRiskLevel("med"))
	assert.Equal(t, models.RiskUnknown, models.ParseRiskLevel(""))
	assert.Equal(t, models.RiskUnknown, models.ParseRiskLevel("LOW"))
}
