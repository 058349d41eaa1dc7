package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskLevelOrder(t *testing.T) {
	tests := []struct {
		name     string
		level    RiskLevel
		other    RiskLevel
		expected bool
	}{
		{name: "medium at least low", level: RiskMedium, other: RiskLow, expected: true},
		{name: "low not at least high", level: RiskLow, other: RiskHigh, expected: false},
		{name: "critical at least critical", level: RiskCritical, other: RiskCritical, expected: true},
		{name: "unknown treated as low", level: RiskLevel("bogus"), other: RiskLow, expected: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.level.AtLeast(tc.other))
		})
	}
}

func TestMaxRiskLevel(t *testing.T) {
	assert.Equal(t, RiskHigh, MaxRiskLevel(RiskMedium, RiskHigh))
	assert.Equal(t, RiskHigh, MaxRiskLevel(RiskHigh, RiskLow))
	assert.Equal(t, RiskLow, MaxRiskLevel(RiskLow, RiskLow))
}

func TestTrustRankOrder(t *testing.T) {
	ordered := []TrustRank{TrustNovice, TrustLearning, TrustCollaborative, TrustTrusted, TrustAutonomous}
	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i].AtLeast(ordered[i-1]), "%v should outrank %v", ordered[i], ordered[i-1])
		assert.False(t, ordered[i-1].AtLeast(ordered[i]))
	}
	assert.True(t, TrustNovice.IsValid())
	assert.False(t, TrustRank("boss").IsValid())
}
