package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signoffhq/signoff/model"
)

func TestRequiresApproval(t *testing.T) {
	tests := []struct {
		name     string
		level    model.RiskLevel
		rank     model.TrustRank
		category model.Category
		expected bool
	}{
		{name: "novice low", level: model.RiskLow, rank: model.TrustNovice, category: model.CategoryGeneral, expected: true},
		{name: "learning low", level: model.RiskLow, rank: model.TrustLearning, category: model.CategoryGeneral, expected: false},
		{name: "learning medium", level: model.RiskMedium, rank: model.TrustLearning, category: model.CategoryGeneral, expected: true},
		{name: "collaborative medium", level: model.RiskMedium, rank: model.TrustCollaborative, category: model.CategoryGeneral, expected: false},
		{name: "collaborative high", level: model.RiskHigh, rank: model.TrustCollaborative, category: model.CategoryGeneral, expected: true},
		{name: "trusted high", level: model.RiskHigh, rank: model.TrustTrusted, category: model.CategoryGeneral, expected: false},
		{name: "trusted critical", level: model.RiskCritical, rank: model.TrustTrusted, category: model.CategoryGeneral, expected: true},
		{name: "autonomous critical", level: model.RiskCritical, rank: model.TrustAutonomous, category: model.CategoryGeneral, expected: false},
		{name: "security override beats autonomous", level: model.RiskMedium, rank: model.TrustAutonomous, category: model.CategorySecurity, expected: true},
		{name: "security low no override", level: model.RiskLow, rank: model.TrustAutonomous, category: model.CategorySecurity, expected: false},
		{name: "architecture high beats trusted", level: model.RiskHigh, rank: model.TrustTrusted, category: model.CategoryArchitecture, expected: true},
		{name: "architecture medium rank gated", level: model.RiskMedium, rank: model.TrustTrusted, category: model.CategoryArchitecture, expected: false},
		{name: "unknown category no escalation", level: model.RiskLow, rank: model.TrustAutonomous, category: model.Category("mystery"), expected: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RequiresApproval(tc.level, tc.rank, tc.category))
		})
	}
}

func TestAutoApprovalEligible(t *testing.T) {
	tests := []struct {
		name             string
		level            model.RiskLevel
		rank             model.TrustRank
		securityElevated bool
		expected         bool
	}{
		{name: "critical never eligible", level: model.RiskCritical, rank: model.TrustAutonomous, expected: false},
		{name: "security elevation blocks", level: model.RiskLow, rank: model.TrustAutonomous, securityElevated: true, expected: false},
		{name: "novice never eligible", level: model.RiskLow, rank: model.TrustNovice, expected: false},
		{name: "learning low", level: model.RiskLow, rank: model.TrustLearning, expected: true},
		{name: "learning medium", level: model.RiskMedium, rank: model.TrustLearning, expected: false},
		{name: "collaborative medium", level: model.RiskMedium, rank: model.TrustCollaborative, expected: true},
		{name: "trusted medium", level: model.RiskMedium, rank: model.TrustTrusted, expected: true},
		{name: "trusted high", level: model.RiskHigh, rank: model.TrustTrusted, expected: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AutoApprovalEligible(tc.level, tc.rank, tc.securityElevated))
		})
	}
}

func TestLadderProgression(t *testing.T) {
	ladder := DefaultLadder()

	// Exactly the novice→learning→collaborative→trusted sequence at 5/15/30.
	assert.Equal(t, model.TrustNovice, ladder.RankFor(model.TrustNovice, 4))
	assert.Equal(t, model.TrustLearning, ladder.RankFor(model.TrustNovice, 5))
	assert.Equal(t, model.TrustCollaborative, ladder.RankFor(model.TrustLearning, 15))
	assert.Equal(t, model.TrustTrusted, ladder.RankFor(model.TrustCollaborative, 30))

	// Never descends and never auto-promotes to autonomous.
	assert.Equal(t, model.TrustAutonomous, ladder.RankFor(model.TrustAutonomous, 0))
	assert.Equal(t, model.TrustTrusted, ladder.RankFor(model.TrustTrusted, 1000))
}
