package model

// RiskLevel classifies the assessed danger of a proposed change set.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskOrder defines the total order of risk levels.
var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Ordinal returns the position of the level within the total order. Unknown
// values map to the lowest position so that comparisons stay total.
func (l RiskLevel) Ordinal() int {
	return riskOrder[l]
}

// AtLeast reports whether l is equal to or above the other level.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.Ordinal() >= other.Ordinal()
}

// IsValid reports whether l is one of the defined levels.
func (l RiskLevel) IsValid() bool {
	_, ok := riskOrder[l]
	return ok
}

// MaxRiskLevel returns the higher of two levels.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Ordinal() > a.Ordinal() {
		return b
	}
	return a
}

// Category groups proposed actions by their dominant theme. Categories steer
// policy overrides - security and architecture changes escalate regardless of
// the requester's trust rank.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategorySecurity      Category = "security"
	CategoryArchitecture  Category = "architecture"
	CategoryDatabase      Category = "database"
	CategoryAPI           Category = "api"
	CategoryDependency    Category = "dependency"
	CategoryDocumentation Category = "documentation"
)
