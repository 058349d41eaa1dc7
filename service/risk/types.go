package risk

import (
	"github.com/signoffhq/signoff/model"
)

// Factor names, stable across assessments so downstream consumers can key on
// them.
const (
	FactorFileImpact    = "File Impact"
	FactorSecurity      = "Security Impact"
	FactorReversibility = "Reversibility"
	FactorDependency    = "Dependency Impact"
	FactorDatabase      = "Database Impact"
	FactorAPI           = "API Impact"
)

// Factor is one scored risk dimension.
type Factor struct {
	Name        string          `json:"name"`
	Score       float64         `json:"score"`
	Level       model.RiskLevel `json:"level"`
	Weight      float64         `json:"weight"`
	Description string          `json:"description"`
}

// Assessment is the derived result of scoring one request. It is not stored
// long-term; the history store only keeps the resulting level and category.
type Assessment struct {
	Score                float64         `json:"score"`
	Level                model.RiskLevel `json:"level"`
	Factors              []Factor        `json:"factors"`
	Recommendations      []string        `json:"recommendations,omitempty"`
	RequiresApproval     bool            `json:"requiresApproval"`
	AutoApprovalEligible bool            `json:"autoApprovalEligible"`
}

// SecurityElevated reports whether the security factor scored above low.
func (a *Assessment) SecurityElevated() bool {
	for _, f := range a.Factors {
		if f.Name == FactorSecurity && f.Level != model.RiskLow {
			return true
		}
	}
	return false
}

// Factor returns the named factor, or nil.
func (a *Assessment) Factor(name string) *Factor {
	for i := range a.Factors {
		if a.Factors[i].Name == name {
			return &a.Factors[i]
		}
	}
	return nil
}

// Weights scales each dimension's contribution to the overall score.
// CriticalFile is added on top of FileImpact when protected files are
// touched.
type Weights struct {
	FileImpact    float64 `json:"fileImpact" yaml:"fileImpact"`
	CriticalFile  float64 `json:"criticalFile" yaml:"criticalFile"`
	Security      float64 `json:"security" yaml:"security"`
	Database      float64 `json:"database" yaml:"database"`
	API           float64 `json:"api" yaml:"api"`
	Dependency    float64 `json:"dependency" yaml:"dependency"`
	Reversibility float64 `json:"reversibility" yaml:"reversibility"`
}

// DefaultWeights returns the standard dimension weights.
func DefaultWeights() Weights {
	return Weights{
		FileImpact:    0.10,
		CriticalFile:  0.25,
		Security:      0.30,
		Database:      0.25,
		API:           0.20,
		Dependency:    0.15,
		Reversibility: 0.10,
	}
}

// Thresholds maps the weighted score onto levels via ascending cut-offs:
// score < Medium is low, < High is medium, < Critical is high, else critical.
type Thresholds struct {
	Medium   float64 `json:"medium" yaml:"medium"`
	High     float64 `json:"high" yaml:"high"`
	Critical float64 `json:"critical" yaml:"critical"`
}

// DefaultThresholds returns the standard 2.0/4.0/6.0 cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 2.0, High: 4.0, Critical: 6.0}
}

// Level maps a weighted score to its ordinal level.
func (t Thresholds) Level(score float64) model.RiskLevel {
	switch {
	case score < t.Medium:
		return model.RiskLow
	case score < t.High:
		return model.RiskMedium
	case score < t.Critical:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

// levelForScore maps a 0-10 sub-score to a factor level.
func levelForScore(score float64) model.RiskLevel {
	switch {
	case score < 3:
		return model.RiskLow
	case score < 6:
		return model.RiskMedium
	case score < 8:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}
