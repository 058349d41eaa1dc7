package trust

import (
	"github.com/signoffhq/signoff/model"
)

// RequiresApproval reports whether a change at the given risk level needs a
// human decision. Category overrides dominate the rank ladder: security
// changes above low risk and architecture changes at high or critical always
// require sign-off, no matter how trusted the requester is.
func RequiresApproval(level model.RiskLevel, rank model.TrustRank, category model.Category) bool {
	switch category {
	case model.CategorySecurity:
		if level.AtLeast(model.RiskMedium) {
			return true
		}
	case model.CategoryArchitecture:
		if level.AtLeast(model.RiskHigh) {
			return true
		}
	}

	switch rank {
	case model.TrustLearning:
		return level.AtLeast(model.RiskMedium)
	case model.TrustCollaborative:
		return level.AtLeast(model.RiskHigh)
	case model.TrustTrusted:
		return level.AtLeast(model.RiskCritical)
	case model.TrustAutonomous:
		return false
	default:
		// Novice (and any unknown rank) always requires approval.
		return true
	}
}

// AutoApprovalEligible reports whether a request may be resolved without a
// human response. Eligibility is categorically false at critical risk or when
// any security factor is elevated; otherwise the ladder runs one step more
// permissive than RequiresApproval.
func AutoApprovalEligible(level model.RiskLevel, rank model.TrustRank, securityElevated bool) bool {
	if level == model.RiskCritical || securityElevated {
		return false
	}
	switch rank {
	case model.TrustLearning:
		return level == model.RiskLow
	case model.TrustCollaborative, model.TrustTrusted, model.TrustAutonomous:
		return !level.AtLeast(model.RiskHigh)
	default:
		return false
	}
}
