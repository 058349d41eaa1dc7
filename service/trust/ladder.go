package trust

import (
	"github.com/signoffhq/signoff/model"
)

// Ladder holds the cumulative successful-task counts at which a requester's
// rank advances automatically. Counts accumulate over the process lifetime
// and are never reset.
type Ladder struct {
	ToLearning      int `json:"toLearning" yaml:"toLearning"`
	ToCollaborative int `json:"toCollaborative" yaml:"toCollaborative"`
	ToTrusted       int `json:"toTrusted" yaml:"toTrusted"`
}

// DefaultLadder returns the standard 5/15/30 progression.
func DefaultLadder() Ladder {
	return Ladder{ToLearning: 5, ToCollaborative: 15, ToTrusted: 30}
}

// RankFor returns the rank earned by the cumulative success count, never
// below the current rank. Automatic progression stops at trusted; autonomous
// is only reachable through an explicit grant.
func (l Ladder) RankFor(current model.TrustRank, successes int) model.TrustRank {
	earned := model.TrustNovice
	switch {
	case successes >= l.ToTrusted:
		earned = model.TrustTrusted
	case successes >= l.ToCollaborative:
		earned = model.TrustCollaborative
	case successes >= l.ToLearning:
		earned = model.TrustLearning
	}
	if current.AtLeast(earned) {
		return current
	}
	return earned
}
