package model

// TrustRank orders how much autonomy a requester has earned. Ranks advance
// automatically with successful task counts and only move backwards on an
// explicit downgrade.
type TrustRank string

const (
	TrustNovice        TrustRank = "novice"
	TrustLearning      TrustRank = "learning"
	TrustCollaborative TrustRank = "collaborative"
	TrustTrusted       TrustRank = "trusted"
	TrustAutonomous    TrustRank = "autonomous"
)

var trustOrder = map[TrustRank]int{
	TrustNovice:        0,
	TrustLearning:      1,
	TrustCollaborative: 2,
	TrustTrusted:       3,
	TrustAutonomous:    4,
}

// Ordinal returns the position of the rank within the total order.
func (r TrustRank) Ordinal() int {
	return trustOrder[r]
}

// AtLeast reports whether r is equal to or above the other rank.
func (r TrustRank) AtLeast(other TrustRank) bool {
	return r.Ordinal() >= other.Ordinal()
}

// IsValid reports whether r is one of the defined ranks.
func (r TrustRank) IsValid() bool {
	_, ok := trustOrder[r]
	return ok
}
