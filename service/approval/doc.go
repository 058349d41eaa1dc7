// Package approval implements the human-in-the-loop request lifecycle. A
// submission is scored, gated by the trust policy and either resolved on the
// spot or parked in a pending table until a human responds. Every lifecycle
// transition is published as an Event for UI and audit consumers.
package approval
