package model

// ProposedAction describes one change a requester wants to apply. Actions are
// immutable once submitted - the assessor and coordinator only ever read them.
type ProposedAction struct {
	// Kind names the operation, e.g. "file_edit", "file_delete", "command".
	Kind string `json:"kind" yaml:"kind"`

	// Description is a short human-readable summary of the change.
	Description string `json:"description" yaml:"description"`

	// Paths lists the resources the action touches.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`

	// RiskHint optionally carries the caller's own estimate; the assessor
	// treats it as a floor, never a ceiling.
	RiskHint RiskLevel `json:"riskHint,omitempty" yaml:"riskHint,omitempty"`

	// Reversible indicates the change can be undone without data loss.
	Reversible bool `json:"reversible" yaml:"reversible"`

	// Diff optionally carries a unified diff of the change. When present the
	// assessor parses it to recover affected paths and churn.
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// TaskContext carries the session state a request was made in. It is supplied
// once per request by the embedding chat/session layer.
type TaskContext struct {
	// Intent is the requester's free-text statement of what they are doing.
	Intent string `json:"intent,omitempty" yaml:"intent,omitempty"`

	// History holds prior session messages, newest last.
	History []string `json:"history,omitempty" yaml:"history,omitempty"`

	// Project carries arbitrary project metadata (language, repo, branch).
	Project map[string]string `json:"project,omitempty" yaml:"project,omitempty"`

	// TrustRank is the requester's rank at submission time.
	TrustRank TrustRank `json:"trustRank" yaml:"trustRank"`
}
