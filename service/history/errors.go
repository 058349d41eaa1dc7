package history

import "errors"

var (
	// ErrNotFound indicates an unknown branch, commit, tag or merge request.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a name collision or a forbidden deletion.
	ErrConflict = errors.New("conflict")
	// ErrState indicates an operation that cannot proceed from the current
	// repository state, e.g. tagging an empty branch.
	ErrState = errors.New("invalid state")
)
