package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier as string. It is a
// variable so tests can stub it with a deterministic sequence.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }

// Compact returns a new identifier without dashes, handy for request and
// merge-request ids that appear in commit messages.
func Compact() string { return strings.ReplaceAll(New(), "-", "") }
