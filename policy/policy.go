// Package policy implements a simple, optional per-session override layer
// that can be attached to request submission via context. It is deliberately
// decoupled from the coordinator so that using it is entirely opt-in -
// callers that do not embed a Policy in their context get the normal
// score-then-gate behaviour.

package policy

import (
	"context"
	"strings"
)

// Enforcement modes recognised by the coordinator.
const (
	ModeEnforce = "enforce" // score and gate normally (default)
	ModeBypass  = "bypass"  // approvals disabled: auto-approve without scoring
	ModeDeny    = "deny"    // reject every submission
)

// Policy represents the override settings for the current session.
//
//   - Mode controls the high-level behaviour (enforce / bypass / deny).
//   - AllowKinds, BlockKinds filter by action kind regardless of Mode.
//
// A nil *Policy means "enforce normally" and is therefore the zero-cost
// default.
type Policy struct {
	Mode       string   // enforce / bypass / deny (default = enforce)
	AllowKinds []string // whitelist (empty => all kinds)
	BlockKinds []string // blacklist
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	Mode       string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowKinds []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockKinds []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:       p.Mode,
		AllowKinds: append([]string(nil), p.AllowKinds...),
		BlockKinds: append([]string(nil), p.BlockKinds...),
	}
}

// FromConfig converts a stored Config back to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:       c.Mode,
		AllowKinds: append([]string(nil), c.AllowKinds...),
		BlockKinds: append([]string(nil), c.BlockKinds...),
	}
}

// IsAllowed evaluates AllowKinds / BlockKinds. Both lists match by exact,
// case-insensitive comparison of the action kind.
func (p *Policy) IsAllowed(kind string) bool {
	if p == nil {
		return true
	}

	normalized := strings.ToLower(kind)

	// BlockKinds has priority.
	for _, b := range p.BlockKinds {
		if normalized == strings.ToLower(b) {
			return false
		}
	}

	if len(p.AllowKinds) == 0 {
		return true
	}
	for _, a := range p.AllowKinds {
		if normalized == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the *Policy from ctx, or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
