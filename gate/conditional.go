package gate

import (
	"context"

	"github.com/hartwellk/shelfgate/authz"
)

// Combinator selects how a Conditional combines multiple named
// permissions.
type Combinator int

const (
	// AllOf requires every named permission.
	AllOf Combinator = iota
	// AnyOf requires at least one.
	AnyOf
)

// Conditional is the inline gate: it answers whether one fragment of UI
// (a delete button, a borrowing-history column) may render. Configure
// either Resource+Action for a point query, or Permissions+Mode against
// the bulk snapshot. When both are set, both must allow.
type Conditional struct {
	Verifier *authz.Verifier

	Resource   string
	Action     string
	ResourceID string

	// Permissions are wire names from the bulk snapshot, e.g.
	// "canManageUsers". Unknown names deny.
	Permissions []string
	Mode        Combinator
}

// Allowed evaluates the gate. Missing verifier, resolver errors, loading
// bulk state, and unknown permission names all deny.
func (c *Conditional) Allowed(ctx context.Context) bool {
	if c == nil || c.Verifier == nil {
		return false
	}

	if c.Resource != "" && c.Action != "" {
		if !c.Verifier.VerifyAccess(ctx, c.Resource, c.Action, c.ResourceID) {
			return false
		}
	}

	if len(c.Permissions) > 0 {
		state := c.Verifier.EnsureFresh(ctx)
		if state.Loading || state.Error != "" {
			return false
		}
		if !combine(state.Snapshot, c.Permissions, c.Mode) {
			return false
		}
	}

	// A Conditional with no requirements configured stays closed rather
	// than silently rendering everything.
	return c.Resource != "" && c.Action != "" || len(c.Permissions) > 0
}

func combine(snap authz.Snapshot, names []string, mode Combinator) bool {
	if mode == AnyOf {
		for _, name := range names {
			if value, ok := snap.Flag(name); ok && value {
				return true
			}
		}
		return false
	}

	for _, name := range names {
		value, ok := snap.Flag(name)
		if !ok || !value {
			return false
		}
	}
	return true
}
