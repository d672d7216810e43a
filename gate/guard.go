package gate

import (
	"context"
	"slices"

	shelfgate "github.com/hartwellk/shelfgate"
	"github.com/hartwellk/shelfgate/authz"
	"github.com/hartwellk/shelfgate/internal/metrics"
)

// Decision is what a gate tells its consumer to render.
type Decision int

const (
	// DecisionPending: session not yet initialized — show the loading
	// placeholder, make no redirect or render choice.
	DecisionPending Decision = iota
	// DecisionAllow: render the protected content.
	DecisionAllow
	// DecisionLogin: not authenticated — send to the login entry point.
	DecisionLogin
	// DecisionDenied: authenticated but not authorized — show the denial
	// view, do not redirect.
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	case DecisionLogin:
		return "login"
	case DecisionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Denial reasons carried on a Verdict so the denial view can distinguish
// missing role from failed server verification.
const (
	ReasonRoleNotPermitted  = "role not permitted"
	ReasonVerificationWrong = "server verification denied"
)

// Verdict is a Decision plus context for the consumer: where to bounce
// back to after login, and why access was denied.
type Verdict struct {
	Decision Decision
	// ReturnTo is the originally requested location, preserved across the
	// login redirect. Set by the caller via EvaluateFor.
	ReturnTo string
	Reason   string
}

// RouteGuard protects one navigation target. Zero or more requirement
// fields may be set; an empty guard admits any authenticated session.
type RouteGuard struct {
	// Session supplies auth state; required.
	Session *shelfgate.Session
	// Roles, when non-empty, is the role allow-list checked against the
	// session's role claim (optimistic resolver).
	Roles []string
	// Resource and Action, when set, require a server-verified point
	// query through Verifier. ResourceID optionally scopes it.
	Resource   string
	Action     string
	ResourceID string
	// Verifier is required when Resource/Action are set.
	Verifier *authz.Verifier
}

// Evaluate renders the guard's decision for the current state. It blocks
// on the server point query when one is configured; callers wanting a
// "verifying" placeholder run Evaluate on their own goroutine and render
// the placeholder until it returns.
//
// Before the session is initialized the verdict is always Pending —
// ordering is enforced by the Initialized flag, never by timing.
func (g *RouteGuard) Evaluate(ctx context.Context) Verdict {
	return g.EvaluateFor(ctx, "")
}

// EvaluateFor is Evaluate with the originally requested location, carried
// through to the login redirect for the post-login bounce-back.
func (g *RouteGuard) EvaluateFor(ctx context.Context, requested string) Verdict {
	if g == nil || g.Session == nil {
		return Verdict{Decision: DecisionDenied, Reason: "guard misconfigured"}
	}

	snap := g.Session.Snapshot()
	if !snap.Initialized {
		return Verdict{Decision: DecisionPending}
	}
	if !snap.Authenticated {
		g.metricInc(metrics.MetricGateRedirected)
		return Verdict{Decision: DecisionLogin, ReturnTo: requested}
	}

	if len(g.Roles) > 0 && !slices.Contains(g.Roles, snap.User.Role) {
		g.metricInc(metrics.MetricGateDenied)
		return Verdict{Decision: DecisionDenied, Reason: ReasonRoleNotPermitted, ReturnTo: requested}
	}

	if g.Resource != "" && g.Action != "" {
		if g.Verifier == nil {
			// A sensitive requirement without a verifier fails closed.
			g.metricInc(metrics.MetricGateDenied)
			return Verdict{Decision: DecisionDenied, Reason: ReasonVerificationWrong, ReturnTo: requested}
		}
		if !g.Verifier.VerifyAccess(ctx, g.Resource, g.Action, g.ResourceID) {
			g.metricInc(metrics.MetricGateDenied)
			return Verdict{Decision: DecisionDenied, Reason: ReasonVerificationWrong, ReturnTo: requested}
		}
	}

	g.metricInc(metrics.MetricGateAllowed)
	return Verdict{Decision: DecisionAllow, ReturnTo: requested}
}

func (g *RouteGuard) metricInc(id metrics.MetricID) {
	if m := g.Session.Metrics(); m != nil {
		m.Inc(id)
	}
}
