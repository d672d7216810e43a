package shelfgate

import (
	"context"
	"strings"
	"sync"

	"github.com/hartwellk/shelfgate/api"
	internalaudit "github.com/hartwellk/shelfgate/internal/audit"
	"github.com/hartwellk/shelfgate/permission"
	"github.com/hartwellk/shelfgate/token"
)

// Session defines a public type used by shelfgate APIs.
//
// Session owns the client's authenticated-user state. All mutation goes
// through the transition methods (Initialize, Login, Register, Refresh,
// Logout); gates and resolvers only ever read snapshots. One Session
// exists per running client.
type Session struct {
	config  Config
	api     *api.Client
	tokens  token.Store
	decoder *token.Decoder
	table   *permission.Table
	audit   *internalaudit.Dispatcher
	metrics *Metrics

	mu          sync.Mutex
	initOnce    sync.Once
	user        *SessionUser
	loading     bool
	initialized bool
	lastError   string
}

const (
	opInitialize = "initialize"
	opLogin      = "login"
	opRegister   = "register"
	opRefresh    = "refresh"
)

// Snapshot returns the current session state. It re-checks the role
// invariant on every read: if an authenticated user somehow lost its role,
// the session is forced unauthenticated before the snapshot is taken.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()

	if s.user != nil && strings.TrimSpace(s.user.Role) == "" {
		s.user = nil
		s.lastError = msgNoUserRole
		s.mu.Unlock()

		s.metricInc(MetricRoleInvariantViolation)
		s.emitAudit(context.Background(), auditEventInvariantViolation, false, "", "", ErrNoUserRole, nil)
		_ = s.tokens.ClearAuthentication(context.Background())

		s.mu.Lock()
	}

	snap := Snapshot{
		Authenticated: s.user != nil,
		Loading:       s.loading,
		Initialized:   s.initialized,
		Error:         s.lastError,
	}
	if s.user != nil {
		user := *s.user
		snap.User = &user
	}
	s.mu.Unlock()

	return snap
}

// Identity reports the current user's id and email, and whether the
// session is authenticated. It is the key the server-verified resolver
// caches its bulk snapshot under.
func (s *Session) Identity() (userID, email string, authenticated bool) {
	snap := s.Snapshot()
	if !snap.Authenticated {
		return "", "", false
	}
	return snap.User.ID, snap.User.Email, true
}

// Role returns the current role claim, or "" when unauthenticated.
func (s *Session) Role() string {
	snap := s.Snapshot()
	if !snap.Authenticated {
		return ""
	}
	return snap.User.Role
}

// Capabilities resolves the current role claim against the role table.
// This is the optimistic resolver: UI affordances only, never the sole
// gate for a sensitive action.
func (s *Session) Capabilities() permission.Set {
	return s.table.Resolve(s.Role())
}

// PermissionTable exposes the role table the session was built with.
func (s *Session) PermissionTable() *permission.Table {
	return s.table
}

// ClearError clears the recorded failure message without other side
// effects.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
}

// Close releases the audit dispatcher. The session remains readable but
// emits no further events.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// Metrics returns the session's metric registry for wiring into the
// server-verified resolver and gates.
func (s *Session) Metrics() *Metrics {
	if s == nil {
		return nil
	}
	return s.metrics
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (s *Session) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}

func (s *Session) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

// beginOperation marks an auth operation in flight and clears the stale
// error, per the contract that error resets on the next operation start.
func (s *Session) beginOperation() {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
}

// setUnauthenticated drops the user and records msg (may be empty for the
// quiet paths, e.g. an expired token on startup).
func (s *Session) setUnauthenticated(msg string) {
	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.lastError = msg
	s.mu.Unlock()
}

// adoptUser is the single entry point into the authenticated state. Every
// transition that produces a user record funnels through here so the role
// invariant is enforced uniformly.
func (s *Session) adoptUser(ctx context.Context, u SessionUser, op string) error {
	u.Role = strings.TrimSpace(u.Role)
	if u.Role == "" {
		_ = s.tokens.ClearAuthentication(ctx)
		s.setUnauthenticated(msgNoUserRole)
		s.metricInc(MetricRoleInvariantViolation)
		s.emitAudit(ctx, auditEventInvariantViolation, false, u.ID, u.Email, ErrNoUserRole, func() map[string]string {
			return map[string]string{"op": op}
		})
		return newRoleError(op)
	}

	s.mu.Lock()
	user := u
	s.user = &user
	s.loading = false
	s.lastError = ""
	s.mu.Unlock()
	return nil
}
