package authz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hartwellk/shelfgate/api"
	"github.com/hartwellk/shelfgate/internal/metrics"
)

// Denial messages surfaced in State.Error; the UI matches on them to pick
// between "log in again" and "you lack permission".
const (
	MsgAuthenticationRequired = "Authentication required"
	MsgAccessDenied           = "Access denied"
)

// Snapshot is the bulk permission set as last confirmed by the server.
// The zero value denies everything.
type Snapshot struct {
	CanView                 bool
	CanAdd                  bool
	CanEdit                 bool
	CanDelete               bool
	CanManageUsers          bool
	CanViewBorrowingHistory bool
	CanBorrow               bool
	CanReturnBooks          bool
	CanViewAllBorrowings    bool
}

// Flag looks a permission up by its wire name ("canEdit", "canManageUsers",
// ...). Unknown names report !ok and deny.
func (s Snapshot) Flag(name string) (value, ok bool) {
	switch name {
	case "canView":
		return s.CanView, true
	case "canAdd":
		return s.CanAdd, true
	case "canEdit":
		return s.CanEdit, true
	case "canDelete":
		return s.CanDelete, true
	case "canManageUsers":
		return s.CanManageUsers, true
	case "canViewBorrowingHistory":
		return s.CanViewBorrowingHistory, true
	case "canBorrow":
		return s.CanBorrow, true
	case "canReturnBooks":
		return s.CanReturnBooks, true
	case "canViewAllBorrowings":
		return s.CanViewAllBorrowings, true
	default:
		return false, false
	}
}

// State is Snapshot plus fetch lifecycle, for view layers that render
// spinners and error banners.
type State struct {
	Snapshot Snapshot
	Loading  bool
	Error    string
}

// Identity reports who is signed in. *shelfgate.Session satisfies it.
type Identity interface {
	Identity() (userID, email string, authenticated bool)
}

// Verifier resolves permissions against the server. Safe for concurrent
// use; construct with NewVerifier.
type Verifier struct {
	api     *api.Client
	session Identity
	metrics *metrics.Metrics

	mu       sync.Mutex
	state    State
	cacheKey string    // identity the cached snapshot belongs to
	fetchID  uuid.UUID // most recently started bulk fetch
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithMetrics wires the session's metric registry into the resolver.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) { v.metrics = m }
}

func NewVerifier(client *api.Client, session Identity, opts ...Option) (*Verifier, error) {
	if client == nil {
		return nil, errors.New("api client required")
	}
	if session == nil {
		return nil, errors.New("session required")
	}

	v := &Verifier{api: client, session: session}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Current returns the cached bulk state without touching the network. If
// the signed-in identity changed since the cache was filled, the stale
// snapshot is not returned; callers get the denied zero value until the
// next Refresh.
func (v *Verifier) Current() State {
	key := v.identityKey()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cacheKey != key {
		return State{}
	}
	return v.state
}

// Refresh performs the bulk query and returns the resulting state. An
// unauthenticated session resolves locally to the denied snapshot with no
// network call. Concurrent refreshes may race; only the most recently
// started fetch is allowed to publish its result, so a slow response for a
// superseded identity can never overwrite fresher state.
func (v *Verifier) Refresh(ctx context.Context) State {
	_, _, authenticated := v.session.Identity()
	key := v.identityKey()

	if !authenticated {
		denied := State{}
		v.publish(uuid.Nil, key, denied, true)
		return denied
	}

	fetch := uuid.New()
	v.mu.Lock()
	v.fetchID = fetch
	v.state.Loading = true
	v.mu.Unlock()

	payload, err := v.api.Permissions(ctx)

	next := State{}
	switch {
	case err == nil:
		next.Snapshot = Snapshot{
			CanView:                 payload.CanView,
			CanAdd:                  payload.CanAdd,
			CanEdit:                 payload.CanEdit,
			CanDelete:               payload.CanDelete,
			CanManageUsers:          payload.CanManageUsers,
			CanViewBorrowingHistory: payload.CanViewBorrowingHistory,
			CanBorrow:               payload.CanBorrow,
			CanReturnBooks:          payload.CanReturnBooks,
			CanViewAllBorrowings:    payload.CanViewAllBorrowings,
		}
		v.metricInc(metrics.MetricBulkFetchSuccess)
	case errors.Is(err, api.ErrUnauthenticated):
		next.Error = MsgAuthenticationRequired
		v.metricInc(metrics.MetricBulkFetchDenied)
	case errors.Is(err, api.ErrForbidden):
		next.Error = MsgAccessDenied
		v.metricInc(metrics.MetricBulkFetchDenied)
	default:
		next.Error = err.Error()
		v.metricInc(metrics.MetricBulkFetchDenied)
	}

	if !v.publish(fetch, key, next, false) {
		// Superseded while in flight; report what we fetched but leave
		// the newer fetch's state alone.
		v.metricInc(metrics.MetricBulkFetchStale)
	}
	return next
}

// EnsureFresh returns the cached state when it matches the current
// identity and is settled, refreshing otherwise.
func (v *Verifier) EnsureFresh(ctx context.Context) State {
	key := v.identityKey()

	v.mu.Lock()
	cached := v.state
	hit := v.cacheKey == key && !cached.Loading
	v.mu.Unlock()

	if hit {
		return cached
	}
	return v.Refresh(ctx)
}

// VerifyAccess performs the point query for one resource/action pair,
// optionally scoped by resourceID. It returns true only for an exact
// server-confirmed allow; every other outcome — unauthenticated session,
// transport error, malformed body, timeout — is false. Results are never
// cached, not even per resource instance.
func (v *Verifier) VerifyAccess(ctx context.Context, resource, action, resourceID string) bool {
	if _, _, authenticated := v.session.Identity(); !authenticated {
		v.metricInc(metrics.MetricVerifyDenied)
		return false
	}

	start := time.Now()
	allowed, err := v.api.VerifyAccess(ctx, resource, action, resourceID)
	v.observe(metrics.MetricVerifyLatency, time.Since(start))

	if err != nil || !allowed {
		v.metricInc(metrics.MetricVerifyDenied)
		return false
	}
	v.metricInc(metrics.MetricVerifyAllowed)
	return true
}

// Invalidate drops the cached snapshot, forcing the next read through the
// server. Call it on login, logout, or any identity change.
func (v *Verifier) Invalidate() {
	v.mu.Lock()
	v.state = State{}
	v.cacheKey = ""
	v.fetchID = uuid.Nil
	v.mu.Unlock()
}

// publish installs next as the current state if fetch is still the most
// recently started fetch (or force is set). Reports whether it published.
func (v *Verifier) publish(fetch uuid.UUID, key string, next State, force bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !force && v.fetchID != fetch {
		return false
	}
	// Publishing also claims the fetch slot, so a force-publish (logout,
	// identity change) invalidates any fetch still in flight.
	v.fetchID = fetch
	v.state = next
	v.cacheKey = key
	return true
}

func (v *Verifier) identityKey() string {
	userID, email, authenticated := v.session.Identity()
	if !authenticated {
		return ""
	}
	return userID + "|" + email
}

func (v *Verifier) metricInc(id metrics.MetricID) {
	if v.metrics != nil {
		v.metrics.Inc(id)
	}
}

func (v *Verifier) observe(id metrics.MetricID, d time.Duration) {
	if v.metrics != nil {
		v.metrics.Observe(id, d)
	}
}
