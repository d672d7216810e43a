package shelfgate

import (
	"io"

	internalaudit "github.com/hartwellk/shelfgate/internal/audit"
	internalmetrics "github.com/hartwellk/shelfgate/internal/metrics"
)

// SessionUser is the authenticated account as the session engine holds it.
// Role is guaranteed non-empty on any user reachable through [Session];
// the engine refuses to enter the authenticated state otherwise.
type SessionUser struct {
	ID       string
	Email    string
	FullName string
	Role     string
}

// Snapshot is a point-in-time, immutable view of the session state.
//
// Snapshot instances are values; mutating one has no effect on the session.
type Snapshot struct {
	// User is nil whenever Authenticated is false.
	User *SessionUser
	// Authenticated is true iff User is non-nil with a non-empty role.
	Authenticated bool
	// Loading is true while an auth operation is in flight.
	Loading bool
	// Initialized flips to true exactly once, when the first Initialize
	// attempt settles. Gates must not redirect or render protected
	// content before then.
	Initialized bool
	// Error is the last human-readable failure message, or empty.
	Error string
}

// Credentials is the login input.
type Credentials struct {
	Email      string
	Password   string
	RememberMe bool
}

// Registration is the account-creation input.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// AuditEvent is a structured audit record emitted by the session engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricInitFromToken          = internalmetrics.MetricInitFromToken
	MetricInitFromServer         = internalmetrics.MetricInitFromServer
	MetricInitUnauthenticated    = internalmetrics.MetricInitUnauthenticated
	MetricLoginSuccess           = internalmetrics.MetricLoginSuccess
	MetricLoginFailure           = internalmetrics.MetricLoginFailure
	MetricRegisterSuccess        = internalmetrics.MetricRegisterSuccess
	MetricRegisterFailure        = internalmetrics.MetricRegisterFailure
	MetricRefreshSuccess         = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure         = internalmetrics.MetricRefreshFailure
	MetricLogout                 = internalmetrics.MetricLogout
	MetricRoleInvariantViolation = internalmetrics.MetricRoleInvariantViolation
	MetricBulkFetchSuccess       = internalmetrics.MetricBulkFetchSuccess
	MetricBulkFetchDenied        = internalmetrics.MetricBulkFetchDenied
	MetricBulkFetchStale         = internalmetrics.MetricBulkFetchStale
	MetricVerifyAllowed          = internalmetrics.MetricVerifyAllowed
	MetricVerifyDenied           = internalmetrics.MetricVerifyDenied
	MetricGateAllowed            = internalmetrics.MetricGateAllowed
	MetricGateRedirected         = internalmetrics.MetricGateRedirected
	MetricGateDenied             = internalmetrics.MetricGateDenied
	MetricVerifyLatency          = internalmetrics.MetricVerifyLatency
)

// Metrics holds atomic counters and the verify-access latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
