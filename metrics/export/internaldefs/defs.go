package internaldefs

import (
	shelfgate "github.com/hartwellk/shelfgate"
)

// CounterDef pairs a metric ID with its Prometheus exposition name.
type CounterDef struct {
	ID   shelfgate.MetricID
	Name string
	Help string
}

// HistogramDef pairs a histogram metric ID with its exposition name.
type HistogramDef struct {
	ID   shelfgate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: shelfgate.MetricInitFromToken, Name: "shelfgate_init_from_token_total", Help: "Sessions initialized from a locally decoded token."},
	{ID: shelfgate.MetricInitFromServer, Name: "shelfgate_init_from_server_total", Help: "Sessions initialized via the current-user endpoint."},
	{ID: shelfgate.MetricInitUnauthenticated, Name: "shelfgate_init_unauthenticated_total", Help: "Initializations that settled unauthenticated."},
	{ID: shelfgate.MetricLoginSuccess, Name: "shelfgate_login_success_total", Help: "Successful login attempts."},
	{ID: shelfgate.MetricLoginFailure, Name: "shelfgate_login_failure_total", Help: "Failed login attempts."},
	{ID: shelfgate.MetricRegisterSuccess, Name: "shelfgate_register_success_total", Help: "Successful registrations."},
	{ID: shelfgate.MetricRegisterFailure, Name: "shelfgate_register_failure_total", Help: "Failed registrations."},
	{ID: shelfgate.MetricRefreshSuccess, Name: "shelfgate_refresh_success_total", Help: "Successful credential refreshes."},
	{ID: shelfgate.MetricRefreshFailure, Name: "shelfgate_refresh_failure_total", Help: "Failed credential refreshes (forced logout)."},
	{ID: shelfgate.MetricLogout, Name: "shelfgate_logout_total", Help: "Logout operations."},
	{ID: shelfgate.MetricRoleInvariantViolation, Name: "shelfgate_role_invariant_violation_total", Help: "User records rejected for a blank role."},
	{ID: shelfgate.MetricBulkFetchSuccess, Name: "shelfgate_bulk_fetch_success_total", Help: "Successful bulk permission fetches."},
	{ID: shelfgate.MetricBulkFetchDenied, Name: "shelfgate_bulk_fetch_denied_total", Help: "Bulk permission fetches resolved to the denied snapshot."},
	{ID: shelfgate.MetricBulkFetchStale, Name: "shelfgate_bulk_fetch_stale_total", Help: "Bulk fetch results discarded as superseded."},
	{ID: shelfgate.MetricVerifyAllowed, Name: "shelfgate_verify_allowed_total", Help: "Point queries confirmed by the server."},
	{ID: shelfgate.MetricVerifyDenied, Name: "shelfgate_verify_denied_total", Help: "Point queries denied or failed closed."},
	{ID: shelfgate.MetricGateAllowed, Name: "shelfgate_gate_allowed_total", Help: "Route guard evaluations that admitted the request."},
	{ID: shelfgate.MetricGateRedirected, Name: "shelfgate_gate_redirected_total", Help: "Route guard evaluations redirected to login."},
	{ID: shelfgate.MetricGateDenied, Name: "shelfgate_gate_denied_total", Help: "Route guard evaluations denied."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: shelfgate.MetricVerifyLatency, Name: "shelfgate_verify_latency_seconds", Help: "Server verify-access round-trip latency histogram."},
}

// HistogramBounds are the upper bucket bounds, matching the storage
// layout in internal/metrics.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative counts
// Prometheus histograms expose.
func CumulativeBuckets(buckets [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range buckets {
		running += v
		out[i] = running
	}
	return out
}
