package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one Store counter.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one Store histogram.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goSession.MetricBootstrapAuthenticated, Name: "gosession_bootstrap_authenticated_total", Help: "Bootstraps that restored a session."},
	{ID: goSession.MetricBootstrapAnonymous, Name: "gosession_bootstrap_anonymous_total", Help: "Bootstraps that ended anonymous."},
	{ID: goSession.MetricBootstrapDiscarded, Name: "gosession_bootstrap_discarded_total", Help: "Persisted tokens discarded at bootstrap."},
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed logins."},
	{ID: goSession.MetricLoginRateLimited, Name: "gosession_login_rate_limited_total", Help: "Logins refused by the client-side throttle."},
	{ID: goSession.MetricRegisterSuccess, Name: "gosession_register_success_total", Help: "Successful registrations."},
	{ID: goSession.MetricRegisterFailure, Name: "gosession_register_failure_total", Help: "Failed registrations."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Local logouts."},
	{ID: goSession.MetricRevokeFailure, Name: "gosession_revoke_failure_total", Help: "Failed best-effort server revocations."},
	{ID: goSession.MetricMalformedToken, Name: "gosession_malformed_token_total", Help: "Tokens that failed decoding."},
	{ID: goSession.MetricProfileRefresh, Name: "gosession_profile_refresh_total", Help: "Successful profile refreshes."},
}

var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricGatewayLatency, Name: "gosession_gateway_latency_seconds", Help: "Identity service round-trip latency."},
}

// HistogramBounds are the finite upper bounds in seconds; the last Store
// bucket is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names every bucket, +Inf included, for exporters
// that flatten a histogram into gauges.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// Counter for events the audit dispatcher dropped.
const (
	AuditDroppedName = "gosession_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped due to dispatcher backpressure."
)

// Gauge reporting the session lifecycle state as one series per status.
const (
	SessionStatusName  = "gosession_session_status"
	SessionStatusHelp  = "Session lifecycle state; the series for the current status is 1."
	SessionStatusLabel = "status"
)

// SessionStatuses lists every status reported by the session gauge.
var SessionStatuses = []goSession.Status{
	goSession.StatusBootstrapping,
	goSession.StatusAnonymous,
	goSession.StatusAuthenticated,
}

// StatusSource is implemented by sources that can report the session state.
// [goSession.Store] does.
type StatusSource interface {
	Status() goSession.Status
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling short input.
func NormalizeBuckets(raw []uint64) [goSession.HistogramBucketCount]uint64 {
	var out [goSession.HistogramBucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [goSession.HistogramBucketCount]uint64) [goSession.HistogramBucketCount]uint64 {
	var out [goSession.HistogramBucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
