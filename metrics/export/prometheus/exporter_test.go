package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeSource struct {
	snapshot goSession.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goSession.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func scrape(t *testing.T, exp *PrometheusExporter) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return rec.Code, rec.Header().Get("Content-Type"), string(body)
}

func TestCollectEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters:   map[goSession.MetricID]uint64{},
			Histograms: map[goSession.MetricID][]uint64{},
		},
	})

	_, _, out := scrape(t, exp)
	if strings.Contains(out, "gosession_") {
		t.Fatalf("expected no series for disabled metrics, got:\n%s", out)
	}
}

func TestCollectIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters: map[goSession.MetricID]uint64{
				goSession.MetricLoginSuccess: 7,
			},
			Histograms: map[goSession.MetricID][]uint64{
				goSession.MetricGatewayLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	code, contentType, out := scrape(t, exp)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(contentType, "text/plain") {
		t.Fatalf("expected text exposition content type, got %q", contentType)
	}
	for _, want := range []string{
		"gosession_login_success_total 7",
		"gosession_logout_total 0",
		`gosession_gateway_latency_seconds_bucket{le="0.005"} 1`,
		`gosession_gateway_latency_seconds_bucket{le="0.5"} 28`,
		`gosession_gateway_latency_seconds_bucket{le="+Inf"} 36`,
		"gosession_gateway_latency_seconds_count 36",
		"gosession_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRegistersWithCallerRegistry(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters:   map[goSession.MetricID]uint64{goSession.MetricLogout: 4},
			Histograms: map[goSession.MetricID][]uint64{},
		},
	})

	reg := prometheus.NewRegistry()
	if err := reg.Register(exp); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	var found bool
	for _, mf := range families {
		if mf.GetName() == "gosession_logout_total" {
			found = mf.GetMetric()[0].GetCounter().GetValue() == 4
		}
		if mf.GetName() == "gosession_gateway_latency_seconds" {
			t.Fatal("expected no histogram when latency is disabled")
		}
	}
	if !found {
		t.Fatal("expected gosession_logout_total 4")
	}
}

func TestExporterOverStore(t *testing.T) {
	s, err := goSession.New().WithGateway(nopGateway{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Close()
	if err := s.Logout(t.Context()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	_, _, out := scrape(t, NewPrometheusExporter(s))
	for _, want := range []string{
		"gosession_logout_total 1",
		`gosession_session_status{status="anonymous"} 1`,
		`gosession_session_status{status="authenticated"} 0`,
		`gosession_session_status{status="bootstrapping"} 0`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}
