package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	shelfgate "github.com/hartwellk/shelfgate"
)

type fakeSource struct {
	snapshot shelfgate.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() shelfgate.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                       { return f.dropped }

func populatedSource() *fakeSource {
	return &fakeSource{
		snapshot: shelfgate.MetricsSnapshot{
			Counters: map[shelfgate.MetricID]uint64{
				shelfgate.MetricLoginSuccess: 3,
				shelfgate.MetricVerifyDenied: 7,
			},
			Histograms: map[shelfgate.MetricID][]uint64{
				shelfgate.MetricVerifyLatency: {2, 0, 1, 0, 0, 0, 0, 1},
			},
		},
		dropped: 5,
	}
}

func TestRenderCounters(t *testing.T) {
	exporter := NewExporterFromSource(populatedSource())
	out := exporter.Render()

	for _, want := range []string{
		"# TYPE shelfgate_login_success_total counter",
		"shelfgate_login_success_total 3",
		"shelfgate_verify_denied_total 7",
		"shelfgate_logout_total 0",
		"shelfgate_audit_dropped_total 5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q", want)
		}
	}
}

func TestRenderHistogramIsCumulative(t *testing.T) {
	exporter := NewExporterFromSource(populatedSource())
	out := exporter.Render()

	for _, want := range []string{
		"# TYPE shelfgate_verify_latency_seconds histogram",
		`shelfgate_verify_latency_seconds_bucket{le="0.005"} 2`,
		`shelfgate_verify_latency_seconds_bucket{le="0.025"} 3`,
		`shelfgate_verify_latency_seconds_bucket{le="+Inf"} 4`,
		"shelfgate_verify_latency_seconds_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q", want)
		}
	}
}

func TestRenderEmptyRegistry(t *testing.T) {
	exporter := NewExporterFromSource(&fakeSource{
		snapshot: shelfgate.MetricsSnapshot{
			Counters:   map[shelfgate.MetricID]uint64{},
			Histograms: map[shelfgate.MetricID][]uint64{},
		},
	})
	if out := exporter.Render(); out != "" {
		t.Fatalf("empty registry should render nothing, got %q", out)
	}

	var nilExporter *Exporter
	if out := nilExporter.Render(); out != "" {
		t.Fatalf("nil exporter should render nothing, got %q", out)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	exporter := NewExporterFromSource(populatedSource())

	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "shelfgate_login_success_total 3") {
		t.Fatal("handler body missing counter line")
	}
}
