package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("/api/auth/me", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/api/auth/me", "GET", 200, 7*time.Millisecond)
	m.RecordError("/api/auth/me", "GET", "UNAUTHORIZED")
	m.RecordAuthOutcome("rejected")

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/auth/me", "GET", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("/api/auth/me", "GET", "UNAUTHORIZED")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.authOutcomes.WithLabelValues("rejected")); got != 1 {
		t.Errorf("auth outcomes = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordAuthOutcome("anonymous")
}
