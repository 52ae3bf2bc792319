package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"routedesk-hq/routedesk/pkg/config"
)

func TestCollector_RecordsWhenEnabled(t *testing.T) {
	c := NewCollector(config.MetricsConfig{Enabled: true}, nil)

	c.RecordSubmission("checkout", "staging")
	c.RecordSubmission("checkout", "staging")
	c.RecordValidationFailure("checkout", "policy")
	c.RecordSweep("completed", 250*time.Millisecond)
	c.RecordProcessed("submitted")
	c.RecordProviderError("create_pr")
	c.SetPendingRequests(3)

	got := testutil.ToFloat64(c.submissionsTotal.WithLabelValues("checkout", "staging"))
	if got != 2 {
		t.Errorf("expected 2 submissions, got %v", got)
	}
	got = testutil.ToFloat64(c.validationFailures.WithLabelValues("checkout", "policy"))
	if got != 1 {
		t.Errorf("expected 1 validation failure, got %v", got)
	}
	got = testutil.ToFloat64(c.pendingRequests)
	if got != 3 {
		t.Errorf("expected queue depth 3, got %v", got)
	}
}

func TestCollector_NoopWhenDisabled(t *testing.T) {
	c := NewCollector(config.MetricsConfig{Enabled: false}, nil)

	c.RecordSubmission("checkout", "staging")
	c.RecordProcessed("failed")

	got := testutil.ToFloat64(c.submissionsTotal.WithLabelValues("checkout", "staging"))
	if got != 0 {
		t.Errorf("expected no submissions recorded, got %v", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(config.MetricsConfig{Enabled: true, Namespace: "routedesk"}, nil)
	c.RecordSubmission("checkout", "staging")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "routedesk_submissions_total") {
		t.Error("expected submissions metric in exposition output")
	}
}
