//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"routedesk-hq/routedesk/pkg/audit"
	"routedesk-hq/routedesk/pkg/config"
	"routedesk-hq/routedesk/pkg/provider"
	"routedesk-hq/routedesk/pkg/server"
	"routedesk-hq/routedesk/pkg/service"
	"routedesk-hq/routedesk/pkg/store"
	"routedesk-hq/routedesk/pkg/validate"
	"routedesk-hq/routedesk/pkg/worker"
)

const (
	integrationUpstreams = "upstream checkout_pool {\n    server 10.0.0.1:8080;\n}\n"
	integrationLocations = "location /api/checkout/cart {\n    proxy_pass http://checkout_pool;\n}\n"
)

// TestChangePipelineIntegration drives the full flow: a fragment
// submission through the HTTP API, a worker sweep against the
// provider, and the resulting status transition read back over HTTP.
func TestChangePipelineIntegration(t *testing.T) {
	rules, err := validate.NewSource("", nil)
	if err != nil {
		t.Fatalf("failed to load rules: %v", err)
	}
	pipeline := validate.NewPipeline(rules, "/nonexistent/routedesk-test-nginx", nil)

	st := store.NewMemoryStore()
	defer st.Close()

	auditLog, err := audit.NewSQLiteLog(audit.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "audit.db"),
	})
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer auditLog.Close()

	prov := provider.NewMockProvider()
	svc := service.New(st, prov, pipeline, auditLog, nil, nil)
	srv := server.New(config.ServerConfig{ListenAddress: "127.0.0.1:0"}, svc, nil, nil, nil)
	handler := srv.Handler()

	w := worker.New(config.WorkerConfig{
		Enabled:       true,
		PollInterval:  10 * time.Second,
		MaxAttempts:   5,
		RecordTimeout: 60 * time.Second,
	}, st, prov, pipeline, auditLog, nil, nil)

	// Submit a change request through the API.
	body, _ := json.Marshal(map[string]string{
		"upstreams_config": integrationUpstreams,
		"locations_config": integrationLocations,
	})
	req := httptest.NewRequest("POST", "/api/nginx/checkout/submit/staging", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit returned %d: %s", rec.Code, rec.Body.String())
	}

	var created store.ChangeRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad submit response: %v", err)
	}
	if created.Status != store.StatusPending {
		t.Fatalf("expected PENDING after submit, got %s", created.Status)
	}
	if prov.CreateCalls() != 0 {
		t.Fatal("submission must not touch the provider")
	}

	// A single sweep drains the queue and opens the pull request.
	w.Sweep(context.Background())

	if prov.CreateCalls() != 1 {
		t.Fatalf("expected 1 pull request, got %d", prov.CreateCalls())
	}

	// The new status is visible through the listing endpoint.
	req = httptest.NewRequest("GET", "/api/nginx/checkout/requests", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("requests returned %d", rec.Code)
	}
	var listed []store.ChangeRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("bad listing response: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != store.StatusSubmitted {
		t.Fatalf("expected one SUBMITTED request, got %+v", listed)
	}
	if listed[0].PRID == "" {
		t.Error("submitted request should carry a pull request identifier")
	}

	// The committed configuration now reflects the change.
	req = httptest.NewRequest("GET", "/api/nginx/checkout/staging", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("config returned %d", rec.Code)
	}
	var cfgResp struct {
		UpstreamsConfig string `json:"upstreams_config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cfgResp); err != nil {
		t.Fatalf("bad config response: %v", err)
	}
	if cfgResp.UpstreamsConfig != integrationUpstreams {
		t.Error("committed upstreams do not match the submitted fragment")
	}

	// The audit trail holds both the creation and the submission.
	events, err := auditLog.Events(context.Background(), audit.Query{Team: "checkout"})
	if err != nil {
		t.Fatalf("failed to query audit log: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
}
