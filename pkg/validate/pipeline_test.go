package validate

import (
	"reflect"
	"strings"
	"testing"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	source, err := NewSource("", nil)
	if err != nil {
		t.Fatalf("failed to create rule source: %v", err)
	}
	return NewPipeline(source, noNginx, nil)
}

const validUpstreams = `upstream checkout_backend {
    server 10.0.0.1:8080;
}`

const validLocations = `location /api/checkout/ {
    proxy_pass http://checkout_backend;
}`

func TestPipeline_Valid(t *testing.T) {
	p := newTestPipeline(t)

	result, err := p.ValidateSplit("checkout", validUpstreams, validLocations)
	if err != nil {
		t.Fatalf("expected valid submission, got: %v", err)
	}
	if len(result.Locations) != 1 {
		t.Fatalf("expected 1 parsed location, got %d", len(result.Locations))
	}
	if result.Locations[0].Path != "/api/checkout/" {
		t.Errorf("expected parsed path /api/checkout/, got %q", result.Locations[0].Path)
	}
}

func TestPipeline_SyntaxFailureShortCircuits(t *testing.T) {
	p := newTestPipeline(t)

	// Unbalanced braces AND a scope violation; only the syntax message
	// must surface.
	badLocations := `location /admin/ {
    proxy_pass http://checkout_backend;
`
	_, err := p.ValidateSplit("checkout", validUpstreams, badLocations)
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Messages) != 1 {
		t.Fatalf("expected a single syntax message, got: %v", ve.Messages)
	}
	if !strings.Contains(ve.Messages[0], "mismatched braces") {
		t.Errorf("expected brace message, got: %s", ve.Messages[0])
	}
}

func TestPipeline_AggregatesPolicyAndScope(t *testing.T) {
	p := newTestPipeline(t)

	badLocations := `location /admin/ {
    rewrite ^/a /b;
}`
	_, err := p.ValidateSplit("checkout", validUpstreams, badLocations)
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Messages) != 2 {
		t.Fatalf("expected policy and scope findings together, got: %v", ve.Messages)
	}

	joined := strings.Join(ve.Messages, "\n")
	if !strings.Contains(joined, "rewrite") {
		t.Errorf("expected a policy finding naming rewrite, got: %v", ve.Messages)
	}
	if !strings.Contains(joined, "/admin/") {
		t.Errorf("expected a scope finding naming /admin/, got: %v", ve.Messages)
	}
}

func TestPipeline_ScopeViolation(t *testing.T) {
	p := newTestPipeline(t)

	badLocations := `location /admin/ {
    proxy_pass http://checkout_backend;
}`
	_, err := p.ValidateSplit("checkout", validUpstreams, badLocations)
	if err == nil {
		t.Fatal("expected scope violation")
	}

	ve, _ := AsValidationError(err)
	if len(ve.Messages) != 1 || !strings.Contains(ve.Messages[0], "/admin/") {
		t.Errorf("expected a scope violation naming /admin/, got: %v", ve.Messages)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	p := newTestPipeline(t)

	badLocations := `location /admin/ {
    rewrite ^/a /b;
}`

	_, err1 := p.ValidateSplit("checkout", validUpstreams, badLocations)
	_, err2 := p.ValidateSplit("checkout", validUpstreams, badLocations)

	ve1, ok1 := AsValidationError(err1)
	ve2, ok2 := AsValidationError(err2)
	if !ok1 || !ok2 {
		t.Fatal("expected validation errors from both runs")
	}
	if !reflect.DeepEqual(ve1.Messages, ve2.Messages) {
		t.Errorf("expected identical message lists:\n%v\n%v", ve1.Messages, ve2.Messages)
	}

	// Identical valid input passes both times.
	if _, err := p.ValidateSplit("checkout", validUpstreams, validLocations); err != nil {
		t.Errorf("first valid run failed: %v", err)
	}
	if _, err := p.ValidateSplit("checkout", validUpstreams, validLocations); err != nil {
		t.Errorf("second valid run failed: %v", err)
	}
}

func TestPipeline_EmptyFragments(t *testing.T) {
	p := newTestPipeline(t)

	result, err := p.ValidateSplit("checkout", "", "")
	if err != nil {
		t.Fatalf("empty fragments should validate (nothing to reject), got: %v", err)
	}
	if len(result.Locations) != 0 {
		t.Errorf("expected no parsed locations, got %d", len(result.Locations))
	}
}
