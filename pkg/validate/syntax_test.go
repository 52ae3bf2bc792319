package validate

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// noNginx is an absolute path that never resolves, so tests exercise the
// heuristics without depending on an nginx binary on the host.
const noNginx = "/nonexistent/routedesk-test-nginx"

func newTestSyntaxValidator(t *testing.T) *SyntaxValidator {
	t.Helper()
	source, err := NewSource("", nil)
	if err != nil {
		t.Fatalf("failed to create rule source: %v", err)
	}
	return NewSyntaxValidator(source, noNginx, nil)
}

func TestSyntaxValidator_Valid(t *testing.T) {
	v := newTestSyntaxValidator(t)

	content := `
upstream checkout_backend {
    server 10.0.0.1:8080;
}

location /api/checkout/ {
    proxy_pass http://checkout_backend;
    proxy_set_header Host $host;
}
`
	if msg := v.Validate(content); msg != "" {
		t.Errorf("expected valid, got: %s", msg)
	}
}

func TestSyntaxValidator_MismatchedBraces(t *testing.T) {
	v := newTestSyntaxValidator(t)

	content := `
location /api/checkout/ {
    proxy_pass http://checkout_backend;
`
	msg := v.Validate(content)
	if msg == "" {
		t.Fatal("expected brace mismatch error")
	}
	if !strings.Contains(msg, "mismatched braces") {
		t.Errorf("expected mismatched braces message, got: %s", msg)
	}
	if !strings.Contains(msg, "1 opening, 0 closing") {
		t.Errorf("expected brace counts in message, got: %s", msg)
	}
}

func TestSyntaxValidator_MissingSemicolon(t *testing.T) {
	v := newTestSyntaxValidator(t)

	content := `location /api/checkout/ {
    proxy_pass http://checkout_backend
}`
	msg := v.Validate(content)
	if msg == "" {
		t.Fatal("expected missing terminator error")
	}
	if !strings.Contains(msg, "line 2") {
		t.Errorf("expected 1-based line number in message, got: %s", msg)
	}
	if !strings.Contains(msg, "proxy_pass http://checkout_backend") {
		t.Errorf("expected offending line in message, got: %s", msg)
	}
}

func TestSyntaxValidator_UnrecognizedDirective(t *testing.T) {
	v := newTestSyntaxValidator(t)

	content := `location /api/checkout/ {
    proxxy_pass http://checkout_backend;
}`
	msg := v.Validate(content)
	if msg == "" {
		t.Fatal("expected unrecognized directive error")
	}
	if !strings.Contains(msg, `"proxxy_pass"`) {
		t.Errorf("expected directive name in message, got: %s", msg)
	}
	if !strings.Contains(msg, "line 2") {
		t.Errorf("expected line number in message, got: %s", msg)
	}
}

func TestSyntaxValidator_ForbiddenDirectiveIsRecognized(t *testing.T) {
	// Forbidden directives must pass the syntax allow-list so the policy
	// validator can name them.
	v := newTestSyntaxValidator(t)

	content := `location /api/checkout/ {
    rewrite ^/old /new;
}`
	if msg := v.Validate(content); msg != "" {
		t.Errorf("expected rewrite to be syntactically recognized, got: %s", msg)
	}
}

func TestSyntaxValidator_CommentsAndBlankLines(t *testing.T) {
	v := newTestSyntaxValidator(t)

	content := `
# routing for the checkout team

location /api/checkout/ {
    # talk to the pool
    proxy_pass http://checkout_backend;
}
`
	if msg := v.Validate(content); msg != "" {
		t.Errorf("expected comments and blanks to be ignored, got: %s", msg)
	}
}

func TestSyntaxValidator_ShortCircuitOrder(t *testing.T) {
	v := newTestSyntaxValidator(t)

	// Both a brace mismatch and a missing semicolon; the brace check
	// runs first.
	content := `location /api/checkout/ {
    proxy_pass http://checkout_backend
`
	msg := v.Validate(content)
	if !strings.Contains(msg, "mismatched braces") {
		t.Errorf("expected brace check to fire first, got: %s", msg)
	}
}

func TestSyntaxValidator_MissingBinarySkipsDryRun(t *testing.T) {
	v := newTestSyntaxValidator(t)

	content := `location /api/checkout/ {
    proxy_pass http://checkout_backend;
}`
	// The heuristics pass and the nonexistent binary must not fail the
	// validation.
	if msg := v.Validate(content); msg != "" {
		t.Errorf("expected missing binary to skip the dry run, got: %s", msg)
	}
}

func TestSyntaxValidator_DryRunSkipIsLogged(t *testing.T) {
	source, err := NewSource("", nil)
	if err != nil {
		t.Fatalf("failed to create rule source: %v", err)
	}

	// A present binary makes the dry run reachable; it is never executed
	// because temp-dir creation fails first.
	binary := filepath.Join(t.TempDir(), "nginx")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("failed to write stub binary: %v", err)
	}
	t.Setenv("TMPDIR", filepath.Join(t.TempDir(), "missing"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	v := NewSyntaxValidator(source, binary, logger)

	content := `location /api/checkout/ {
    proxy_pass http://checkout_backend;
}`
	// The skip must not fail validation, but it must leave a trace.
	if msg := v.Validate(content); msg != "" {
		t.Fatalf("expected skipped dry run to pass validation, got: %s", msg)
	}
	if !strings.Contains(buf.String(), "nginx dry run skipped") {
		t.Errorf("expected skip to be logged, got: %s", buf.String())
	}
}
