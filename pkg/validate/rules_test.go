package validate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	if len(rules.ForbiddenDirectives) == 0 {
		t.Error("expected default forbidden directives")
	}
	if len(rules.ScopePrefixTemplates) != 2 {
		t.Errorf("expected 2 scope prefix templates, got %d", len(rules.ScopePrefixTemplates))
	}

	// Every forbidden directive must also be recognized, otherwise the
	// syntax allow-list would mask policy findings.
	allowed := make(map[string]bool)
	for _, d := range rules.AllowedDirectives {
		allowed[d] = true
	}
	for _, d := range rules.ForbiddenDirectives {
		if !allowed[d] {
			t.Errorf("forbidden directive %q is not in the allow-list", d)
		}
	}
}

func TestLoadRules_MergesOverDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rules.yaml")

	content := `
forbidden_directives:
  - rewrite
  - return
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("failed to load rules: %v", err)
	}

	if len(rules.ForbiddenDirectives) != 2 {
		t.Errorf("expected file to replace forbidden directives, got: %v", rules.ForbiddenDirectives)
	}
	// Untouched lists keep their defaults.
	if len(rules.AllowedDirectives) == 0 {
		t.Error("expected default allow-list to survive a partial rules file")
	}
	if len(rules.ScopePrefixTemplates) != 2 {
		t.Error("expected default scope templates to survive a partial rules file")
	}
}

func TestLoadRules_BadFile(t *testing.T) {
	if _, err := LoadRules("/nonexistent/rules.yaml"); err == nil {
		t.Error("expected error for missing rules file")
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rules.yaml")
	if err := os.WriteFile(path, []byte("forbidden_directives: {not list"), 0644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Error("expected error for malformed rules file")
	}
}

func TestSource_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rules.yaml")

	if err := os.WriteFile(path, []byte("forbidden_directives: [rewrite]\n"), 0644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	source, err := NewSource(path, nil)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	if got := source.Rules().ForbiddenDirectives; len(got) != 1 {
		t.Fatalf("expected 1 forbidden directive, got: %v", got)
	}

	if err := os.WriteFile(path, []byte("forbidden_directives: [rewrite, return]\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite rules file: %v", err)
	}
	if err := source.Reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := source.Rules().ForbiddenDirectives; len(got) != 2 {
		t.Errorf("expected 2 forbidden directives after reload, got: %v", got)
	}
}

func TestSource_ReloadFailureKeepsPrevious(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rules.yaml")

	if err := os.WriteFile(path, []byte("forbidden_directives: [rewrite]\n"), 0644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	source, err := NewSource(path, nil)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	if err := os.WriteFile(path, []byte("forbidden_directives: {broken"), 0644); err != nil {
		t.Fatalf("failed to corrupt rules file: %v", err)
	}
	if err := source.Reload(); err == nil {
		t.Fatal("expected reload error for corrupt file")
	}
	if got := source.Rules().ForbiddenDirectives; len(got) != 1 || got[0] != "rewrite" {
		t.Errorf("expected previous rules to stay active, got: %v", got)
	}
}

func TestSource_Watch(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rules.yaml")

	if err := os.WriteFile(path, []byte("forbidden_directives: [rewrite]\n"), 0644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	source, err := NewSource(path, nil)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := source.Watch(ctx); err != nil {
		t.Fatalf("failed to start watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("forbidden_directives: [rewrite, return, root]\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite rules file: %v", err)
	}

	// Reload is debounced; poll for the new rules.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(source.Rules().ForbiddenDirectives) == 3 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("watch did not pick up rules change, got: %v", source.Rules().ForbiddenDirectives)
}

func TestSource_WatchRequiresPath(t *testing.T) {
	source, err := NewSource("", nil)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	if err := source.Watch(context.Background()); err == nil {
		t.Error("expected error watching a source with no file")
	}
}
