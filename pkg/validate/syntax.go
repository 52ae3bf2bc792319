package validate

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SyntaxValidator checks that a configuration fragment is structurally
// well-formed. The cheap line-level heuristics run first so the common
// paste errors (unbalanced braces, forgotten semicolons, typoed
// directives) get specific messages; the heavier nginx dry run is the
// final pass.
type SyntaxValidator struct {
	rules *Source

	// nginxBinary is the binary for the delegated dry run. Empty means
	// look up "nginx" on PATH. A missing binary skips the dry run; the
	// heuristics still apply.
	nginxBinary string

	logger *slog.Logger
}

// NewSyntaxValidator creates a syntax validator reading the allow-list
// through the given rule source.
func NewSyntaxValidator(rules *Source, nginxBinary string, logger *slog.Logger) *SyntaxValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyntaxValidator{
		rules:       rules,
		nginxBinary: nginxBinary,
		logger:      logger.With("component", "validate.syntax"),
	}
}

// Validate checks content and returns an error message, or "" if the
// content passes. Checks run in order and short-circuit on the first
// failure.
func (v *SyntaxValidator) Validate(content string) string {
	if msg := checkBraceBalance(content); msg != "" {
		return msg
	}
	if msg := checkLineTerminators(content); msg != "" {
		return msg
	}
	if msg := v.checkDirectiveNames(content); msg != "" {
		return msg
	}
	return v.dryRun(content)
}

// checkBraceBalance verifies that opening and closing brace counts match.
func checkBraceBalance(content string) string {
	open := strings.Count(content, "{")
	closed := strings.Count(content, "}")
	if open != closed {
		return fmt.Sprintf("syntax error: mismatched braces (%d opening, %d closing)", open, closed)
	}
	return ""
}

// checkLineTerminators applies the line-level heuristic: every non-empty,
// non-comment line that neither opens nor closes a block must end with a
// semicolon.
func checkLineTerminators(content string) string {
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, "}") {
			continue
		}
		if !strings.HasSuffix(trimmed, ";") {
			return fmt.Sprintf("syntax error on line %d: missing ';' terminator: %q", i+1, trimmed)
		}
	}
	return ""
}

// checkDirectiveNames verifies every terminated line's first token against
// the directive allow-list.
func (v *SyntaxValidator) checkDirectiveNames(content string) string {
	allowed := make(map[string]bool)
	for _, name := range v.rules.Rules().AllowedDirectives {
		allowed[name] = true
	}

	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !strings.HasSuffix(trimmed, ";") {
			continue
		}
		fields := strings.Fields(strings.TrimSuffix(trimmed, ";"))
		if len(fields) == 0 {
			continue
		}
		if !allowed[fields[0]] {
			return fmt.Sprintf("unrecognized directive %q on line %d", fields[0], i+1)
		}
	}
	return ""
}

// dryRun delegates a final structural parse to the nginx binary by
// wrapping the fragment in a minimal configuration and running
// `nginx -t`. The fragments teams submit are include files for a server
// block, so the wrapper supplies that context. An absent binary is not an
// error: deployments without nginx on the portal host rely on the
// heuristics alone.
func (v *SyntaxValidator) dryRun(content string) string {
	binary := v.nginxBinary
	if binary == "" {
		binary = "nginx"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return ""
	}

	tmpDir, err := os.MkdirTemp("", "routedesk-syntax-*")
	if err != nil {
		// Skipping is safe (the heuristics already passed) but must be
		// visible: a silent skip looks identical to a clean dry run.
		v.logger.Warn("nginx dry run skipped", "error", err)
		return ""
	}
	defer os.RemoveAll(tmpDir)

	wrapped := fmt.Sprintf(`events {}
http {
    server {
        listen 80;
        server_name localhost;
%s
    }
}
`, indent(extractLocations(content), "        "))

	confPath := filepath.Join(tmpDir, "routedesk-test.conf")
	if err := os.WriteFile(confPath, []byte(wrapped), 0600); err != nil {
		v.logger.Warn("nginx dry run skipped", "error", err)
		return ""
	}

	out, err := exec.Command(path, "-t", "-c", confPath).CombinedOutput()
	if err != nil {
		return fmt.Sprintf("nginx validation failed: %s", strings.TrimSpace(string(out)))
	}
	return ""
}

// extractLocations drops upstream blocks, leaving the location blocks and
// loose directives for the server-block wrapper. Upstream blocks belong
// to http context, which the wrapper does not model per fragment.
func extractLocations(content string) string {
	var sb strings.Builder
	depth := 0
	inUpstream := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if depth == 0 && strings.HasPrefix(trimmed, "upstream ") {
			inUpstream = true
		}
		if strings.HasSuffix(trimmed, "{") {
			depth++
		}
		if !inUpstream {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		if trimmed == "}" || strings.HasSuffix(trimmed, "}") {
			depth--
			if depth <= 0 && inUpstream {
				inUpstream = false
				depth = 0
			}
		}
	}
	return sb.String()
}

func indent(content, prefix string) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
