package validate

import (
	"fmt"
	"strings"

	"routedesk-hq/routedesk/pkg/nginx"
)

// ScopeValidator enforces path isolation: a team's routes may only claim
// paths under its own namespace prefixes. This is the multi-tenancy
// guarantee that keeps one team's submission from claiming or shadowing
// another team's traffic.
type ScopeValidator struct {
	rules *Source
}

// NewScopeValidator creates a scope validator reading the prefix
// templates through the given rule source.
func NewScopeValidator(rules *Source) *ScopeValidator {
	return &ScopeValidator{rules: rules}
}

// Validate reports a violation for every location whose path is neither
// equal to nor a /-delimited descendant of one of the team's prefixes.
func (v *ScopeValidator) Validate(team string, locations []nginx.LocationBlock) []string {
	prefixes := v.prefixesFor(team)

	var violations []string
	for _, block := range locations {
		if !pathInScope(block.Path, prefixes) {
			violations = append(violations, fmt.Sprintf(
				"location %q violates isolation: path must start with %s",
				block.Path, strings.Join(prefixes, " or ")))
		}
	}
	return violations
}

// prefixesFor expands the scope prefix templates for a team.
func (v *ScopeValidator) prefixesFor(team string) []string {
	templates := v.rules.Rules().ScopePrefixTemplates
	prefixes := make([]string, len(templates))
	for i, tmpl := range templates {
		prefixes[i] = strings.ReplaceAll(tmpl, "{team}", team)
	}
	return prefixes
}

// pathInScope reports whether path equals a prefix or is a /-delimited
// descendant of one. Plain string prefixing is not enough: /api/teamster
// must not be in scope for team "team".
func pathInScope(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
