package validate

import (
	"fmt"
	"strings"

	"routedesk-hq/routedesk/pkg/nginx"
)

// PolicyValidator enforces the forbidden-directive blacklist over parsed
// location blocks. It never fails itself; it only returns findings.
type PolicyValidator struct {
	rules *Source
}

// NewPolicyValidator creates a policy validator reading the forbidden
// sets through the given rule source.
func NewPolicyValidator(rules *Source) *PolicyValidator {
	return &PolicyValidator{rules: rules}
}

// Validate reports one violation message per offending directive per
// block. An empty result means the blocks pass.
func (v *PolicyValidator) Validate(locations []nginx.LocationBlock) []string {
	rules := v.rules.Rules()

	forbidden := make(map[string]bool, len(rules.ForbiddenDirectives))
	for _, d := range rules.ForbiddenDirectives {
		forbidden[d] = true
	}

	var violations []string
	for _, block := range locations {
		for _, directive := range block.Directives {
			if forbidden[directive.Key] {
				violations = append(violations, fmt.Sprintf(
					"forbidden directive %q in location %q", directive.Key, block.Path))
				continue
			}
			for _, prefix := range rules.ForbiddenPrefixes {
				if strings.HasPrefix(directive.Key, prefix) {
					violations = append(violations, fmt.Sprintf(
						"forbidden directive %q in location %q", directive.Key, block.Path))
					break
				}
			}
		}
	}
	return violations
}
