package validate

import (
	"log/slog"

	"routedesk-hq/routedesk/pkg/nginx"
)

// Result is the successful outcome of a pipeline run: the parsed
// location blocks, returned for caller-side display.
type Result struct {
	Locations []nginx.LocationBlock `json:"locations"`
}

// Pipeline orchestrates the three validators: syntax over the raw
// combined text, then policy and scope over the parsed blocks. Syntax
// failures short-circuit with a single message; policy and scope findings
// are aggregated so the caller sees every violation at once.
type Pipeline struct {
	syntax *SyntaxValidator
	policy *PolicyValidator
	scope  *ScopeValidator
	logger *slog.Logger
}

// NewPipeline creates a validation pipeline over a shared rule source.
func NewPipeline(rules *Source, nginxBinary string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		syntax: NewSyntaxValidator(rules, nginxBinary, logger),
		policy: NewPolicyValidator(rules),
		scope:  NewScopeValidator(rules),
		logger: logger.With("component", "validate.pipeline"),
	}
}

// ValidateSplit validates the two fragments a team submits. The syntax
// validator operates on raw text, so the fragments are concatenated for
// that pass; the parsed location blocks feed policy and scope. The
// returned error, when non-nil, is always a *ValidationError.
func (p *Pipeline) ValidateSplit(team, upstreams, locations string) (*Result, error) {
	combined := upstreams + "\n" + locations
	return p.Validate(team, combined)
}

// Validate validates a combined configuration text for a team.
func (p *Pipeline) Validate(team, content string) (*Result, error) {
	if msg := p.syntax.Validate(content); msg != "" {
		p.logger.Debug("syntax validation failed", "team", team, "message", msg)
		return nil, &ValidationError{Messages: []string{msg}, Stage: "syntax"}
	}

	parsed := nginx.Parse(content)

	policyViolations := p.policy.Validate(parsed.Locations)
	scopeViolations := p.scope.Validate(team, parsed.Locations)
	if len(policyViolations) > 0 || len(scopeViolations) > 0 {
		stage := "policy"
		if len(policyViolations) == 0 {
			stage = "scope"
		}
		violations := append(policyViolations, scopeViolations...)
		p.logger.Debug("validation failed",
			"team", team,
			"stage", stage,
			"violations", len(violations),
		)
		return nil, &ValidationError{Messages: violations, Stage: stage}
	}

	return &Result{Locations: parsed.Locations}, nil
}
