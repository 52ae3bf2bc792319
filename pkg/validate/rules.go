package validate

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Rules is the data behind the validators: which directives are
// recognized at all, which are forbidden, and which path prefixes a team
// may claim. Rules ship with compiled defaults and can be overridden from
// a YAML file so operators can tighten policy without a rebuild.
type Rules struct {
	// ForbiddenDirectives are rejected by exact match. These are
	// directives that bypass the proxy layer (filesystem serving,
	// rewrites) or alter resolver/include behavior.
	ForbiddenDirectives []string `yaml:"forbidden_directives"`

	// ForbiddenPrefixes reject whole directive families, such as the
	// embedded-scripting modules.
	ForbiddenPrefixes []string `yaml:"forbidden_prefixes"`

	// AllowedDirectives is the syntax-level allow-list of recognized
	// directive names. Forbidden directives are deliberately included:
	// recognition is not permission, and keeping them recognized lets
	// the policy validator name them instead of the syntax check
	// rejecting them as typos.
	AllowedDirectives []string `yaml:"allowed_directives"`

	// ScopePrefixTemplates are the team-namespaced path prefixes, with
	// "{team}" substituted per request.
	ScopePrefixTemplates []string `yaml:"scope_prefix_templates"`
}

// DefaultRules returns the compiled-in rule set.
func DefaultRules() *Rules {
	return &Rules{
		ForbiddenDirectives: []string{
			"root",
			"alias",
			"rewrite",
			"include",
			"resolver",
		},
		ForbiddenPrefixes: []string{
			"lua_",
			"content_by_lua",
			"access_by_lua",
			"more_",
		},
		AllowedDirectives: []string{
			// Upstream body
			"server",
			"keepalive",
			"least_conn",
			"ip_hash",
			"hash",
			"zone",
			// Location body, proxying
			"proxy_pass",
			"proxy_set_header",
			"proxy_http_version",
			"proxy_redirect",
			"proxy_read_timeout",
			"proxy_connect_timeout",
			"proxy_send_timeout",
			"proxy_buffering",
			"proxy_buffer_size",
			"proxy_buffers",
			"proxy_next_upstream",
			"proxy_cache",
			"proxy_cache_valid",
			"proxy_cache_bypass",
			"proxy_intercept_errors",
			// Location body, general
			"add_header",
			"expires",
			"client_max_body_size",
			"client_body_buffer_size",
			"gzip",
			"gzip_types",
			"limit_req",
			"limit_except",
			"return",
			"try_files",
			// Recognized so the policy validator can name them.
			"root",
			"alias",
			"rewrite",
			"include",
			"resolver",
		},
		ScopePrefixTemplates: []string{
			"/api/{team}",
			"/static/{team}",
		},
	}
}

// LoadRules reads a rules file and merges it over the defaults: a list
// left empty in the file keeps its default.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}

	var fileRules Rules
	if err := yaml.Unmarshal(data, &fileRules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}

	rules := DefaultRules()
	if len(fileRules.ForbiddenDirectives) > 0 {
		rules.ForbiddenDirectives = fileRules.ForbiddenDirectives
	}
	if len(fileRules.ForbiddenPrefixes) > 0 {
		rules.ForbiddenPrefixes = fileRules.ForbiddenPrefixes
	}
	if len(fileRules.AllowedDirectives) > 0 {
		rules.AllowedDirectives = fileRules.AllowedDirectives
	}
	if len(fileRules.ScopePrefixTemplates) > 0 {
		rules.ScopePrefixTemplates = fileRules.ScopePrefixTemplates
	}

	return rules, nil
}

// Source holds the active rule set and supports atomic replacement on
// reload. Validators read through it so a hot-reload takes effect on the
// next validation without restarting.
type Source struct {
	mu     sync.RWMutex
	rules  *Rules
	path   string
	logger *slog.Logger
}

// NewSource creates a rule source. If path is empty the compiled-in
// defaults are used; otherwise the file is loaded immediately.
func NewSource(path string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Source{
		rules:  DefaultRules(),
		path:   path,
		logger: logger.With("component", "validate.rules"),
	}

	if path != "" {
		rules, err := LoadRules(path)
		if err != nil {
			return nil, err
		}
		s.rules = rules
	}

	return s, nil
}

// Rules returns the active rule set. The returned value must be treated
// as read-only.
func (s *Source) Rules() *Rules {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules
}

// Reload re-reads the rules file and atomically replaces the active rule
// set. The previous rules stay active if the reload fails.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}

	rules, err := LoadRules(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()

	s.logger.Info("validation rules reloaded",
		"path", s.path,
		"forbidden_directives", len(rules.ForbiddenDirectives),
		"allowed_directives", len(rules.AllowedDirectives),
	)
	return nil
}
