// Package validate implements the three-stage validation pipeline for
// submitted configuration fragments: a syntax pass over the raw text, a
// policy pass rejecting forbidden directives, and a scope pass enforcing
// per-team path isolation.
//
// The three validators are independent values composed by Pipeline; each
// can be constructed and tested on its own. They all read their rule data
// through a shared Source, which carries compiled-in defaults, optional
// YAML file overrides, and fsnotify-based hot reload.
//
// Error semantics: a syntax failure short-circuits with a single message;
// policy and scope findings are aggregated into one ValidationError so a
// submitter can fix every violation in one round trip.
package validate
