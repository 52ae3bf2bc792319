package validate

import "strings"

// ValidationError carries the complete list of violations found by the
// pipeline. The list is never partial: policy and scope findings are
// aggregated so the caller can fix everything in one round trip.
type ValidationError struct {
	Messages []string

	// Stage names the first pipeline stage that found violations:
	// "syntax", "policy", or "scope".
	Stage string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// AsValidationError returns the *ValidationError wrapped in err, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	ve, ok := err.(*ValidationError)
	return ve, ok
}
