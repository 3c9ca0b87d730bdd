package solver

import "github.com/pkg/errors"

// NewNumericFailureError reports a solve that could not produce a bounded solution: infeasible
// bounds, or rank collapse beyond the configured damping.
func NewNumericFailureError(reason string) error {
	return errors.New("solver: numeric failure: " + reason)
}

// ErrNotConfigured is returned by Solve before a successful Configure call.
var ErrNotConfigured = errors.New("solver: Configure has not been called")
