package scene

import "github.com/pkg/errors"

// NewConfigError reports an invalid ConstraintConfig or Scene configuration.
func NewConfigError(reason string) error {
	return errors.New("scene: config error: " + reason)
}

// NewUnknownConstraintError reports a setReference/setJointWeights call naming a constraint that
// was never configured.
func NewUnknownConstraintError(name string) error {
	return errors.New("scene: unknown constraint: " + name)
}

// NewUnknownJointError reports a SetRegularizationWeights call, or a joint task row, naming a joint
// the model doesn't have.
func NewUnknownJointError(name string) error {
	return errors.New("scene: unknown joint: " + name)
}

// ErrNotConfigured is returned by Update/Solve before Configure has succeeded.
var ErrNotConfigured = errors.New("scene: Configure has not been called")

// ErrReferenceTypeMismatch is returned when a joint reference is set on a cartesian constraint or
// vice versa.
var ErrReferenceTypeMismatch = errors.New("scene: reference type does not match constraint type")
