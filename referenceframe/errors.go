package referenceframe

import "github.com/pkg/errors"

// NewConfigError wraps a kinematic-description parsing or validation failure with the offending
// file path.
func NewConfigError(path string, cause error) error {
	return errors.Wrapf(cause, "invalid kinematic configuration %q", path)
}

// NewDuplicateJointNameError reports a kinematic description that names the same joint twice.
func NewDuplicateJointNameError(name string) error {
	return errors.Errorf("joint name %q is duplicated in this model", name)
}

// NewUnknownJointError reports a reference (in a ConstraintConfig, a status query, and so on) to a
// joint name the model does not have.
func NewUnknownJointError(name string) error {
	return errors.Errorf("joint %q is not part of this model", name)
}

// NewMissingFrameError reports a (root, tip) chain request naming a frame the model does not have.
func NewMissingFrameError(frameID string) error {
	return errors.Errorf("frame %q is not part of this model", frameID)
}

// NewInputLengthMismatchError reports an Input slice whose length does not match a model's DoF.
func NewInputLengthMismatchError(want, got int) error {
	return errors.Errorf("expected %d input values, got %d", want, got)
}
