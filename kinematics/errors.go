package kinematics

import "github.com/pkg/errors"

// NewConfigError wraps a RobotModelConfig validation failure.
func NewConfigError(reason string) error {
	return errors.New("robot model config: " + reason)
}

// ErrNotUpdated is returned by any query made before the first successful Update call.
var ErrNotUpdated = errors.New("robot model: update has not been called")

// NewInvalidRootFrameError reports a chain request whose root is not the model's base frame, for
// model variants that restrict queries to the base.
func NewInvalidRootFrameError(root, base string) error {
	return errors.Errorf("invalid root frame %q: this model variant requires root == %q", root, base)
}

// NewUnknownFrameError reports a (root,tip) request naming an unrecognized frame.
func NewUnknownFrameError(name string) error {
	return errors.Errorf("frame %q is not part of this model", name)
}

// ErrNotImplemented is returned by capabilities a given model variant does not support.
var ErrNotImplemented = errors.New("robot model: capability not implemented by this variant")
