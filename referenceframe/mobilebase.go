package referenceframe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/wbc/spatialmath"
)

// NewMobileBaseFrame builds the kinematic model for a mobile base moving on the ground plane,
// adapted from go.viam.com/rdk/referenceframe's New2DMobileModelFrame. limits must have length 2
// (x, y) or 3 (x, y, theta about the vertical axis).
func NewMobileBaseFrame(name string, limits []Limit) (Model, error) {
	if len(limits) != 2 && len(limits) != 3 {
		return nil, errors.Errorf(
			"mobile base frame needs 2 limits (x, y) or 3 (x, y, theta), got %d", len(limits))
	}

	model := NewSimpleModel(name)
	model.AddTransform(NewPrismaticFrame("x", r3.Vector{X: 1}, limits[0]))
	model.AddTransform(NewPrismaticFrame("y", r3.Vector{Y: 1}, limits[1]))
	if len(limits) == 3 {
		model.AddTransform(NewRevoluteFrame("theta", r3.Vector{Z: 1}, limits[2]))
	}
	return model, nil
}

// ComputeOOBPosition transforms frame by inputs statelessly, even if inputs violate the frame's
// limits. Useful for diagnostics that want to report where a constraint's reference would place a
// joint without mutating any model state.
func ComputeOOBPosition(frame Frame, inputs []Input) (spatialmath.Pose, error) {
	if inputs == nil {
		return nil, errors.New("cannot compute position for nil inputs")
	}
	if frame == nil {
		return nil, errors.New("cannot compute position for a nil frame")
	}
	return frame.Transform(inputs)
}
