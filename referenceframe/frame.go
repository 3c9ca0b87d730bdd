package referenceframe

import (
	"github.com/golang/geo/r3"

	"go.viam.com/wbc/spatialmath"
)

// JointKind classifies a Frame's single degree of freedom for Jacobian-column assembly.
type JointKind int

const (
	// Fixed marks a zero-DoF frame.
	Fixed JointKind = iota
	// Revolute marks a single rotational DoF about AxisInParent.
	Revolute
	// Prismatic marks a single translational DoF along AxisInParent.
	Prismatic
)

// Frame is a single rigid link in a kinematic chain: it consumes zero or more Input values (its
// DoF) and produces the pose of its own end relative to its parent's end.
type Frame interface {
	Name() string
	DoF() []Limit
	Transform(inputs []Input) (spatialmath.Pose, error)
	// AxisInParent returns the joint's motion axis, expressed in the parent frame, for revolute
	// and prismatic frames; the zero vector for Fixed frames.
	AxisInParent(inputs []Input) r3.Vector
	// Kind reports which of Fixed/Revolute/Prismatic this frame is.
	Kind() JointKind
}

type baseFrame struct {
	name   string
	limits []Limit
}

func (f *baseFrame) Name() string    { return f.name }
func (f *baseFrame) DoF() []Limit    { return f.limits }

// staticFrame is a fixed, zero-DoF rigid transform (a link offset, or the floating composition of
// an entire chain).
type staticFrame struct {
	*baseFrame
	transform spatialmath.Pose
}

// NewStaticFrame builds a zero-DoF frame with a fixed offset pose.
func NewStaticFrame(name string, transform spatialmath.Pose) Frame {
	return &staticFrame{baseFrame: &baseFrame{name: name}, transform: transform}
}

func (f *staticFrame) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(inputs) != 0 {
		return nil, NewInputLengthMismatchError(0, len(inputs))
	}
	return f.transform, nil
}

func (f *staticFrame) AxisInParent([]Input) r3.Vector { return r3.Vector{} }
func (f *staticFrame) Kind() JointKind                { return Fixed }

// revoluteFrame rotates about a fixed axis (expressed in the parent frame) by the single input
// value, in radians.
type revoluteFrame struct {
	*baseFrame
	axis r3.Vector
}

// NewRevoluteFrame builds a single-DoF rotational joint about axis (automatically normalized),
// constrained to limit.
func NewRevoluteFrame(name string, axis r3.Vector, limit Limit) Frame {
	return &revoluteFrame{
		baseFrame: &baseFrame{name: name, limits: []Limit{limit}},
		axis:      axis.Normalize(),
	}
}

func (f *revoluteFrame) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(inputs) != 1 {
		return nil, NewInputLengthMismatchError(1, len(inputs))
	}
	r4 := &spatialmath.R4AA{Theta: inputs[0].Value, RX: f.axis.X, RY: f.axis.Y, RZ: f.axis.Z}
	return spatialmath.NewPose(r3.Vector{}, r4), nil
}

func (f *revoluteFrame) AxisInParent([]Input) r3.Vector { return f.axis }
func (f *revoluteFrame) Kind() JointKind                { return Revolute }

// prismaticFrame translates along a fixed axis (expressed in the parent frame) by the single input
// value, in meters.
type prismaticFrame struct {
	*baseFrame
	axis r3.Vector
}

// NewPrismaticFrame builds a single-DoF translational joint along axis (automatically normalized),
// constrained to limit.
func NewPrismaticFrame(name string, axis r3.Vector, limit Limit) Frame {
	return &prismaticFrame{
		baseFrame: &baseFrame{name: name, limits: []Limit{limit}},
		axis:      axis.Normalize(),
	}
}

func (f *prismaticFrame) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(inputs) != 1 {
		return nil, NewInputLengthMismatchError(1, len(inputs))
	}
	point := f.axis.Mul(inputs[0].Value)
	return spatialmath.NewPose(point, spatialmath.NewOrientationVector()), nil
}

func (f *prismaticFrame) AxisInParent([]Input) r3.Vector { return f.axis }
func (f *prismaticFrame) Kind() JointKind                { return Prismatic }
