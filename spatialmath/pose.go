package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid transform: a translation plus an orientation. It is the common currency between
// frames, Jacobians, and constraint references throughout this module.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type pose struct {
	point       r3.Vector
	orientation Orientation
}

// NewPose builds a Pose from a translation and an orientation.
func NewPose(point r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewOrientationVector()
	}
	return &pose{point: point, orientation: o}
}

// NewZeroPose returns the identity pose: zero translation, zero rotation.
func NewZeroPose() Pose {
	return &pose{point: r3.Vector{}, orientation: NewOrientationVector()}
}

func (p *pose) Point() r3.Vector        { return p.point }
func (p *pose) Orientation() Orientation { return p.orientation }

// Compose returns the pose that results from applying b in a's frame, i.e. a*b.
func Compose(a, b Pose) Pose {
	aq := a.Orientation().Quaternion()
	bq := b.Orientation().Quaternion()

	rotatedB := rotateVector(aq, b.Point())
	newPoint := a.Point().Add(rotatedB)
	newQuat := quat.Mul(aq, bq)

	return &pose{point: newPoint, orientation: QuatToOV(newQuat)}
}

// Invert returns the pose p such that Compose(a, Invert(a)) is the identity pose.
func Invert(a Pose) Pose {
	aq := a.Orientation().Quaternion()
	invQuat := quat.Conj(aq)
	// Conj of a unit quaternion is its inverse; normalize defensively.
	n := quat.Abs(aq)
	if n > 0 {
		invQuat = quat.Scale(1/(n*n), invQuat)
	}
	invPoint := rotateVector(invQuat, a.Point()).Mul(-1)
	return &pose{point: invPoint, orientation: QuatToOV(invQuat)}
}

// PoseBetween returns the pose of b expressed in a's frame: Invert(a)*b.
func PoseBetween(a, b Pose) Pose {
	return Compose(Invert(a), b)
}

// rotateVector rotates v by the rotation represented by unit quaternion q: q*v*q^-1.
func rotateVector(q quat.Number, v r3.Vector) r3.Vector {
	vq := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	n := quat.Abs(q)
	inv := quat.Conj(q)
	if n > 0 {
		inv = quat.Scale(1/(n*n), inv)
	}
	rq := quat.Mul(quat.Mul(q, vq), inv)
	return r3.Vector{X: rq.Imag, Y: rq.Jmag, Z: rq.Kmag}
}

// RotateVector rotates v by the orientation o.
func RotateVector(o Orientation, v r3.Vector) r3.Vector {
	return rotateVector(o.Quaternion(), v)
}
