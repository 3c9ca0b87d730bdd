// Package spatialmath provides poses, orientations, and the Jacobian type used throughout the
// kinematics and whole-body-control packages. Orientation representations and their conversions
// are adapted from go.viam.com/rdk/spatialmath.
package spatialmath

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// defaultAngleEpsilon is how close OZ must be to +/-1 before an orientation vector is treated as
// gimbal-locked (pole) math rather than the general case.
const defaultAngleEpsilon = 0.0001

// Orientation is implemented by every orientation representation so that any of them can be
// converted to any other.
type Orientation interface {
	Quaternion() quat.Number
	OrientationVectorRadians() *OrientationVector
	AxisAngles() *R4AA
	RotationMatrix() *RotationMatrix
}

// OrientationVector represents an orientation as a point on the unit sphere (the axis the frame's
// Z axis is pointing along) plus a rotation Theta about that axis. Unlike an angle-axis
// representation, incrementing Theta performs an in-line rotation of the end effector; Theta is
// measured between the plane through the origin, (0,0,1), and the OV point, and the plane through
// the origin, the OV point, and the new local Z axis.
type OrientationVector struct {
	Theta float64 `json:"th"`
	OX    float64 `json:"x"`
	OY    float64 `json:"y"`
	OZ    float64 `json:"z"`
}

// NewOrientationVector creates an orientation vector pointing along +Z with no rotation.
func NewOrientationVector() *OrientationVector {
	return &OrientationVector{OZ: 1}
}

func (ov *OrientationVector) computeNormal() float64 {
	return math.Sqrt(ov.OX*ov.OX + ov.OY*ov.OY + ov.OZ*ov.OZ)
}

// IsValid returns an error if the vector component is degenerate.
func (ov *OrientationVector) IsValid() error {
	if ov.computeNormal() == 0.0 {
		return errors.New("OrientationVector has a normal of 0, probably X, Y, and Z are all 0")
	}
	return nil
}

// Normalize scales the vector component onto the unit sphere.
func (ov *OrientationVector) Normalize() {
	norm := ov.computeNormal()
	if norm == 0.0 {
		ov.OZ = 1
		return
	}
	ov.OX /= norm
	ov.OY /= norm
	ov.OZ /= norm
}

// Vector returns the vector (axis) component of the orientation vector.
func (ov *OrientationVector) Vector() r3.Vector {
	return r3.Vector{X: ov.OX, Y: ov.OY, Z: ov.OZ}
}

// Quaternion converts the orientation vector to a quaternion.
func (ov *OrientationVector) Quaternion() quat.Number {
	ov.Normalize()

	// acos(oz) ranges from 0 (north pole) to pi (south pole)
	lat := math.Acos(ov.OZ)

	lon := 0.0
	theta := ov.Theta
	if 1-math.Abs(ov.OZ) > defaultAngleEpsilon {
		lon = math.Atan2(ov.OY, ov.OX)
	}

	q1 := mgl64.AnglesToQuat(lon, lat, theta, mgl64.ZYZ)
	return quat.Number{Real: q1.W, Imag: q1.X(), Jmag: q1.Y(), Kmag: q1.Z()}
}

// OrientationVectorRadians returns the receiver.
func (ov *OrientationVector) OrientationVectorRadians() *OrientationVector { return ov }

// AxisAngles converts to angle-axis representation.
func (ov *OrientationVector) AxisAngles() *R4AA { return QuatToR4AA(ov.Quaternion()) }

// RotationMatrix converts to a rotation matrix.
func (ov *OrientationVector) RotationMatrix() *RotationMatrix { return QuatToRotationMatrix(ov.Quaternion()) }

// R4AA is an angle-axis representation: RX/RY/RZ form a unit axis, Theta is the rotation in
// radians about that axis.
type R4AA struct {
	Theta float64
	RX    float64
	RY    float64
	RZ    float64
}

// NewR4AA returns a zero-rotation angle-axis pointed along +Z.
func NewR4AA() *R4AA {
	return &R4AA{RZ: 1}
}

// Quaternion converts the angle-axis to a quaternion.
func (r4 *R4AA) Quaternion() quat.Number {
	s := math.Sin(r4.Theta / 2)
	return quat.Number{
		Real: math.Cos(r4.Theta / 2),
		Imag: r4.RX * s,
		Jmag: r4.RY * s,
		Kmag: r4.RZ * s,
	}
}

// OrientationVectorRadians converts to an orientation vector.
func (r4 *R4AA) OrientationVectorRadians() *OrientationVector { return QuatToOV(r4.Quaternion()) }

// AxisAngles returns the receiver.
func (r4 *R4AA) AxisAngles() *R4AA { return r4 }

// RotationMatrix converts to a rotation matrix.
func (r4 *R4AA) RotationMatrix() *RotationMatrix { return QuatToRotationMatrix(r4.Quaternion()) }

// QuatToR4AA converts a quaternion to angle-axis representation.
func QuatToR4AA(q quat.Number) *R4AA {
	norm := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if norm < 1e-12 {
		return NewR4AA()
	}
	theta := 2 * math.Atan2(norm, q.Real)
	return &R4AA{Theta: theta, RX: q.Imag / norm, RY: q.Jmag / norm, RZ: q.Kmag / norm}
}

// QuatToOV converts a quaternion to an orientation vector. The OV axis is the image of +Z under
// the rotation; Theta is recovered by comparing the rotated local X axis against the local X axis
// of the "bare" (Theta=0) orientation vector pointing along the same axis.
func QuatToOV(q quat.Number) *OrientationVector {
	rm := QuatToRotationMatrix(q)
	ov := &OrientationVector{OX: rm.At(0, 2), OY: rm.At(1, 2), OZ: rm.At(2, 2)}
	ov.Normalize()

	bare := (&OrientationVector{OX: ov.OX, OY: ov.OY, OZ: ov.OZ}).Quaternion()
	bareRM := QuatToRotationMatrix(bare)

	a := r3.Vector{X: bareRM.At(0, 0), Y: bareRM.At(1, 0), Z: bareRM.At(2, 0)}
	b := r3.Vector{X: rm.At(0, 0), Y: rm.At(1, 0), Z: rm.At(2, 0)}
	ov.Theta = math.Atan2(a.Cross(b).Dot(ov.Vector()), a.Dot(b))
	return ov
}

// RotationMatrix is a dense 3x3 rotation matrix, row-major.
type RotationMatrix struct {
	data [9]float64
}

// NewRotationMatrix builds a rotation matrix from 9 row-major entries.
func NewRotationMatrix(data [9]float64) *RotationMatrix {
	return &RotationMatrix{data: data}
}

// At returns the element at (row, col), 0-indexed.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.data[row*3+col]
}

// QuatToRotationMatrix converts a quaternion to a rotation matrix.
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	n := math.Sqrt(w*w + x*x + y*y + z*z)
	if n > 0 {
		w, x, y, z = w/n, x/n, y/n, z/n
	}
	return &RotationMatrix{data: [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	}}
}

// Quaternion converts the rotation matrix to a quaternion.
func (rm *RotationMatrix) Quaternion() quat.Number {
	m00, m01, m02 := rm.At(0, 0), rm.At(0, 1), rm.At(0, 2)
	m10, m11, m12 := rm.At(1, 0), rm.At(1, 1), rm.At(1, 2)
	m20, m21, m22 := rm.At(2, 0), rm.At(2, 1), rm.At(2, 2)

	tr := m00 + m11 + m22
	var w, x, y, z float64
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1.0)
		w = 0.25 / s
		x = (m21 - m12) * s
		y = (m02 - m20) * s
		z = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2.0 * math.Sqrt(1.0+m00-m11-m22)
		w = (m21 - m12) / s
		x = 0.25 * s
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2.0 * math.Sqrt(1.0+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = 0.25 * s
		z = (m12 + m21) / s
	default:
		s := 2.0 * math.Sqrt(1.0+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = 0.25 * s
	}
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// OrientationVectorRadians converts to an orientation vector.
func (rm *RotationMatrix) OrientationVectorRadians() *OrientationVector {
	return QuatToOV(rm.Quaternion())
}

// AxisAngles converts to angle-axis representation.
func (rm *RotationMatrix) AxisAngles() *R4AA { return QuatToR4AA(rm.Quaternion()) }

// RotationMatrix returns the receiver.
func (rm *RotationMatrix) RotationMatrix() *RotationMatrix { return rm }
