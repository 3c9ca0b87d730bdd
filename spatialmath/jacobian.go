package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Jacobian is a 6xn matrix relating joint-space velocity to a Cartesian twist: rows 0-2 are the
// linear part, rows 3-5 are the angular part. Columns correspond to the owning model's joints, in
// the order given by that model.
type Jacobian struct {
	m *mat.Dense
}

// NewJacobian wraps an existing 6xn dense matrix. Panics if m does not have 6 rows.
func NewJacobian(m *mat.Dense) *Jacobian {
	r, _ := m.Dims()
	if r != 6 {
		panic("spatialmath: Jacobian must have 6 rows")
	}
	return &Jacobian{m: m}
}

// NewZeroJacobian allocates a 6xn all-zero Jacobian.
func NewZeroJacobian(n int) *Jacobian {
	return &Jacobian{m: mat.NewDense(6, n, nil)}
}

// Cols returns the number of columns (rows is always 6).
func (j *Jacobian) Cols() int {
	_, c := j.m.Dims()
	return c
}

// At returns the element at (row, col).
func (j *Jacobian) At(row, col int) float64 { return j.m.At(row, col) }

// Set sets the element at (row, col).
func (j *Jacobian) Set(row, col int, v float64) { j.m.Set(row, col, v) }

// Dense returns the underlying dense matrix. Callers must not retain it across a ChangeRefPoint or
// ChangeRefFrame call, both of which mutate in place.
func (j *Jacobian) Dense() *mat.Dense { return j.m }

// Linear returns a view over the linear (rows 0-2) block.
func (j *Jacobian) Linear() mat.Matrix {
	return j.m.Slice(0, 3, 0, j.Cols())
}

// Angular returns a view over the angular (rows 3-5) block.
func (j *Jacobian) Angular() mat.Matrix {
	return j.m.Slice(3, 6, 0, j.Cols())
}

// skew returns the 3x3 skew-symmetric cross-product matrix of v, such that skew(v)*x == v.Cross(x).
func skew(v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}

// ChangeRefPoint updates the Jacobian in place so that it expresses the twist of a point offset by
// p (in the current reference frame) from the point it currently describes, without changing the
// frame it is expressed in. The angular rows are unchanged; the linear rows become
// linear + skew(p)*angular.
func (j *Jacobian) ChangeRefPoint(p r3.Vector) {
	n := j.Cols()
	sp := skew(p)

	var delta mat.Dense
	delta.Mul(sp, j.m.Slice(3, 6, 0, n))

	var newLinear mat.Dense
	newLinear.Add(j.m.Slice(0, 3, 0, n), &delta)
	j.m.Slice(0, 3, 0, n).(*mat.Dense).Copy(&newLinear)
}

// ChangeRefFrame updates the Jacobian in place so it is expressed in a new reference frame related
// to the current one by the rigid transform T: the reference point moves by T's translation, then
// both blocks are rotated by T's orientation.
func (j *Jacobian) ChangeRefFrame(t Pose) {
	j.ChangeRefPoint(t.Point())

	n := j.Cols()
	r := QuatToRotationMatrix(t.Orientation().Quaternion())
	rm := mat.NewDense(3, 3, []float64{
		r.At(0, 0), r.At(0, 1), r.At(0, 2),
		r.At(1, 0), r.At(1, 1), r.At(1, 2),
		r.At(2, 0), r.At(2, 1), r.At(2, 2),
	})

	var newLinear, newAngular mat.Dense
	newLinear.Mul(rm, j.m.Slice(0, 3, 0, n))
	newAngular.Mul(rm, j.m.Slice(3, 6, 0, n))

	j.m.Slice(0, 3, 0, n).(*mat.Dense).Copy(&newLinear)
	j.m.Slice(3, 6, 0, n).(*mat.Dense).Copy(&newAngular)
}

// TransformTwist converts a twist (linear, angular velocity) known at the origin of frame T,
// expressed in T's parent frame, into the twist of the point at T's origin as seen by an observer
// translated by -T.Point() (i.e. changes the reference point of a twist the same way
// Jacobian.ChangeRefPoint does for a full Jacobian). It changes the reference point only; the
// frame the twist is expressed in is unchanged.
func TransformTwist(t Pose, linear, angular r3.Vector) (newLinear, newAngular r3.Vector) {
	newAngular = angular
	newLinear = linear.Add(t.Point().Cross(angular))
	return newLinear, newAngular
}

// TransformSpatialAcceleration converts a spatial acceleration the same way TransformTwist converts
// a twist, additionally accounting for the centripetal term contributed by the angular velocity at
// the new reference point.
func TransformSpatialAcceleration(t Pose, angularVel, linearAcc, angularAcc r3.Vector) (newLinearAcc, newAngularAcc r3.Vector) {
	newAngularAcc = angularAcc
	newLinearAcc = linearAcc.Add(t.Point().Cross(angularAcc)).Add(angularVel.Cross(t.Point().Cross(angularVel)))
	return newLinearAcc, newAngularAcc
}
