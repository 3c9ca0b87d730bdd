package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

// TestChangeRefPointSeed checks the cross-product block formula against the seed scenario: a
// purely angular identity column (0,0,1) transported by offset p=(0.1,0.2,0.3) should pick up
// exactly skew(p)'s third column in the linear rows.
func TestChangeRefPointSeed(t *testing.T) {
	j := NewZeroJacobian(1)
	j.Set(3, 0, 0)
	j.Set(4, 0, 0)
	j.Set(5, 0, 1) // angular-only column: unit rotation about Z

	j.ChangeRefPoint(r3.Vector{X: 0.1, Y: 0.2, Z: 0.3})

	// skew(p) * (0,0,1) = (p.Y, -p.X, 0) = (0.2, -0.1, 0)
	test.That(t, j.At(0, 0), test.ShouldAlmostEqual, 0.2)
	test.That(t, j.At(1, 0), test.ShouldAlmostEqual, -0.1)
	test.That(t, j.At(2, 0), test.ShouldAlmostEqual, 0.0)
}

func TestChangeRefPointLinearOnlyUnaffected(t *testing.T) {
	j := NewZeroJacobian(1)
	j.Set(0, 0, 1)
	j.Set(1, 0, 2)
	j.Set(2, 0, 3)

	j.ChangeRefPoint(r3.Vector{X: 5, Y: -5, Z: 2})

	test.That(t, j.At(0, 0), test.ShouldAlmostEqual, 1.0)
	test.That(t, j.At(1, 0), test.ShouldAlmostEqual, 2.0)
	test.That(t, j.At(2, 0), test.ShouldAlmostEqual, 3.0)
}

func TestTransformTwistZeroAngularIsIdentity(t *testing.T) {
	p := NewPose(r3.Vector{X: 1, Y: 1, Z: 1}, NewOrientationVector())
	linear := r3.Vector{X: 2, Y: 3, Z: 4}
	newLinear, newAngular := TransformTwist(p, linear, r3.Vector{})
	test.That(t, newLinear.X, test.ShouldAlmostEqual, linear.X)
	test.That(t, newLinear.Y, test.ShouldAlmostEqual, linear.Y)
	test.That(t, newLinear.Z, test.ShouldAlmostEqual, linear.Z)
	test.That(t, newAngular.X, test.ShouldAlmostEqual, 0.0)
}
