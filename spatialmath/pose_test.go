package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestComposeIdentity(t *testing.T) {
	p := NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, NewOrientationVector())
	identity := NewZeroPose()

	composed := Compose(p, identity)
	test.That(t, composed.Point().X, test.ShouldAlmostEqual, p.Point().X)
	test.That(t, composed.Point().Y, test.ShouldAlmostEqual, p.Point().Y)
	test.That(t, composed.Point().Z, test.ShouldAlmostEqual, p.Point().Z)
}

func TestInvertRoundTrip(t *testing.T) {
	ov := &OrientationVector{OX: 0, OY: 0, OZ: 1, Theta: 0.4}
	p := NewPose(r3.Vector{X: 0.1, Y: -0.2, Z: 0.5}, ov)

	back := Compose(p, Invert(p))
	test.That(t, back.Point().X, test.ShouldAlmostEqual, 0)
	test.That(t, back.Point().Y, test.ShouldAlmostEqual, 0)
	test.That(t, back.Point().Z, test.ShouldAlmostEqual, 0)
}

func TestPoseBetweenSelf(t *testing.T) {
	p := NewPose(r3.Vector{X: 3, Y: 1, Z: -2}, NewOrientationVector())
	between := PoseBetween(p, p)
	test.That(t, between.Point().X, test.ShouldAlmostEqual, 0)
	test.That(t, between.Point().Y, test.ShouldAlmostEqual, 0)
	test.That(t, between.Point().Z, test.ShouldAlmostEqual, 0)
}
