package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/wbc/spatialmath"
)

func offsetAlongX(d float64) spatialmath.Pose {
	return spatialmath.NewPose(r3.Vector{X: d}, spatialmath.NewOrientationVector())
}

func twoLinkModel(t *testing.T) Model {
	t.Helper()
	m := NewSimpleModel("arm")
	m.AddTransform(NewRevoluteFrame("shoulder", r3.Vector{Z: 1}, Limit{Min: -math.Pi, Max: math.Pi}))
	m.AddTransform(NewStaticFrame("upper_link", offsetAlongX(1)))
	m.AddTransform(NewRevoluteFrame("elbow", r3.Vector{Z: 1}, Limit{Min: -math.Pi, Max: math.Pi}))
	m.AddTransform(NewStaticFrame("forearm_link", offsetAlongX(1)))
	return m
}

func TestSimpleModelDoFCountsOnlyActuatedFrames(t *testing.T) {
	m := twoLinkModel(t)
	test.That(t, len(m.DoF()), test.ShouldEqual, 2)
}

func TestSimpleModelTransformStraightArm(t *testing.T) {
	m := twoLinkModel(t)
	pose, err := m.Transform([]Input{{Value: 0}, {Value: 0}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 2.0)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, 0.0)
}

func TestSimpleModelTransformBentElbow(t *testing.T) {
	m := twoLinkModel(t)
	pose, err := m.Transform([]Input{{Value: 0}, {Value: math.Pi / 2}})
	test.That(t, err, test.ShouldBeNil)
	// Upper link stays along +X (1,0); forearm rotates 90deg about Z from there: (1, 1).
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 1.0)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, 1.0)
}

func TestSimpleModelWrongInputLength(t *testing.T) {
	m := twoLinkModel(t)
	_, err := m.Transform([]Input{{Value: 0}})
	test.That(t, err, test.ShouldNotBeNil)
}
