package referenceframe

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/wbc/spatialmath"
)

func TestPrismaticFrameTranslatesAlongAxis(t *testing.T) {
	f := NewPrismaticFrame("slide", r3.Vector{X: 1}, Limit{Min: -1, Max: 1})
	pose, err := f.Transform([]Input{{Value: 0.5}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, 0.0)
	test.That(t, f.Kind(), test.ShouldEqual, Prismatic)
}

func TestRevoluteFrameWrongInputCount(t *testing.T) {
	f := NewRevoluteFrame("joint1", r3.Vector{Z: 1}, Limit{Min: -3.14, Max: 3.14})
	_, err := f.Transform([]Input{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStaticFrameIsFixed(t *testing.T) {
	f := NewStaticFrame("offset", spatialmath.NewZeroPose())
	test.That(t, f.Kind(), test.ShouldEqual, Fixed)
	test.That(t, f.DoF(), test.ShouldHaveLength, 0)
}
