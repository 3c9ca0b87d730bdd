package kinematics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/spatialmath"
)

func TestFloatingBaseFramesHaveSixJoints(t *testing.T) {
	frames := floatingBaseFrames()
	test.That(t, len(frames), test.ShouldEqual, 6)
	for i, name := range floatingBaseJointNames {
		test.That(t, frames[i].Name(), test.ShouldEqual, name)
	}
}

func TestFloatingBaseInputsRecoversTranslation(t *testing.T) {
	base := referenceframe.NewRigidBodyStateSE3("base", "world")
	base.Pose = spatialmath.NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, spatialmath.NewOrientationVector())

	inputs := floatingBaseInputs(base)
	test.That(t, inputs[0], test.ShouldAlmostEqual, 1.0)
	test.That(t, inputs[1], test.ShouldAlmostEqual, 2.0)
	test.That(t, inputs[2], test.ShouldAlmostEqual, 3.0)
	test.That(t, inputs[3], test.ShouldAlmostEqual, 0.0)
	test.That(t, inputs[4], test.ShouldAlmostEqual, 0.0)
	test.That(t, inputs[5], test.ShouldAlmostEqual, 0.0)
}

func TestFloatingBaseInputsRecoversRzRotation(t *testing.T) {
	r4 := &spatialmath.R4AA{Theta: math.Pi / 4, RZ: 1}
	base := referenceframe.NewRigidBodyStateSE3("base", "world")
	base.Pose = spatialmath.NewPose(r3.Vector{}, r4)

	inputs := floatingBaseInputs(base)
	test.That(t, inputs[5], test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, inputs[3], test.ShouldAlmostEqual, 0.0)
	test.That(t, inputs[4], test.ShouldAlmostEqual, 0.0)
}
