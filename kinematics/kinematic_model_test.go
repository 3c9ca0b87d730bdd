package kinematics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/spatialmath"
)

func twoLinkPlanarModel(t *testing.T) *KinematicModel {
	t.Helper()
	m := referenceframe.NewSimpleModel("base_link")
	m.AddTransform(referenceframe.NewRevoluteFrame("shoulder", r3.Vector{Z: 1}, referenceframe.Limit{Min: -math.Pi, Max: math.Pi}))
	m.AddTransform(referenceframe.NewStaticFrame("upper_link", offsetAlongX(1)))
	m.AddTransform(referenceframe.NewRevoluteFrame("elbow", r3.Vector{Z: 1}, referenceframe.Limit{Min: -math.Pi, Max: math.Pi}))
	m.AddTransform(referenceframe.NewStaticFrame("forearm_link", offsetAlongX(1)))

	km, err := newKinematicModelFrom(RobotModelConfig{URDFPath: "unused"}, m)
	test.That(t, err, test.ShouldBeNil)
	return km
}

func offsetAlongX(d float64) spatialmath.Pose {
	return spatialmath.NewPose(r3.Vector{X: d}, spatialmath.NewOrientationVector())
}

func TestKinematicModelJointNamesExcludeFixedFrames(t *testing.T) {
	km := twoLinkPlanarModel(t)
	test.That(t, km.JointNames(), test.ShouldResemble, []string{"shoulder", "elbow"})
	test.That(t, km.NoOfJoints(), test.ShouldEqual, 2)
}

func TestKinematicModelUpdateRejectsSizeMismatch(t *testing.T) {
	km := twoLinkPlanarModel(t)
	joints := referenceframe.NamedVector[referenceframe.JointState]{
		Names:  []string{"shoulder"},
		Values: []referenceframe.JointState{{Position: 0, Timestamp: referenceframe.NewTimestamp(1)}},
	}
	err := km.Update(joints, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestKinematicModelSpaceJacobianAtZero(t *testing.T) {
	km := twoLinkPlanarModel(t)
	ts := referenceframe.NewTimestamp(1)
	joints := referenceframe.NamedVector[referenceframe.JointState]{
		Names: []string{"shoulder", "elbow"},
		Values: []referenceframe.JointState{
			{Position: 0, Timestamp: ts},
			{Position: 0, Timestamp: ts},
		},
	}
	test.That(t, km.Update(joints, nil), test.ShouldBeNil)

	jac, err := km.SpaceJacobian("base_link", "forearm_link")
	test.That(t, err, test.ShouldBeNil)
	// Tip is at (2,0,0); both joints rotate about Z, so linear velocity contribution
	// of each is axis x (tip - pivot) = (0,0,1) x (2,0,0) = (0,2,0) for the shoulder and
	// (0,0,1) x (1,0,0) = (0,1,0) for the elbow (pivot at (1,0,0)).
	test.That(t, jac.At(1, 0), test.ShouldAlmostEqual, 2.0)
	test.That(t, jac.At(1, 1), test.ShouldAlmostEqual, 1.0)
	test.That(t, jac.At(5, 0), test.ShouldAlmostEqual, 1.0)
	test.That(t, jac.At(5, 1), test.ShouldAlmostEqual, 1.0)
}

func TestKinematicModelRigidBodyStateReportsTwist(t *testing.T) {
	km := twoLinkPlanarModel(t)
	ts := referenceframe.NewTimestamp(1)
	joints := referenceframe.NamedVector[referenceframe.JointState]{
		Names: []string{"shoulder", "elbow"},
		Values: []referenceframe.JointState{
			{Position: 0, Speed: 1, Timestamp: ts},
			{Position: 0, Speed: 0, Timestamp: ts},
		},
	}
	test.That(t, km.Update(joints, nil), test.ShouldBeNil)

	state, err := km.RigidBodyState("base_link", "forearm_link")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.TwistLinear.Y, test.ShouldAlmostEqual, 2.0)
	test.That(t, state.TwistAngular.Z, test.ShouldAlmostEqual, 1.0)
}

func TestKinematicModelRejectsNonBaseRoot(t *testing.T) {
	km := twoLinkPlanarModel(t)
	ts := referenceframe.NewTimestamp(1)
	joints := referenceframe.NamedVector[referenceframe.JointState]{
		Names:  []string{"shoulder", "elbow"},
		Values: []referenceframe.JointState{{Timestamp: ts}, {Timestamp: ts}},
	}
	test.That(t, km.Update(joints, nil), test.ShouldBeNil)
	_, err := km.SpaceJacobian("not_the_base", "forearm_link")
	test.That(t, err, test.ShouldNotBeNil)
}
