package kinematics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/spatialmath"
)

// pendulumModel builds a 2-joint chain: j1 swings a 1-unit rod about Y, j2 is a second revolute
// joint at the rod's end carrying the lumped mass - the only way this repo's point-mass
// approximation can place mass away from the world origin.
func pendulumModel(t *testing.T) *DynamicModel {
	t.Helper()
	m := referenceframe.NewSimpleModel("world")
	m.AddTransform(referenceframe.NewRevoluteFrame("j1", r3.Vector{Y: 1}, referenceframe.Limit{Min: -math.Pi, Max: math.Pi}))
	m.AddTransform(referenceframe.NewStaticFrame("rod", spatialmath.NewPose(r3.Vector{Z: -1}, spatialmath.NewOrientationVector())))
	m.AddTransform(referenceframe.NewRevoluteFrame("j2", r3.Vector{Y: 1}, referenceframe.Limit{Min: -math.Pi, Max: math.Pi}))

	dm, err := NewDynamicModelFromModel(RobotModelConfig{URDFPath: "unused"}, m, map[string]float64{"j2": 1})
	test.That(t, err, test.ShouldBeNil)
	return dm
}

func updatePendulum(t *testing.T, dm *DynamicModel, theta1 float64) {
	t.Helper()
	ts := referenceframe.NewTimestamp(1)
	joints := referenceframe.NamedVector[referenceframe.JointState]{
		Names: []string{"j1", "j2"},
		Values: []referenceframe.JointState{
			{Position: theta1, Timestamp: ts},
			{Position: 0, Timestamp: ts},
		},
	}
	test.That(t, dm.Update(joints, nil), test.ShouldBeNil)
}

func TestDynamicModelInertiaIndependentOfAngle(t *testing.T) {
	dm := pendulumModel(t)
	updatePendulum(t, dm, math.Pi/2)

	h, err := dm.JointSpaceInertiaMatrix()
	test.That(t, err, test.ShouldBeNil)
	// Moment of a unit point mass at the end of a unit rod about the rotation axis: m*L^2 = 1,
	// invariant under the rod's own angle since rotation doesn't change the moment arm's length.
	test.That(t, h.At(0, 0), test.ShouldAlmostEqual, 1.0)

	updatePendulum(t, dm, 0)
	h, err = dm.JointSpaceInertiaMatrix()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.At(0, 0), test.ShouldAlmostEqual, 1.0)
}

func TestDynamicModelBiasForcesGravityAtHorizontal(t *testing.T) {
	dm := pendulumModel(t)
	updatePendulum(t, dm, math.Pi/2)

	bias, err := dm.BiasForces()
	test.That(t, err, test.ShouldBeNil)
	// Rod horizontal: gravity torque about j1 is at its maximum magnitude, m*g*L.
	test.That(t, bias[0], test.ShouldAlmostEqual, 9.81)
}

func TestDynamicModelBiasForcesZeroAtRest(t *testing.T) {
	dm := pendulumModel(t)
	updatePendulum(t, dm, 0)

	bias, err := dm.BiasForces()
	test.That(t, err, test.ShouldBeNil)
	// Rod hanging straight down: equilibrium, zero gravity torque.
	test.That(t, bias[0], test.ShouldAlmostEqual, 0.0)
}

func TestDynamicModelJacobianDotNotImplemented(t *testing.T) {
	dm := pendulumModel(t)
	updatePendulum(t, dm, 0)
	_, err := dm.JacobianDot("world", "j2")
	test.That(t, err, test.ShouldEqual, ErrNotImplemented)
}
