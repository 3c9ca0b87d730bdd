package scene

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/wbc/kinematics"
	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/solver"
	"go.viam.com/wbc/spatialmath"
)

// pendulumDynamicModel mirrors the kinematics package's own pendulum fixture: a rod of unit length
// swinging about Y, with a lumped point mass at the end (j2), so that JointSpaceInertiaMatrix and
// BiasForces are non-trivial without needing a floating base or contacts.
func pendulumDynamicModel(t *testing.T, theta1 float64) *kinematics.DynamicModel {
	t.Helper()
	m := referenceframe.NewSimpleModel("world")
	m.AddTransform(referenceframe.NewRevoluteFrame("j1", r3.Vector{Y: 1}, referenceframe.Limit{Min: -math.Pi, Max: math.Pi}))
	m.AddTransform(referenceframe.NewStaticFrame("rod", spatialmath.NewPose(r3.Vector{Z: -1}, spatialmath.NewOrientationVector())))
	m.AddTransform(referenceframe.NewRevoluteFrame("j2", r3.Vector{Y: 1}, referenceframe.Limit{Min: -math.Pi, Max: math.Pi}))

	dm, err := kinematics.NewDynamicModelFromModel(kinematics.RobotModelConfig{URDFPath: "unused"}, m, map[string]float64{"j2": 1})
	test.That(t, err, test.ShouldBeNil)

	ts := referenceframe.NewTimestamp(1)
	joints := referenceframe.NamedVector[referenceframe.JointState]{
		Names: []string{"j1", "j2"},
		Values: []referenceframe.JointState{
			{Position: theta1, Timestamp: ts},
			{Position: 0, Timestamp: ts},
		},
	}
	test.That(t, dm.Update(joints, nil), test.ShouldBeNil)
	return dm
}

func TestAccelerationSceneUpdateShapesDynamicsAndConstraintPriorities(t *testing.T) {
	dm := pendulumDynamicModel(t, math.Pi/2)
	sc := NewAccelerationScene(dm, dm.RootFrame(), nil)
	err := sc.Configure([]ConstraintConfig{
		{Name: "hold_j1", Type: JointTask, Priority: 0, Activation: 1, Weights: []float64{1}, JointNames: []string{"j1"}},
	})
	test.That(t, err, test.ShouldBeNil)

	hqp, err := sc.Update()
	test.That(t, err, test.ShouldBeNil)

	// nJoints(2) + nActuated(2) + 3*nContacts(0)
	test.That(t, hqp.NumVars, test.ShouldEqual, 4)
	// dynamics equality, the configured constraint, and the trailing regularization block
	test.That(t, len(hqp.SubQPs), test.ShouldEqual, 3)
	test.That(t, hqp.SubQPs[0].Priority, test.ShouldEqual, 0)
	test.That(t, hqp.SubQPs[1].Priority, test.ShouldEqual, 1)

	r, c := hqp.SubQPs[0].A.Dims()
	test.That(t, r, test.ShouldEqual, 2)
	test.That(t, c, test.ShouldEqual, 4)
}

func TestAccelerationSceneSolveSatisfiesDynamicsEquality(t *testing.T) {
	dm := pendulumDynamicModel(t, math.Pi/2)
	sc := NewAccelerationScene(dm, dm.RootFrame(), nil)
	test.That(t, sc.Configure([]ConstraintConfig{
		{Name: "hold_j1", Type: JointTask, Priority: 0, Activation: 1, Weights: []float64{1}, JointNames: []string{"j1"}},
	}), test.ShouldBeNil)

	nv := referenceframe.NewNamedVector([]string{"j1"}, []referenceframe.JointState{{Acceleration: 0.4, Timestamp: referenceframe.NewTimestamp(1)}})
	test.That(t, sc.SetJointReference("hold_j1", JointReference{Values: nv, Timestamp: referenceframe.NewTimestamp(1)}), test.ShouldBeNil)

	hqp, err := sc.Update()
	test.That(t, err, test.ShouldBeNil)

	slv := solver.NewHierarchicalLeastSquaresSolver()
	test.That(t, slv.Configure(nil, hqp.NumVars), test.ShouldBeNil)

	cmd, err := sc.Solve(hqp, slv)
	test.That(t, err, test.ShouldBeNil)

	qddot1, ok := cmd.Get("j1")
	test.That(t, ok, test.ShouldBeTrue)
	// The highest-priority dynamics equality is satisfiable for any q̈ (τ absorbs the slack), so the
	// lower-priority joint acceleration target should be met exactly.
	test.That(t, qddot1.Acceleration, test.ShouldAlmostEqual, 0.4)

	torques := sc.LastTorques()
	test.That(t, len(torques), test.ShouldEqual, 2)
}

func TestAccelerationSceneUnconfiguredUpdateFails(t *testing.T) {
	dm := pendulumDynamicModel(t, 0)
	sc := NewAccelerationScene(dm, dm.RootFrame(), nil)
	_, err := sc.Update()
	test.That(t, err, test.ShouldEqual, ErrNotConfigured)
}
