package scene

import (
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/wbc/kinematics"
	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/solver"
)

func twoLinkPlanarModel(t *testing.T) kinematics.RobotModel {
	t.Helper()
	cfg := &referenceframe.DHModelConfig{
		Name: "planar2",
		DHParams: []referenceframe.DHParamConfig{
			{ID: "j1", A: 1, D: 0, Alpha: 0, Min: -180, Max: 180},
			{ID: "j2", A: 1, D: 0, Alpha: 0, Min: -180, Max: 180},
		},
	}
	rfModel, err := cfg.ParseConfig("")
	test.That(t, err, test.ShouldBeNil)

	km, err := kinematics.NewKinematicModelFromModel(kinematics.RobotModelConfig{URDFPath: "unused"}, rfModel)
	test.That(t, err, test.ShouldBeNil)

	ts := referenceframe.NewTimestamp(1)
	joints := referenceframe.NamedVector[referenceframe.JointState]{
		Names: []string{"j1", "j2"},
		Values: []referenceframe.JointState{
			{Position: 0, Speed: 0, Timestamp: ts},
			{Position: 0, Speed: 0, Timestamp: ts},
		},
	}
	test.That(t, km.Update(joints, nil), test.ShouldBeNil)
	return km
}

func TestVelocitySceneJointTaskRoundTrip(t *testing.T) {
	model := twoLinkPlanarModel(t)
	sc := NewVelocityScene(model)
	err := sc.Configure([]ConstraintConfig{
		{
			Name:       "hold_j1",
			Type:       JointTask,
			Priority:   0,
			Activation: 1,
			Weights:    []float64{1},
			JointNames: []string{"j1"},
		},
	})
	test.That(t, err, test.ShouldBeNil)

	nv := referenceframe.NewNamedVector([]string{"j1"}, []referenceframe.JointState{{Speed: 0.5, Timestamp: referenceframe.NewTimestamp(1)}})
	err = sc.SetJointReference("hold_j1", JointReference{Values: nv, Timestamp: referenceframe.NewTimestamp(1)})
	test.That(t, err, test.ShouldBeNil)

	hqp, err := sc.Update()
	test.That(t, err, test.ShouldBeNil)
	// one SubQP for the configured priority-0 constraint, plus the scene's regularization block
	test.That(t, len(hqp.SubQPs), test.ShouldEqual, 2)

	slv := solver.NewHierarchicalLeastSquaresSolver()
	test.That(t, slv.Configure(nil, 2), test.ShouldBeNil)

	cmd, err := sc.Solve(hqp, slv)
	test.That(t, err, test.ShouldBeNil)
	v, ok := cmd.Get("j1")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v.Speed, test.ShouldAlmostEqual, 0.5)
}

func TestVelocitySceneUnconfiguredUpdateFails(t *testing.T) {
	model := twoLinkPlanarModel(t)
	sc := NewVelocityScene(model)
	_, err := sc.Update()
	test.That(t, err, test.ShouldEqual, ErrNotConfigured)
}

func TestVelocitySceneRejectsUnknownJoint(t *testing.T) {
	model := twoLinkPlanarModel(t)
	sc := NewVelocityScene(model)
	err := sc.Configure([]ConstraintConfig{
		{Name: "bad", Type: JointTask, Weights: []float64{1}, JointNames: []string{"nonexistent"}},
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestVelocitySceneReferenceStalenessGatesActivation(t *testing.T) {
	model := twoLinkPlanarModel(t)
	sc := NewVelocityScene(model)
	err := sc.Configure([]ConstraintConfig{
		{Name: "hold_j1", Type: JointTask, Priority: 0, Activation: 1, Weights: []float64{1}, JointNames: []string{"j1"}},
		{Name: "hold_j2", Type: JointTask, Priority: 0, Activation: 1, Weights: []float64{1}, JointNames: []string{"j2"}},
	})
	test.That(t, err, test.ShouldBeNil)

	// No reference set yet: activation is 0.
	status := sc.UpdateConstraintsStatus()
	st, ok := status.Get("hold_j1")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, st.Activation, test.ShouldAlmostEqual, 0.0)

	// hold_j1's reference is one second older than hold_j2's, past DefaultReferenceTimeout.
	old := referenceframe.NewTimestamp(1)
	fresh := referenceframe.NewTimestamp(1 + time.Second.Nanoseconds())
	nv1 := referenceframe.NewNamedVector([]string{"j1"}, []referenceframe.JointState{{Speed: 0.1, Timestamp: old}})
	test.That(t, sc.SetJointReference("hold_j1", JointReference{Values: nv1, Timestamp: old}), test.ShouldBeNil)
	nv2 := referenceframe.NewNamedVector([]string{"j2"}, []referenceframe.JointState{{Speed: 0.1, Timestamp: fresh}})
	test.That(t, sc.SetJointReference("hold_j2", JointReference{Values: nv2, Timestamp: fresh}), test.ShouldBeNil)

	status = sc.UpdateConstraintsStatus()
	st, ok = status.Get("hold_j1")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, st.Activation, test.ShouldAlmostEqual, 0.0)
	test.That(t, st.Stale, test.ShouldBeTrue)
	st, ok = status.Get("hold_j2")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, st.Activation, test.ShouldAlmostEqual, 1.0)
}

func TestStatusTableRenders(t *testing.T) {
	model := twoLinkPlanarModel(t)
	sc := NewVelocityScene(model)
	test.That(t, sc.Configure([]ConstraintConfig{
		{Name: "hold_j1", Type: JointTask, Priority: 0, Activation: 1, Weights: []float64{1}, JointNames: []string{"j1"}},
	}), test.ShouldBeNil)

	rendered := StatusTable(sc.UpdateConstraintsStatus())
	test.That(t, rendered, test.ShouldContainSubstring, "hold_j1")
}
