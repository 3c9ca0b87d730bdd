// Package kinematics implements the robot model capability set: kinematics-only and full-dynamics
// variants over a parsed kinematic description, queried by the scene package each control cycle.
// Grounded in original_source's KinematicRobotModelKDL.cpp and RobotModelKDL.cpp, using
// go.viam.com/rdk's referenceframe/spatialmath conventions for the underlying types.
package kinematics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/spatialmath"
)

// RobotModel is the capability set exposed to scenes, per the robot-model component design: a
// single interface implemented by both the kinematics-only and full-dynamics variants. Capabilities
// a variant does not support fail with ErrNotImplemented rather than being absent from the type, so
// scenes can probe support once at configure time.
type RobotModel interface {
	// Update stamps the model with joint (and, for floating-base models, base) state; subsequent
	// queries are valid until the next Update.
	Update(joints referenceframe.NamedVector[referenceframe.JointState], base *referenceframe.RigidBodyStateSE3) error

	JointState(names []string) (referenceframe.NamedVector[referenceframe.JointState], error)
	RigidBodyState(root, tip string) (referenceframe.RigidBodyStateSE3, error)

	SpaceJacobian(root, tip string) (*spatialmath.Jacobian, error)
	BodyJacobian(root, tip string) (*spatialmath.Jacobian, error)
	JacobianDot(root, tip string) (*spatialmath.Jacobian, error)
	SpatialAccelerationBias(root, tip string) (linear, angular r3.Vector, err error)

	JointSpaceInertiaMatrix() (*mat.Dense, error)
	BiasForces() ([]float64, error)

	// RootFrame names the frame every (root, tip) query must use as root: the model's base link
	// for a fixed-base model, or the configured world frame for a floating-base one.
	RootFrame() string

	JointLimits() []referenceframe.Limit
	JointNames() []string
	ActuatedJointNames() []string
	NoOfJoints() int
	NoOfActuatedJoints() int
	SelectionMatrix() *mat.Dense

	HasLink(name string) bool
	HasJoint(name string) bool
	JointIndex(name string) (int, bool)

	CenterOfMass() (referenceframe.RigidBodyStateSE3, error)
}

// RobotModelConfig describes a one-shot, file-backed kinematic description plus the runtime
// options a RobotModel needs at configure time.
type RobotModelConfig struct {
	URDFPath string

	// SubmechanismClosures lists (joint_a, joint_b) name pairs forming closed loops. Accepted for
	// bookkeeping; the kinematic-projection step for true parallel mechanisms is out of scope (see
	// DESIGN.md), so a non-empty list forces DynamicModel.Update to fail with ErrNotImplemented.
	SubmechanismClosures [][2]string

	JointBlacklist []string
	ActuatedJoints []string

	WorldFrame string

	FloatingBase        bool
	InitialFloatingBase referenceframe.RigidBodyStateSE3

	ContactPoints []string
}

func (cfg RobotModelConfig) validate() error {
	if cfg.URDFPath == "" {
		return NewConfigError("URDFPath is required")
	}
	if cfg.FloatingBase && cfg.WorldFrame == "" {
		return NewConfigError("floating-base models require a WorldFrame")
	}
	blacklisted := make(map[string]bool, len(cfg.JointBlacklist))
	for _, j := range cfg.JointBlacklist {
		blacklisted[j] = true
	}
	for _, j := range cfg.ActuatedJoints {
		if blacklisted[j] {
			return NewConfigError("joint " + j + " is both blacklisted and actuated")
		}
	}
	return nil
}
