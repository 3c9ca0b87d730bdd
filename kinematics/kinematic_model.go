package kinematics

import (
	"sync"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/referenceframe/urdf"
	"go.viam.com/wbc/spatialmath"
)

// KinematicModel is the kinematics-only RobotModel variant: it maintains a tree (here, a single
// serial chain) and a lazy cache of root-tip chains, but exposes no inertia or bias forces.
// Grounded in original_source's KinematicRobotModelKDL.cpp.
type KinematicModel struct {
	cfg   RobotModelConfig
	model referenceframe.Model

	jointNames   []string
	jointIndexOf map[string]int
	limits       []referenceframe.Limit

	mu         sync.Mutex
	chains     map[chainKey]*chain
	positions  []float64
	velocities []float64
	updated    referenceframe.Timestamp
}

// NewKinematicModel parses cfg.URDFPath and returns a configured KinematicModel.
func NewKinematicModel(cfg RobotModelConfig) (*KinematicModel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	m, err := urdf.ParseFile(cfg.URDFPath, "")
	if err != nil {
		return nil, err
	}
	return newKinematicModelFrom(cfg, m)
}

// NewKinematicModelFromModel builds a KinematicModel directly from an already-parsed
// referenceframe.Model, for the DH-parameter and mobile-base model sources that don't go through
// URDF parsing.
func NewKinematicModelFromModel(cfg RobotModelConfig, m referenceframe.Model) (*KinematicModel, error) {
	return newKinematicModelFrom(cfg, m)
}

func newKinematicModelFrom(cfg RobotModelConfig, m referenceframe.Model) (*KinematicModel, error) {
	blacklist := make(map[string]bool, len(cfg.JointBlacklist))
	for _, j := range cfg.JointBlacklist {
		blacklist[j] = true
	}

	var names []string
	var limits []referenceframe.Limit
	jointIndexOf := map[string]int{}
	for _, f := range m.OrderedTransforms() {
		if f.Kind() == referenceframe.Fixed {
			continue
		}
		if blacklist[f.Name()] {
			return nil, NewConfigError("blacklisted joint " + f.Name() + " not found in chain")
		}
		jointIndexOf[f.Name()] = len(names)
		names = append(names, f.Name())
		limits = append(limits, f.DoF()...)
	}

	km := &KinematicModel{
		cfg:          cfg,
		model:        m,
		jointNames:   names,
		jointIndexOf: jointIndexOf,
		limits:       limits,
		chains:       map[chainKey]*chain{},
		positions:    make([]float64, len(names)),
		velocities:   make([]float64, len(names)),
	}
	return km, nil
}

func (km *KinematicModel) baseFrameName() string { return km.model.Name() }

// RootFrame implements RobotModel.
func (km *KinematicModel) RootFrame() string { return km.baseFrameName() }

func (km *KinematicModel) chainFor(root, tip string) (*chain, error) {
	key := chainKey{root: root, tip: tip}
	km.mu.Lock()
	defer km.mu.Unlock()
	if c, ok := km.chains[key]; ok {
		return c, nil
	}
	if root != km.baseFrameName() {
		return nil, NewInvalidRootFrameError(root, km.baseFrameName())
	}
	c, err := newChain(km.model, km.jointIndexOf, tip)
	if err != nil {
		return nil, err
	}
	km.chains[key] = c
	return c, nil
}

// Update implements RobotModel.
func (km *KinematicModel) Update(
	joints referenceframe.NamedVector[referenceframe.JointState],
	_ *referenceframe.RigidBodyStateSE3,
) error {
	if joints.Len() != len(km.jointNames) {
		return NewConfigError("joint_state size does not match model DoF")
	}
	positions := make([]float64, len(km.jointNames))
	velocities := make([]float64, len(km.jointNames))
	var ts referenceframe.Timestamp
	for i, name := range joints.Names {
		idx, ok := km.jointIndexOf[name]
		if !ok {
			return NewUnknownFrameError(name)
		}
		js := joints.Values[i]
		if js.Timestamp.IsNull() {
			return NewConfigError("joint_state for " + name + " has a null timestamp")
		}
		positions[idx] = js.Position
		if js.HasSpeed() {
			velocities[idx] = js.Speed
		}
		ts = js.Timestamp
	}

	km.mu.Lock()
	km.positions = positions
	km.velocities = velocities
	km.updated = ts
	km.mu.Unlock()
	return nil
}

func (km *KinematicModel) snapshot() (positions, velocities []float64, ts referenceframe.Timestamp, err error) {
	km.mu.Lock()
	defer km.mu.Unlock()
	if km.updated.IsNull() {
		return nil, nil, referenceframe.Timestamp{}, ErrNotUpdated
	}
	positions = make([]float64, len(km.positions))
	velocities = make([]float64, len(km.velocities))
	copy(positions, km.positions)
	copy(velocities, km.velocities)
	return positions, velocities, km.updated, nil
}

// JointState implements RobotModel.
func (km *KinematicModel) JointState(names []string) (referenceframe.NamedVector[referenceframe.JointState], error) {
	positions, velocities, ts, err := km.snapshot()
	if err != nil {
		return referenceframe.NamedVector[referenceframe.JointState]{}, err
	}
	values := make([]referenceframe.JointState, len(names))
	for i, n := range names {
		idx, ok := km.jointIndexOf[n]
		if !ok {
			return referenceframe.NamedVector[referenceframe.JointState]{}, NewUnknownFrameError(n)
		}
		js := referenceframe.NewUnsetJointState()
		js.Position = positions[idx]
		js.Speed = velocities[idx]
		js.Timestamp = ts
		values[i] = js
	}
	return referenceframe.NamedVector[referenceframe.JointState]{Names: names, Values: values}, nil
}

// RigidBodyState implements RobotModel.
func (km *KinematicModel) RigidBodyState(root, tip string) (referenceframe.RigidBodyStateSE3, error) {
	positions, velocities, ts, err := km.snapshot()
	if err != nil {
		return referenceframe.RigidBodyStateSE3{}, err
	}
	c, err := km.chainFor(root, tip)
	if err != nil {
		return referenceframe.RigidBodyStateSE3{}, err
	}
	pose, cols := c.poseAndFrames(positions)

	colOffset := make(map[int]int, len(c.joints))
	for i, slot := range c.joints {
		colOffset[i] = slot.jointIdx
	}
	j := buildJacobian(pose.Point(), cols, len(km.jointNames), colOffset)
	twist := mat.NewVecDense(6, nil)
	twist.MulVec(j.Dense(), mat.NewVecDense(len(velocities), velocities))

	state := referenceframe.NewRigidBodyStateSE3(tip, root)
	state.Pose = pose
	state.TwistLinear = r3.Vector{X: twist.AtVec(0), Y: twist.AtVec(1), Z: twist.AtVec(2)}
	state.TwistAngular = r3.Vector{X: twist.AtVec(3), Y: twist.AtVec(4), Z: twist.AtVec(5)}
	state.Timestamp = ts
	return state, nil
}

func buildJacobian(tipPoint r3.Vector, cols []jacColumn, nCols int, colOffset map[int]int) *spatialmath.Jacobian {
	j := spatialmath.NewZeroJacobian(nCols)
	for slotIdx, col := range cols {
		c, ok := colOffset[slotIdx]
		if !ok {
			continue
		}
		var linear r3.Vector
		if col.prismatic {
			linear = col.axis
		} else {
			linear = col.axis.Cross(tipPoint.Sub(col.pivot))
		}
		j.Set(0, c, linear.X)
		j.Set(1, c, linear.Y)
		j.Set(2, c, linear.Z)
		if !col.prismatic {
			j.Set(3, c, col.axis.X)
			j.Set(4, c, col.axis.Y)
			j.Set(5, c, col.axis.Z)
		}
	}
	return j
}

// SpaceJacobian implements RobotModel: the Jacobian expressed in the root frame.
func (km *KinematicModel) SpaceJacobian(root, tip string) (*spatialmath.Jacobian, error) {
	positions, _, _, err := km.snapshot()
	if err != nil {
		return nil, err
	}
	c, err := km.chainFor(root, tip)
	if err != nil {
		return nil, err
	}
	tipPose, cols := c.poseAndFrames(positions)

	colOffset := make(map[int]int, len(c.joints))
	for i, slot := range c.joints {
		colOffset[i] = slot.jointIdx
	}
	return buildJacobian(tipPose.Point(), cols, len(km.jointNames), colOffset), nil
}

// BodyJacobian implements RobotModel: the space Jacobian re-expressed at the tip frame.
func (km *KinematicModel) BodyJacobian(root, tip string) (*spatialmath.Jacobian, error) {
	j, err := km.SpaceJacobian(root, tip)
	if err != nil {
		return nil, err
	}
	state, err := km.RigidBodyState(root, tip)
	if err != nil {
		return nil, err
	}
	j.ChangeRefFrame(spatialmath.Invert(state.Pose))
	return j, nil
}

// JacobianDot implements RobotModel: not available on the kinematics-only variant.
func (km *KinematicModel) JacobianDot(root, tip string) (*spatialmath.Jacobian, error) {
	return nil, ErrNotImplemented
}

// SpatialAccelerationBias implements RobotModel: not available on the kinematics-only variant.
func (km *KinematicModel) SpatialAccelerationBias(root, tip string) (r3.Vector, r3.Vector, error) {
	return r3.Vector{}, r3.Vector{}, ErrNotImplemented
}

// JointSpaceInertiaMatrix implements RobotModel: not available on the kinematics-only variant.
func (km *KinematicModel) JointSpaceInertiaMatrix() (*mat.Dense, error) {
	return nil, ErrNotImplemented
}

// BiasForces implements RobotModel: not available on the kinematics-only variant.
func (km *KinematicModel) BiasForces() ([]float64, error) {
	return nil, ErrNotImplemented
}

// JointLimits implements RobotModel.
func (km *KinematicModel) JointLimits() []referenceframe.Limit { return km.limits }

// JointNames implements RobotModel.
func (km *KinematicModel) JointNames() []string { return km.jointNames }

// ActuatedJointNames implements RobotModel: every joint is actuated in the kinematics-only
// variant unless explicitly excluded via cfg.ActuatedJoints.
func (km *KinematicModel) ActuatedJointNames() []string {
	if len(km.cfg.ActuatedJoints) > 0 {
		return km.cfg.ActuatedJoints
	}
	return km.jointNames
}

// NoOfJoints implements RobotModel.
func (km *KinematicModel) NoOfJoints() int { return len(km.jointNames) }

// NoOfActuatedJoints implements RobotModel.
func (km *KinematicModel) NoOfActuatedJoints() int { return len(km.ActuatedJointNames()) }

// SelectionMatrix implements RobotModel: maps actuated joints into the full joint vector.
func (km *KinematicModel) SelectionMatrix() *mat.Dense {
	actuated := km.ActuatedJointNames()
	s := mat.NewDense(len(actuated), len(km.jointNames), nil)
	for row, name := range actuated {
		if col, ok := km.jointIndexOf[name]; ok {
			s.Set(row, col, 1)
		}
	}
	return s
}

// HasLink implements RobotModel.
func (km *KinematicModel) HasLink(name string) bool {
	for _, f := range km.model.OrderedTransforms() {
		if f.Name() == name {
			return true
		}
	}
	return name == km.baseFrameName()
}

// HasJoint implements RobotModel.
func (km *KinematicModel) HasJoint(name string) bool {
	_, ok := km.jointIndexOf[name]
	return ok
}

// JointIndex implements RobotModel.
func (km *KinematicModel) JointIndex(name string) (int, bool) {
	idx, ok := km.jointIndexOf[name]
	return idx, ok
}

// CenterOfMass implements RobotModel: not available on the kinematics-only variant, which carries
// no mass properties.
func (km *KinematicModel) CenterOfMass() (referenceframe.RigidBodyStateSE3, error) {
	return referenceframe.RigidBodyStateSE3{}, ErrNotImplemented
}
