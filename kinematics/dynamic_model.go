package kinematics

import (
	"sync"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/referenceframe/urdf"
	"go.viam.com/wbc/spatialmath"
)

// gravity is the world-frame gravitational acceleration used by biasForces.
var gravity = r3.Vector{Z: -9.81}

// jacobianDotEpsilon is the step used to numerically differentiate the space Jacobian when
// computing spatialAccelerationBias, since jacobianDot itself is not implemented (matching
// original_source, which leaves the analytic J̇ unimplemented for the full-dynamics variant and
// requires TSID assembly to go through spatialAccelerationBias instead).
const jacobianDotEpsilon = 1e-6

// DynamicModel is the full-dynamics RobotModel variant: floating base, joint-space inertia, and
// bias forces over a single serial chain rooted at the world frame. Grounded in
// original_source's RobotModelKDL.cpp and KinematicRobotModelKDL.cpp.
//
// Mass properties are a point-mass-per-joint approximation (RobotModelConfig does not carry full
// rigid-body inertia tensors, which this repo's URDF parser does not extract): each actuated
// joint's pivot point carries a lumped mass from cfg.LinkMasses. jointSpaceInertiaMatrix and the
// gravity term of biasForces follow directly from that approximation; the velocity-dependent
// (Coriolis/centrifugal) term of biasForces is not computed and is documented as a known gap in
// DESIGN.md rather than approximated badly.
type DynamicModel struct {
	cfg   RobotModelConfig
	inner referenceframe.Model

	jointNames   []string
	jointIndexOf map[string]int
	limits       []referenceframe.Limit
	masses       []float64 // parallel to jointNames; lumped mass at that joint's pivot

	mu         sync.Mutex
	chains     map[chainKey]*chain
	positions  []float64
	velocities []float64
	updated    referenceframe.Timestamp
}

// NewDynamicModel parses cfg.URDFPath and returns a configured DynamicModel. linkMasses maps joint
// name to a lumped point mass at that joint's pivot; joints absent from the map are treated as
// massless.
func NewDynamicModel(cfg RobotModelConfig, linkMasses map[string]float64) (*DynamicModel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	m, err := urdf.ParseFile(cfg.URDFPath, "")
	if err != nil {
		return nil, err
	}
	return NewDynamicModelFromModel(cfg, m, linkMasses)
}

// NewDynamicModelFromModel builds a DynamicModel directly from an already-parsed
// referenceframe.Model, for the DH-parameter and mobile-base model sources that don't go through
// URDF parsing.
func NewDynamicModelFromModel(cfg RobotModelConfig, m referenceframe.Model, linkMasses map[string]float64) (*DynamicModel, error) {
	var names []string
	var limits []referenceframe.Limit
	var masses []float64
	jointIndexOf := map[string]int{}

	if cfg.FloatingBase {
		for _, f := range floatingBaseFrames() {
			jointIndexOf[f.Name()] = len(names)
			names = append(names, f.Name())
			limits = append(limits, f.DoF()...)
			masses = append(masses, 0)
		}
	}
	for _, f := range m.OrderedTransforms() {
		if f.Kind() == referenceframe.Fixed {
			continue
		}
		jointIndexOf[f.Name()] = len(names)
		names = append(names, f.Name())
		limits = append(limits, f.DoF()...)
		masses = append(masses, linkMasses[f.Name()])
	}

	dm := &DynamicModel{
		cfg:          cfg,
		inner:        m,
		jointNames:   names,
		jointIndexOf: jointIndexOf,
		limits:       limits,
		masses:       masses,
		chains:       map[chainKey]*chain{},
		positions:    make([]float64, len(names)),
		velocities:   make([]float64, len(names)),
	}
	return dm, nil
}

func (dm *DynamicModel) baseFrameName() string {
	if dm.cfg.FloatingBase {
		return dm.cfg.WorldFrame
	}
	return dm.inner.Name()
}

// RootFrame implements RobotModel.
func (dm *DynamicModel) RootFrame() string { return dm.baseFrameName() }

// transforms returns the full ordered frame list: synthetic floating-base joints (if enabled)
// followed by the inner model's own transforms.
func (dm *DynamicModel) transforms() []referenceframe.Frame {
	if !dm.cfg.FloatingBase {
		return dm.inner.OrderedTransforms()
	}
	return append(floatingBaseFrames(), dm.inner.OrderedTransforms()...)
}

func (dm *DynamicModel) chainFor(root, tip string) (*chain, error) {
	if len(dm.cfg.SubmechanismClosures) > 0 {
		return nil, ErrNotImplemented
	}
	if root != dm.baseFrameName() {
		return nil, NewInvalidRootFrameError(root, dm.baseFrameName())
	}
	key := chainKey{root: root, tip: tip}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if c, ok := dm.chains[key]; ok {
		return c, nil
	}
	c, err := newChainOverFrames(dm.transforms(), dm.jointIndexOf, tip)
	if err != nil {
		return nil, err
	}
	dm.chains[key] = c
	return c, nil
}

// Update implements RobotModel.
func (dm *DynamicModel) Update(
	joints referenceframe.NamedVector[referenceframe.JointState],
	base *referenceframe.RigidBodyStateSE3,
) error {
	if len(dm.cfg.SubmechanismClosures) > 0 {
		return ErrNotImplemented
	}
	if dm.cfg.FloatingBase && base == nil {
		return NewConfigError("floating-base model requires floating_base_state")
	}

	positions := make([]float64, len(dm.jointNames))
	velocities := make([]float64, len(dm.jointNames))
	var ts referenceframe.Timestamp

	if dm.cfg.FloatingBase {
		if base.Timestamp.IsNull() {
			return NewConfigError("floating_base_state has a null timestamp")
		}
		fbPos := floatingBaseInputs(*base)
		copy(positions[:6], fbPos)
		velocities[0], velocities[1], velocities[2] = base.TwistLinear.X, base.TwistLinear.Y, base.TwistLinear.Z
		velocities[3], velocities[4], velocities[5] = base.TwistAngular.X, base.TwistAngular.Y, base.TwistAngular.Z
		ts = base.Timestamp
	}

	for i, name := range joints.Names {
		idx, ok := dm.jointIndexOf[name]
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

	dm.mu.Lock()
	dm.positions = positions
	dm.velocities = velocities
	dm.updated = ts
	dm.mu.Unlock()
	return nil
}

func (dm *DynamicModel) snapshot() (positions, velocities []float64, ts referenceframe.Timestamp, err error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.updated.IsNull() {
		return nil, nil, referenceframe.Timestamp{}, ErrNotUpdated
	}
	positions = make([]float64, len(dm.positions))
	velocities = make([]float64, len(dm.velocities))
	copy(positions, dm.positions)
	copy(velocities, dm.velocities)
	return positions, velocities, dm.updated, nil
}

// JointState implements RobotModel.
func (dm *DynamicModel) JointState(names []string) (referenceframe.NamedVector[referenceframe.JointState], error) {
	positions, velocities, ts, err := dm.snapshot()
	if err != nil {
		return referenceframe.NamedVector[referenceframe.JointState]{}, err
	}
	values := make([]referenceframe.JointState, len(names))
	for i, n := range names {
		idx, ok := dm.jointIndexOf[n]
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
func (dm *DynamicModel) RigidBodyState(root, tip string) (referenceframe.RigidBodyStateSE3, error) {
	positions, velocities, ts, err := dm.snapshot()
	if err != nil {
		return referenceframe.RigidBodyStateSE3{}, err
	}
	c, err := dm.chainFor(root, tip)
	if err != nil {
		return referenceframe.RigidBodyStateSE3{}, err
	}
	pose, cols := c.poseAndFrames(positions)
	state := referenceframe.NewRigidBodyStateSE3(tip, root)
	state.Pose = pose

	colOffset := make(map[int]int, len(c.joints))
	for i, slot := range c.joints {
		colOffset[i] = slot.jointIdx
	}
	j := buildJacobian(pose.Point(), cols, len(dm.jointNames), colOffset)
	twist := mat.NewVecDense(6, nil)
	twist.MulVec(j.Dense(), mat.NewVecDense(len(velocities), velocities))
	state.TwistLinear = r3.Vector{X: twist.AtVec(0), Y: twist.AtVec(1), Z: twist.AtVec(2)}
	state.TwistAngular = r3.Vector{X: twist.AtVec(3), Y: twist.AtVec(4), Z: twist.AtVec(5)}
	state.Timestamp = ts
	return state, nil
}

// SpaceJacobian implements RobotModel.
func (dm *DynamicModel) SpaceJacobian(root, tip string) (*spatialmath.Jacobian, error) {
	positions, _, _, err := dm.snapshot()
	if err != nil {
		return nil, err
	}
	c, err := dm.chainFor(root, tip)
	if err != nil {
		return nil, err
	}
	tipPose, cols := c.poseAndFrames(positions)
	colOffset := make(map[int]int, len(c.joints))
	for i, slot := range c.joints {
		colOffset[i] = slot.jointIdx
	}
	return buildJacobian(tipPose.Point(), cols, len(dm.jointNames), colOffset), nil
}

// BodyJacobian implements RobotModel.
func (dm *DynamicModel) BodyJacobian(root, tip string) (*spatialmath.Jacobian, error) {
	j, err := dm.SpaceJacobian(root, tip)
	if err != nil {
		return nil, err
	}
	state, err := dm.RigidBodyState(root, tip)
	if err != nil {
		return nil, err
	}
	j.ChangeRefFrame(spatialmath.Invert(state.Pose))
	return j, nil
}

// JacobianDot implements RobotModel: not implemented, matching original_source. Callers needing
// J̇·q̇ must use SpatialAccelerationBias instead.
func (dm *DynamicModel) JacobianDot(root, tip string) (*spatialmath.Jacobian, error) {
	return nil, ErrNotImplemented
}

// SpatialAccelerationBias implements RobotModel as J̇·q̇, computed by numerically differentiating
// the space Jacobian along the current joint velocity direction.
func (dm *DynamicModel) SpatialAccelerationBias(root, tip string) (r3.Vector, r3.Vector, error) {
	positions, velocities, _, err := dm.snapshot()
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	c, err := dm.chainFor(root, tip)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}

	colOffset := make(map[int]int, len(c.joints))
	for i, slot := range c.joints {
		colOffset[i] = slot.jointIdx
	}

	tipPose0, cols0 := c.poseAndFrames(positions)
	j0 := buildJacobian(tipPose0.Point(), cols0, len(dm.jointNames), colOffset)

	stepped := make([]float64, len(positions))
	for i := range positions {
		stepped[i] = positions[i] + jacobianDotEpsilon*velocities[i]
	}
	tipPose1, cols1 := c.poseAndFrames(stepped)
	j1 := buildJacobian(tipPose1.Point(), cols1, len(dm.jointNames), colOffset)

	qdot := mat.NewVecDense(len(velocities), velocities)
	var jdq0, jdq1, bias mat.VecDense
	jdq0.MulVec(j0.Dense(), qdot)
	jdq1.MulVec(j1.Dense(), qdot)
	bias.SubVec(&jdq1, &jdq0)
	bias.ScaleVec(1/jacobianDotEpsilon, &bias)

	return r3.Vector{X: bias.AtVec(0), Y: bias.AtVec(1), Z: bias.AtVec(2)},
		r3.Vector{X: bias.AtVec(3), Y: bias.AtVec(4), Z: bias.AtVec(5)}, nil
}

// JointSpaceInertiaMatrix implements RobotModel using the point-mass approximation described on
// DynamicModel: H = sum_i J_i^T * m_i * J_i, where J_i is the linear-velocity Jacobian from the
// world root to joint i's own pivot.
func (dm *DynamicModel) JointSpaceInertiaMatrix() (*mat.Dense, error) {
	positions, _, _, err := dm.snapshot()
	if err != nil {
		return nil, err
	}
	n := len(dm.jointNames)
	h := mat.NewDense(n, n, nil)

	root := dm.baseFrameName()
	for i, name := range dm.jointNames {
		if dm.masses[i] == 0 {
			continue
		}
		jLink, err := dm.chainFor(root, name)
		if err != nil {
			continue
		}
		tipPose, cols := jLink.poseAndFrames(positions)
		colOffset := make(map[int]int, len(jLink.joints))
		for k, slot := range jLink.joints {
			colOffset[k] = slot.jointIdx
		}
		jFull := buildJacobian(tipPose.Point(), cols, n, colOffset)

		var contrib mat.Dense
		linear := jFull.Dense().Slice(0, 3, 0, n)
		contrib.Mul(linear.T(), linear)
		contrib.Scale(dm.masses[i], &contrib)
		h.Add(h, &contrib)
	}
	return h, nil
}

// BiasForces implements RobotModel with the gravity term of the point-mass approximation; the
// velocity-dependent Coriolis/centrifugal term is not computed (see DESIGN.md).
func (dm *DynamicModel) BiasForces() ([]float64, error) {
	positions, _, _, err := dm.snapshot()
	if err != nil {
		return nil, err
	}
	n := len(dm.jointNames)
	h := make([]float64, n)

	root := dm.baseFrameName()
	for i, name := range dm.jointNames {
		if dm.masses[i] == 0 {
			continue
		}
		jLink, err := dm.chainFor(root, name)
		if err != nil {
			continue
		}
		tipPose, cols := jLink.poseAndFrames(positions)
		colOffset := make(map[int]int, len(jLink.joints))
		for k, slot := range jLink.joints {
			colOffset[k] = slot.jointIdx
		}
		jFull := buildJacobian(tipPose.Point(), cols, n, colOffset)
		g := mat.NewVecDense(3, []float64{gravity.X, gravity.Y, gravity.Z})
		var tau mat.VecDense
		linear := jFull.Dense().Slice(0, 3, 0, n)
		tau.MulVec(linear.T(), g)
		for k := 0; k < n; k++ {
			h[k] -= dm.masses[i] * tau.AtVec(k)
		}
	}
	return h, nil
}

// JointLimits implements RobotModel.
func (dm *DynamicModel) JointLimits() []referenceframe.Limit { return dm.limits }

// JointNames implements RobotModel.
func (dm *DynamicModel) JointNames() []string { return dm.jointNames }

// ActuatedJointNames implements RobotModel: the floating-base joints (if any) are never actuated.
func (dm *DynamicModel) ActuatedJointNames() []string {
	if len(dm.cfg.ActuatedJoints) > 0 {
		return dm.cfg.ActuatedJoints
	}
	if !dm.cfg.FloatingBase {
		return dm.jointNames
	}
	return dm.jointNames[6:]
}

// NoOfJoints implements RobotModel.
func (dm *DynamicModel) NoOfJoints() int { return len(dm.jointNames) }

// NoOfActuatedJoints implements RobotModel.
func (dm *DynamicModel) NoOfActuatedJoints() int { return len(dm.ActuatedJointNames()) }

// SelectionMatrix implements RobotModel.
func (dm *DynamicModel) SelectionMatrix() *mat.Dense {
	actuated := dm.ActuatedJointNames()
	s := mat.NewDense(len(actuated), len(dm.jointNames), nil)
	for row, name := range actuated {
		if col, ok := dm.jointIndexOf[name]; ok {
			s.Set(row, col, 1)
		}
	}
	return s
}

// HasLink implements RobotModel.
func (dm *DynamicModel) HasLink(name string) bool {
	for _, f := range dm.transforms() {
		if f.Name() == name {
			return true
		}
	}
	return name == dm.baseFrameName()
}

// HasJoint implements RobotModel.
func (dm *DynamicModel) HasJoint(name string) bool {
	_, ok := dm.jointIndexOf[name]
	return ok
}

// JointIndex implements RobotModel.
func (dm *DynamicModel) JointIndex(name string) (int, bool) {
	idx, ok := dm.jointIndexOf[name]
	return idx, ok
}

// CenterOfMass implements RobotModel as the mass-weighted average of every lumped point mass.
func (dm *DynamicModel) CenterOfMass() (referenceframe.RigidBodyStateSE3, error) {
	positions, _, ts, err := dm.snapshot()
	if err != nil {
		return referenceframe.RigidBodyStateSE3{}, err
	}
	root := dm.baseFrameName()
	var totalMass float64
	var weighted r3.Vector
	for i, name := range dm.jointNames {
		if dm.masses[i] == 0 {
			continue
		}
		c, err := dm.chainFor(root, name)
		if err != nil {
			continue
		}
		pose := c.pose(positions)
		weighted = weighted.Add(pose.Point().Mul(dm.masses[i]))
		totalMass += dm.masses[i]
	}
	state := referenceframe.NewRigidBodyStateSE3("com", root)
	if totalMass > 0 {
		state.Pose = spatialmath.NewPose(weighted.Mul(1/totalMass), spatialmath.NewOrientationVector())
	}
	state.Timestamp = ts
	return state, nil
}
