package scene

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wbc/kinematics"
	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/solver"
	"go.viam.com/wbc/spatialmath"
)

// AccelerationScene is the full task-space inverse dynamics (TSID) scene: its decision vector
// stacks joint acceleration q̈, actuator torque τ, and per-contact-point reaction force λ, and its
// highest-priority sub-QP is the rigid-body dynamics equality H·q̈ + h - S^T·τ - Jc^T·λ = 0 plus
// the no-slip contact constraint Jc·q̈ + J̇c·q̇ = 0. Grounded in original_source's python/scenes.hpp
// AccelerationSceneTSID.
type AccelerationScene struct {
	*sceneCore
	worldFrame    string
	contactPoints []string

	nActuated int
	nContacts int
	nVars     int // nJoints + nActuated + 3*nContacts

	accelerationLimits AccelerationLimitPolicy

	lastTorques       []float64
	lastContactForces []float64
}

// DefaultMaxJointAccel bounds every joint's acceleration absent a more specific policy; resolves
// the open question of what accel cap an AccelerationScene should assume when none is configured.
const DefaultMaxJointAccel = 10.0 // rad/s^2

// DefaultActuatorBound is the torque/contact-force box bound used when no tighter hardware limit is
// known; wide enough not to bind in practice, narrow enough to keep the solver's bounded variant
// well-posed.
const DefaultActuatorBound = 1e4

// NewAccelerationScene builds an AccelerationScene over an already-updated dynamics model.
// worldFrame is the root frame every contact-point Jacobian is computed against; contactPoints
// names the frames treated as rigid ground contacts this cycle.
func NewAccelerationScene(model kinematics.RobotModel, worldFrame string, contactPoints []string) *AccelerationScene {
	core := newSceneCore(model)
	nActuated := model.NoOfActuatedJoints()
	nContacts := len(contactPoints)
	return &AccelerationScene{
		sceneCore:     core,
		worldFrame:    worldFrame,
		contactPoints: contactPoints,
		nActuated:     nActuated,
		nContacts:     nContacts,
		nVars:         core.nJoints + nActuated + 3*nContacts,
		accelerationLimits: AccelerationLimitPolicy{
			MaxAccel: DefaultMaxJointAccel,
			MaxSpeed: DefaultMaxJointSpeed,
			Dt:       DefaultControlPeriod.Seconds(),
		},
	}
}

// Configure implements Scene.
func (s *AccelerationScene) Configure(constraints []ConstraintConfig) error {
	return s.configure(constraints)
}

// SetJointReference implements Scene.
func (s *AccelerationScene) SetJointReference(name string, ref JointReference) error {
	return s.setJointReference(name, ref)
}

// SetCartesianReference implements Scene.
func (s *AccelerationScene) SetCartesianReference(name string, ref CartesianReference) error {
	return s.setCartesianReference(name, ref)
}

// SetJointWeights implements Scene.
func (s *AccelerationScene) SetJointWeights(name string, weights []float64) error {
	return s.setJointWeights(name, weights)
}

// GetJointWeights implements Scene.
func (s *AccelerationScene) GetJointWeights(name string) ([]float64, error) {
	return s.getJointWeights(name)
}

// SetRegularizationWeights implements Scene.
func (s *AccelerationScene) SetRegularizationWeights(weights *referenceframe.NamedVector[float64]) error {
	return s.setRegularizationWeights(weights)
}

// GetRegularizationWeights implements Scene.
func (s *AccelerationScene) GetRegularizationWeights() *referenceframe.NamedVector[float64] {
	return s.getRegularizationWeights()
}

// SetAccelerationLimitPolicy overrides the acceleration/speed caps and Δt used to derive this cycle's
// acceleration box bounds.
func (s *AccelerationScene) SetAccelerationLimitPolicy(p AccelerationLimitPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accelerationLimits = p
}

// UpdateConstraintsStatus implements Scene.
func (s *AccelerationScene) UpdateConstraintsStatus() *referenceframe.NamedVector[ConstraintStatus] {
	return s.status(s.latestTimestamp())
}

func (s *AccelerationScene) latestTimestamp() referenceframe.Timestamp {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest referenceframe.Timestamp
	for _, name := range s.names {
		ct := s.byName[name]
		if latest.Before(ct.refTimestamp) {
			latest = ct.refTimestamp
		}
	}
	return latest
}

// Solve implements Scene. The solved decision vector's leading nJoints entries are q̈; Solve
// reports those as JointState.Acceleration, and separately exposes τ via LastTorques for callers
// that need it (the actuator command path, not the Scene interface's joint-state contract).
func (s *AccelerationScene) Solve(hqp solver.HierarchicalQP, slv solver.Solver) (*referenceframe.NamedVector[referenceframe.JointState], error) {
	out := make([]float64, hqp.NumVars)
	if err := slv.Solve(hqp, out); err != nil {
		return nil, err
	}
	s.lastTorques = out[s.nJoints : s.nJoints+s.nActuated]
	s.lastContactForces = out[s.nJoints+s.nActuated:]

	states := make([]referenceframe.JointState, len(s.jointNames))
	for i := range s.jointNames {
		states[i] = referenceframe.JointState{Acceleration: out[i]}
	}
	return referenceframe.NewNamedVector(s.jointNames, states), nil
}

// LastTorques returns the actuator torque block of the most recent Solve call.
func (s *AccelerationScene) LastTorques() []float64 { return s.lastTorques }

// LastContactForces returns the stacked per-contact-point reaction force block (3 components each,
// in contactPoints order) of the most recent Solve call.
func (s *AccelerationScene) LastContactForces() []float64 { return s.lastContactForces }

// Update implements Scene: assembles the dynamics+contact equality as the priority-0 SubQP (solved
// before every configured constraint, whose priorities named in Configure are each shifted up by
// one), then one SubQP per configured constraint priority level mapping onto the q̈ block of the
// decision vector.
func (s *AccelerationScene) Update() (solver.HierarchicalQP, error) {
	if !s.configured {
		return solver.HierarchicalQP{}, ErrNotConfigured
	}
	now := s.latestTimestamp()

	h, err := s.model.JointSpaceInertiaMatrix()
	if err != nil {
		return solver.HierarchicalQP{}, err
	}
	bias, err := s.model.BiasForces()
	if err != nil {
		return solver.HierarchicalQP{}, err
	}
	selection := s.model.SelectionMatrix()

	contactJac := make([]*mat.Dense, s.nContacts)
	contactBias := make([][3]float64, s.nContacts)
	for i, cp := range s.contactPoints {
		jac, err := s.model.SpaceJacobian(s.worldFrame, cp)
		if err != nil {
			return solver.HierarchicalQP{}, err
		}
		contactJac[i] = jac.Linear()
		lin, _, err := s.model.SpatialAccelerationBias(s.worldFrame, cp)
		if err != nil {
			return solver.HierarchicalQP{}, err
		}
		contactBias[i] = [3]float64{lin.X, lin.Y, lin.Z}
	}

	// Dynamics equality: H*q̈ - S^T*τ - Jc^T*λ = -h, one row per joint.
	dynRows := s.nJoints
	// No-slip contact equality: Jc*q̈ = -J̇c*q̇ (no τ or λ dependence), 3 rows per contact point.
	contactRows := 3 * s.nContacts

	dynA := mat.NewDense(dynRows+contactRows, s.nVars, nil)
	dynY := make([]float64, dynRows+contactRows)
	dynW := make([]float64, dynRows+contactRows)

	torqueOffset := s.nJoints
	forceOffset := s.nJoints + s.nActuated

	for i := 0; i < dynRows; i++ {
		for j := 0; j < s.nJoints; j++ {
			dynA.Set(i, j, h.At(i, j))
		}
		for k := 0; k < s.nActuated; k++ {
			dynA.Set(i, torqueOffset+k, -selection.At(k, i))
		}
		for c := 0; c < s.nContacts; c++ {
			jac := contactJac[c]
			for row := 0; row < 3; row++ {
				dynA.Set(i, forceOffset+c*3+row, -jac.At(row, i))
			}
		}
		dynY[i] = -bias[i]
		dynW[i] = 1
	}

	for c := 0; c < s.nContacts; c++ {
		jac := contactJac[c]
		for row := 0; row < 3; row++ {
			r := dynRows + c*3 + row
			for j := 0; j < s.nJoints; j++ {
				dynA.Set(r, j, jac.At(row, j))
			}
			dynY[r] = -contactBias[c][row]
			dynW[r] = 1
		}
	}

	hqp := solver.HierarchicalQP{
		NumVars:    s.nVars,
		LowerBound: make([]float64, s.nVars),
		UpperBound: make([]float64, s.nVars),
	}
	limits := s.model.JointLimits()
	state, err := s.model.JointState(s.jointNames)
	if err != nil {
		return solver.HierarchicalQP{}, err
	}
	positions := make([]float64, s.nJoints)
	velocities := make([]float64, s.nJoints)
	for i, v := range state.Values {
		positions[i] = v.Position
		velocities[i] = v.Speed
	}
	accLower, accUpper := s.accelerationLimits.Bounds(positions, velocities, limits)
	copy(hqp.LowerBound[:s.nJoints], accLower)
	copy(hqp.UpperBound[:s.nJoints], accUpper)
	for i := s.nJoints; i < s.nVars; i++ {
		hqp.LowerBound[i] = -DefaultActuatorBound
		hqp.UpperBound[i] = DefaultActuatorBound
	}

	hqp.SubQPs = append(hqp.SubQPs, solver.SubQP{Priority: 0, A: dynA, Y: dynY, Weights: dynW})

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range s.names {
		ct := s.byName[name]
		if err := s.fillConstraintRows(ct); err != nil {
			return solver.HierarchicalQP{}, err
		}
	}
	for _, p := range s.priorities {
		sub := solver.SubQP{Priority: p + 1}
		var rowsA [][]float64
		var rowsY []float64
		var rowsW []float64
		for _, name := range s.names {
			ct := s.byName[name]
			if ct.cfg.Priority != p {
				continue
			}
			activation := ct.effectiveActivation(now, DefaultReferenceTimeout)
			for i := range ct.a {
				rowsA = append(rowsA, ct.a[i])
				rowsY = append(rowsY, ct.y[i])
				rowsW = append(rowsW, activation*ct.weights[i])
			}
		}
		a := mat.NewDense(len(rowsA), s.nVars, nil)
		for i, row := range rowsA {
			for j, v := range row {
				if j < s.nJoints {
					a.Set(i, j, v)
				}
			}
		}
		sub.A = a
		sub.Y = rowsY
		sub.Weights = rowsW
		hqp.SubQPs = append(hqp.SubQPs, sub)
	}
	hqp.SubQPs = append(hqp.SubQPs, s.regularizationSubQP(s.nVars))
	return hqp, nil
}

// fillConstraintRows populates ct.a (sized nJoints, the q̈ sub-block) and ct.y for the current
// cycle, identically to VelocityScene except the Cartesian reference supplies a desired
// acceleration rather than a twist.
func (s *AccelerationScene) fillConstraintRows(ct *constraint) error {
	if ct.cfg.Type == JointTask {
		for i, jn := range ct.cfg.JointNames {
			idx, ok := s.model.JointIndex(jn)
			if !ok {
				return NewUnknownJointError(jn)
			}
			for j := range ct.a[i] {
				ct.a[i][j] = 0
			}
			ct.a[i][idx] = 1
			if ct.hasRef {
				if v, ok := ct.jointRef.Values.Get(jn); ok {
					ct.y[i] = v.Acceleration
				}
			}
		}
		return nil
	}

	jac, err := s.model.SpaceJacobian(ct.cfg.Root, ct.cfg.Tip)
	if err != nil {
		return err
	}
	for i := 0; i < 6; i++ {
		for j := 0; j < s.nJoints; j++ {
			ct.a[i][j] = jac.At(i, j)
		}
	}
	if ct.hasRef {
		biasLin, biasAng, err := s.model.SpatialAccelerationBias(ct.cfg.Root, ct.cfg.Tip)
		if err != nil {
			return err
		}
		t := ct.cartesianRef.State
		accLin, accAng := t.AccLinear, t.AccAngular
		if ct.cfg.RefFrame == TipRefFrame {
			tipState, err := s.model.RigidBodyState(ct.cfg.Root, ct.cfg.Tip)
			if err != nil {
				return err
			}
			accLin = spatialmath.RotateVector(tipState.Pose.Orientation(), accLin)
			accAng = spatialmath.RotateVector(tipState.Pose.Orientation(), accAng)
		}
		// TSID task row is J*q̈ = a_ref - J̇*q̇ (spec.md §4.2/§4.3): subtract the frame pair's own
		// spatial acceleration bias from the raw reference before it becomes the row's y.
		ct.y[0] = accLin.X - biasLin.X
		ct.y[1] = accLin.Y - biasLin.Y
		ct.y[2] = accLin.Z - biasLin.Z
		ct.y[3] = accAng.X - biasAng.X
		ct.y[4] = accAng.Y - biasAng.Y
		ct.y[5] = accAng.Z - biasAng.Z
	}
	return nil
}
