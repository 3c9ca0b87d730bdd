package scene

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/wbc/kinematics"
	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/solver"
	"go.viam.com/wbc/spatialmath"
)

// DefaultControlPeriod is the Δt used to convert a remaining position margin into a velocity (or
// acceleration) bound when the caller hasn't set one explicitly, per spec.md §4.5. 10ms matches the
// control rate named in spec.md's seed scenarios.
const DefaultControlPeriod = 10 * time.Millisecond

// DefaultMaxJointSpeed bounds every joint's velocity absent a more specific policy; resolves the
// open question of what speed cap a VelocityScene should assume when none is configured.
const DefaultMaxJointSpeed = 2.0 // rad/s

// VelocityScene is the kinematics-only scene: its decision variable is the joint velocity vector
// q̇, and every constraint's A row maps directly from q̇ to either a joint rate or a Cartesian
// twist component via the model's space Jacobian. Grounded in original_source's
// python/scenes.hpp WbcVelocityScene.
type VelocityScene struct {
	*sceneCore
	velocityLimits VelocityLimitPolicy
}

// NewVelocityScene builds a VelocityScene over an already-updated model.
func NewVelocityScene(model kinematics.RobotModel) *VelocityScene {
	return &VelocityScene{
		sceneCore: newSceneCore(model),
		velocityLimits: VelocityLimitPolicy{
			MaxSpeed: DefaultMaxJointSpeed,
			Dt:       DefaultControlPeriod.Seconds(),
		},
	}
}

// SetVelocityLimitPolicy overrides the speed cap and Δt used to derive this cycle's velocity box
// bounds from the model's position limits.
func (s *VelocityScene) SetVelocityLimitPolicy(p VelocityLimitPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.velocityLimits = p
}

// Configure implements Scene.
func (s *VelocityScene) Configure(constraints []ConstraintConfig) error {
	return s.configure(constraints)
}

// SetJointReference implements Scene.
func (s *VelocityScene) SetJointReference(name string, ref JointReference) error {
	return s.setJointReference(name, ref)
}

// SetCartesianReference implements Scene.
func (s *VelocityScene) SetCartesianReference(name string, ref CartesianReference) error {
	return s.setCartesianReference(name, ref)
}

// SetJointWeights implements Scene.
func (s *VelocityScene) SetJointWeights(name string, weights []float64) error {
	return s.setJointWeights(name, weights)
}

// GetJointWeights implements Scene.
func (s *VelocityScene) GetJointWeights(name string) ([]float64, error) {
	return s.getJointWeights(name)
}

// SetRegularizationWeights implements Scene.
func (s *VelocityScene) SetRegularizationWeights(weights *referenceframe.NamedVector[float64]) error {
	return s.setRegularizationWeights(weights)
}

// GetRegularizationWeights implements Scene.
func (s *VelocityScene) GetRegularizationWeights() *referenceframe.NamedVector[float64] {
	return s.getRegularizationWeights()
}

// UpdateConstraintsStatus implements Scene.
func (s *VelocityScene) UpdateConstraintsStatus() *referenceframe.NamedVector[ConstraintStatus] {
	return s.status(s.latestTimestamp())
}

// Solve implements Scene.
func (s *VelocityScene) Solve(hqp solver.HierarchicalQP, slv solver.Solver) (*referenceframe.NamedVector[referenceframe.JointState], error) {
	return s.solveOut(hqp, slv)
}

func (s *VelocityScene) latestTimestamp() referenceframe.Timestamp {
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

// Update implements Scene: builds one SubQP per distinct priority level, with every constraint at
// that priority contributing its rows.
func (s *VelocityScene) Update() (solver.HierarchicalQP, error) {
	if !s.configured {
		return solver.HierarchicalQP{}, ErrNotConfigured
	}
	now := s.latestTimestamp()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.names {
		ct := s.byName[name]
		if err := s.fillConstraintRows(ct); err != nil {
			return solver.HierarchicalQP{}, err
		}
	}

	hqp := solver.HierarchicalQP{
		NumVars: s.nJoints,
	}
	limits := s.model.JointLimits()
	positions, err := s.model.JointState(s.jointNames)
	if err != nil {
		return solver.HierarchicalQP{}, err
	}
	q := make([]float64, s.nJoints)
	for i, v := range positions.Values {
		q[i] = v.Position
	}
	hqp.LowerBound, hqp.UpperBound = s.velocityLimits.Bounds(q, limits)

	for _, p := range s.priorities {
		sub := solver.SubQP{Priority: p}
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
		a := mat.NewDense(len(rowsA), s.nJoints, nil)
		for i, row := range rowsA {
			for j, v := range row {
				a.Set(i, j, v)
			}
		}
		sub.A = a
		sub.Y = rowsY
		sub.Weights = rowsW
		hqp.SubQPs = append(hqp.SubQPs, sub)
	}
	hqp.SubQPs = append(hqp.SubQPs, s.regularizationSubQP(s.nJoints))
	return hqp, nil
}

// fillConstraintRows populates ct.a and ct.y for the current cycle from the model's current state.
func (s *VelocityScene) fillConstraintRows(ct *constraint) error {
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
					ct.y[i] = v.Speed
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
		t := ct.cartesianRef.State
		lin, ang := t.TwistLinear, t.TwistAngular
		if ct.cfg.RefFrame == TipRefFrame {
			tipState, err := s.model.RigidBodyState(ct.cfg.Root, ct.cfg.Tip)
			if err != nil {
				return err
			}
			lin = spatialmath.RotateVector(tipState.Pose.Orientation(), lin)
			ang = spatialmath.RotateVector(tipState.Pose.Orientation(), ang)
		}
		ct.y[0], ct.y[1], ct.y[2] = lin.X, lin.Y, lin.Z
		ct.y[3], ct.y[4], ct.y[5] = ang.X, ang.Y, ang.Z
	}
	return nil
}
