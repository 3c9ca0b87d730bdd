package scene

import (
	"sort"
	"sync"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wbc/kinematics"
	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/solver"
)

// Scene turns a set of declarative ConstraintConfigs plus live references into a HierarchicalQP
// each cycle, and turns a solved HierarchicalQP back into named joint states. Grounded in
// original_source's python/scenes.hpp (WbcVelocityScene / AccelerationSceneTSID) via its Go
// realizations VelocityScene and AccelerationScene.
type Scene interface {
	// Configure installs the full set of constraints this scene will manage. It may be called only
	// once; reconfiguration requires a new Scene.
	Configure(constraints []ConstraintConfig) error

	// SetJointReference updates a joint-space constraint's reference for the next Update.
	SetJointReference(name string, ref JointReference) error
	// SetCartesianReference updates a cartesian constraint's reference for the next Update.
	SetCartesianReference(name string, ref CartesianReference) error

	// SetJointWeights overrides a constraint's per-row weights.
	SetJointWeights(name string, weights []float64) error
	// GetJointWeights reports a constraint's current effective per-row weights.
	GetJointWeights(name string) ([]float64, error)

	// SetRegularizationWeights overrides the scene-wide per-joint weights of the lowest-priority
	// regularization task (min ‖diag(w)·x‖², spec.md §4.5). Unlike SetJointWeights, this is a single
	// scene-wide vector indexed by joint name rather than per-constraint.
	SetRegularizationWeights(weights *referenceframe.NamedVector[float64]) error
	// GetRegularizationWeights reports the scene's current regularization weights, indexed by joint
	// name in model order.
	GetRegularizationWeights() *referenceframe.NamedVector[float64]

	// Update pulls current kinematics from the model and assembles a HierarchicalQP from every
	// configured constraint's latest reference.
	Update() (solver.HierarchicalQP, error)

	// Solve runs slv over hqp and packages the result as a NamedVector of per-joint commands.
	Solve(hqp solver.HierarchicalQP, slv solver.Solver) (*referenceframe.NamedVector[referenceframe.JointState], error)

	// UpdateConstraintsStatus reports, for every configured constraint, its last reference, weights,
	// activation, and staleness - a diagnostic snapshot independent of any particular solve.
	UpdateConstraintsStatus() *referenceframe.NamedVector[ConstraintStatus]
}

// sceneCore is the shared plumbing between VelocityScene and AccelerationScene: constraint
// bookkeeping, joint naming, and reference staleness - everything that doesn't depend on whether
// the decision variable is velocity or acceleration+torque+contact force.
type sceneCore struct {
	model      kinematics.RobotModel
	jointNames []string
	nJoints    int

	timeout refTimeout

	mu                    sync.Mutex
	configured            bool
	names                 []string // constraint names, in config order
	byName                map[string]*constraint
	priorities            []int // sorted distinct priority levels, ascending
	regularizationWeights []float64
}

// DefaultRegularizationWeight resolves the open question of how strongly the lowest-priority
// regularization task (spec.md §4.5) should bias the null space: small enough that it never
// competes with any configured constraint's task error, large enough to lift true rank
// deficiencies (e.g. an unconstrained wrist joint) off of zero.
const DefaultRegularizationWeight = 1e-3

type refTimeout struct {
	nanos int64
}

func newSceneCore(model kinematics.RobotModel) *sceneCore {
	nJoints := model.NoOfJoints()
	weights := make([]float64, nJoints)
	for i := range weights {
		weights[i] = DefaultRegularizationWeight
	}
	return &sceneCore{
		model:                 model,
		jointNames:            model.JointNames(),
		nJoints:               nJoints,
		timeout:               refTimeout{nanos: DefaultReferenceTimeout.Nanoseconds()},
		byName:                make(map[string]*constraint),
		regularizationWeights: weights,
	}
}

func (c *sceneCore) configure(constraints []ConstraintConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configured {
		return NewConfigError("scene already configured")
	}

	seenPriorities := make(map[int]bool)
	var errs error
	for _, cfg := range constraints {
		if err := cfg.validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, exists := c.byName[cfg.Name]; exists {
			errs = multierr.Append(errs, NewConfigError("duplicate constraint name: "+cfg.Name))
			continue
		}
		if cfg.Type == JointTask {
			for _, jn := range cfg.JointNames {
				if !contains(c.jointNames, jn) {
					errs = multierr.Append(errs, NewConfigError("constraint "+cfg.Name+": unknown joint "+jn))
				}
			}
		}
		c.byName[cfg.Name] = newConstraint(cfg, c.nJoints)
		c.names = append(c.names, cfg.Name)
		seenPriorities[cfg.Priority] = true
	}
	if errs != nil {
		return errs
	}

	for p := range seenPriorities {
		c.priorities = append(c.priorities, p)
	}
	sort.Ints(c.priorities)
	c.configured = true
	return nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func (c *sceneCore) setJointReference(name string, ref JointReference) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ct, ok := c.byName[name]
	if !ok {
		return NewUnknownConstraintError(name)
	}
	if ct.cfg.Type != JointTask {
		return ErrReferenceTypeMismatch
	}
	ct.jointRef = ref
	ct.hasRef = true
	ct.refTimestamp = ref.Timestamp
	return nil
}

func (c *sceneCore) setCartesianReference(name string, ref CartesianReference) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ct, ok := c.byName[name]
	if !ok {
		return NewUnknownConstraintError(name)
	}
	if ct.cfg.Type != CartesianTask {
		return ErrReferenceTypeMismatch
	}
	ct.cartesianRef = ref
	ct.hasRef = true
	ct.refTimestamp = ref.State.Timestamp
	return nil
}

func (c *sceneCore) setJointWeights(name string, weights []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ct, ok := c.byName[name]
	if !ok {
		return NewUnknownConstraintError(name)
	}
	if len(weights) != len(ct.weights) {
		return NewConfigError("constraint " + name + ": weight length mismatch")
	}
	copy(ct.weights, weights)
	return nil
}

func (c *sceneCore) getJointWeights(name string) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ct, ok := c.byName[name]
	if !ok {
		return nil, NewUnknownConstraintError(name)
	}
	out := make([]float64, len(ct.weights))
	copy(out, ct.weights)
	return out, nil
}

func (c *sceneCore) setRegularizationWeights(weights *referenceframe.NamedVector[float64]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, name := range weights.Names {
		idx := indexOf(c.jointNames, name)
		if idx < 0 {
			return NewUnknownJointError(name)
		}
		c.regularizationWeights[idx] = weights.Values[i]
	}
	return nil
}

func (c *sceneCore) getRegularizationWeights() *referenceframe.NamedVector[float64] {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := make([]float64, len(c.regularizationWeights))
	copy(values, c.regularizationWeights)
	return referenceframe.NewNamedVector(append([]string(nil), c.jointNames...), values)
}

// regularizationSubQP builds the lowest-priority identity task (min ‖diag(w)·x‖², spec.md §4.5)
// restricted to the first nJoints columns of an nVars-wide decision vector, so it regularizes the
// joint-velocity or joint-acceleration sub-block without touching torque or contact-force
// variables. It must be appended last to HierarchicalQP.SubQPs: HierarchicalLeastSquaresSolver
// orders sub-QPs by slice position, not by the Priority field, so there "priority +∞" just means
// "goes last"; BoundedQPSolver scales each block by PriorityWeightRatio^-Priority, so the maximal
// Priority value makes this the weakest block. Callers must already hold c.mu, the same as every
// other Update() helper.
func (c *sceneCore) regularizationSubQP(nVars int) solver.SubQP {
	a := mat.NewDense(c.nJoints, nVars, nil)
	for i := 0; i < c.nJoints; i++ {
		a.Set(i, i, 1)
	}
	return solver.SubQP{
		Priority: 1<<31 - 1,
		A:        a,
		Y:        make([]float64, c.nJoints),
		Weights:  append([]float64(nil), c.regularizationWeights...),
	}
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func (c *sceneCore) status(now referenceframe.Timestamp) *referenceframe.NamedVector[ConstraintStatus] {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := make([]ConstraintStatus, 0, len(c.names))
	for _, name := range c.names {
		ct := c.byName[name]
		activation := ct.effectiveActivation(now, DefaultReferenceTimeout)
		stale := ct.hasRef && activation == 0
		var sinceNanos int64
		if !ct.refTimestamp.IsNull() && !now.IsNull() {
			sinceNanos = now.Nanos() - ct.refTimestamp.Nanos()
		}
		yRef := make([]float64, len(ct.y))
		copy(yRef, ct.y)
		ySol := make([]float64, len(ct.lastSolution))
		copy(ySol, ct.lastSolution)
		weights := make([]float64, len(ct.weights))
		copy(weights, ct.weights)
		values = append(values, ConstraintStatus{
			Name:           name,
			YRef:           yRef,
			YSolution:      ySol,
			Activation:     activation,
			Weights:        weights,
			LastUpdate:     ct.refTimestamp,
			TimeSinceNanos: sinceNanos,
			Stale:          stale,
		})
	}
	return referenceframe.NewNamedVector(c.names, values)
}

// solveOut runs slv over hqp and repackages the flat joint-vector result as named JointStates,
// recording each constraint's achieved y = A*x into its status for the next UpdateConstraintsStatus
// call.
func (c *sceneCore) solveOut(hqp solver.HierarchicalQP, slv solver.Solver) (*referenceframe.NamedVector[referenceframe.JointState], error) {
	out := make([]float64, hqp.NumVars)
	if err := slv.Solve(hqp, out); err != nil {
		return nil, err
	}

	c.mu.Lock()
	for _, name := range c.names {
		ct := c.byName[name]
		taskDim := len(ct.y)
		if taskDim == 0 {
			continue
		}
		achieved := make([]float64, taskDim)
		for i := 0; i < taskDim; i++ {
			sum := 0.0
			row := ct.a[i]
			for j := 0; j < len(row) && j < len(out); j++ {
				sum += row[j] * out[j]
			}
			achieved[i] = sum
		}
		ct.lastSolution = achieved
	}
	c.mu.Unlock()

	states := make([]referenceframe.JointState, len(c.jointNames))
	for i := range c.jointNames {
		states[i] = referenceframe.JointState{Speed: out[i]}
	}
	return referenceframe.NewNamedVector(c.jointNames, states), nil
}
