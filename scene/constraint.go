// Package scene assembles per-cycle hierarchical QPs from declarative constraint configurations and
// live references, against a kinematics.RobotModel. Grounded in original_source's SubTaskConfig.hpp,
// KinematicConstraintKDL.hpp, and python/scenes.hpp (WbcVelocityScene / AccelerationSceneTSID).
package scene

import (
	"time"

	"go.viam.com/wbc/referenceframe"
)

// TaskType distinguishes a joint-space constraint from a Cartesian one.
type TaskType int

const (
	// JointTask controls a named subset of joints directly.
	JointTask TaskType = iota
	// CartesianTask controls the pose/twist of a tip frame relative to a root frame.
	CartesianTask
)

// RefFrame selects which frame a Cartesian constraint's reference is expressed in.
type RefFrame int

const (
	// RootRefFrame means the reference is already expressed in the root frame.
	RootRefFrame RefFrame = iota
	// TipRefFrame means the reference must be converted from the tip frame into the root frame
	// using the current pose before use.
	TipRefFrame
)

// ConstraintConfig is the declarative, one-shot description of a single task, grounded in
// original_source's SubTaskConfig.
type ConstraintConfig struct {
	Name       string
	Type       TaskType
	Priority   int
	Activation float64
	Weights    []float64

	// Cartesian-only fields.
	Root     string
	Tip      string
	RefFrame RefFrame

	// Joint-only fields.
	JointNames []string
}

func (cfg ConstraintConfig) taskDim() int {
	if cfg.Type == CartesianTask {
		return 6
	}
	return len(cfg.JointNames)
}

func (cfg ConstraintConfig) validate() error {
	if cfg.Name == "" {
		return NewConfigError("constraint name must not be empty")
	}
	if cfg.Priority < 0 {
		return NewConfigError("constraint " + cfg.Name + ": priority must be non-negative")
	}
	if cfg.Activation < 0 || cfg.Activation > 1 {
		return NewConfigError("constraint " + cfg.Name + ": activation must be in [0,1]")
	}
	if cfg.Type == CartesianTask {
		if cfg.Root == "" || cfg.Tip == "" {
			return NewConfigError("constraint " + cfg.Name + ": cartesian task needs root and tip")
		}
	} else if len(cfg.JointNames) == 0 {
		return NewConfigError("constraint " + cfg.Name + ": joint task needs joint_names")
	}
	if len(cfg.Weights) != cfg.taskDim() {
		return NewConfigError("constraint " + cfg.Name + ": weights length must match task dimension")
	}
	return nil
}

// JointReference is a setReference payload for a joint-space constraint.
type JointReference struct {
	Values    *referenceframe.NamedVector[referenceframe.JointState]
	Timestamp referenceframe.Timestamp
}

// CartesianReference is a setReference payload for a Cartesian constraint.
type CartesianReference struct {
	State referenceframe.RigidBodyStateSE3
}

// ConstraintStatus is the post-solve diagnostic snapshot for one constraint.
type ConstraintStatus struct {
	Name           string
	YRef           []float64
	YSolution      []float64
	Activation     float64
	Weights        []float64
	LastUpdate     referenceframe.Timestamp
	TimeSinceNanos int64
	Stale          bool
}

// DefaultReferenceTimeout resolves the open question ("per-constraint reference-staleness timeout
// is referenced by diagnostics but not defaulted") to 500ms: long enough to absorb one dropped
// cycle at typical 10-50ms control rates, short enough that a genuinely stalled reference source
// gates out well within a human-perceptible control hiccup.
const DefaultReferenceTimeout = 500 * time.Millisecond

// constraint is the runtime realization of a ConstraintConfig: the config, plus everything that
// changes every cycle.
type constraint struct {
	cfg ConstraintConfig

	jointRef     JointReference
	cartesianRef CartesianReference
	hasRef       bool
	refTimestamp referenceframe.Timestamp

	a       [][]float64 // taskDim x nJoints, row-major as slices
	y       []float64
	weights []float64 // effective weights this cycle

	lastSolution []float64
}

func newConstraint(cfg ConstraintConfig, nJoints int) *constraint {
	a := make([][]float64, cfg.taskDim())
	for i := range a {
		a[i] = make([]float64, nJoints)
	}
	weights := make([]float64, cfg.taskDim())
	copy(weights, cfg.Weights)
	return &constraint{
		cfg:     cfg,
		a:       a,
		y:       make([]float64, cfg.taskDim()),
		weights: weights,
	}
}

// effectiveActivation applies the reference-staleness timeout: activation collapses to 0 once the
// last reference is older than timeout, or if no reference has ever been set.
func (c *constraint) effectiveActivation(now referenceframe.Timestamp, timeout time.Duration) float64 {
	if !c.hasRef {
		return 0
	}
	if c.refTimestamp.IsNull() {
		return 0
	}
	if now.IsNull() {
		return c.cfg.Activation
	}
	ageNanos := now.Nanos() - c.refTimestamp.Nanos()
	if ageNanos > timeout.Nanoseconds() {
		return 0
	}
	return c.cfg.Activation
}
