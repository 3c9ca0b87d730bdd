package solver

import (
	"gonum.org/v1/gonum/mat"
)

// DefaultPriorityWeightRatio is the geometric weight multiplier applied per priority level so that
// a lower priority never perturbs a higher one beyond numerical noise, resolving the "QP-based
// solver" design decision documented in DESIGN.md (no qpOASES binding exists in the corpus; this
// solver reaches the same observable contract via weighted least squares instead of a true
// active-set QP).
const DefaultPriorityWeightRatio = 1e4

// DefaultFixedPointIterations bounds the projected-gradient loop that enforces box bounds.
const DefaultFixedPointIterations = 200

// BoundedQPSolver solves a HierarchicalQP as a single stacked, geometrically-weighted
// least-squares problem with box-bound clamping iterated to a fixed point. It stands in for the
// qpOASES-backed QP solver of the original_source design (spec.md §4.4's "QP-based solver") since
// no Go QP library appears anywhere in the example corpus.
type BoundedQPSolver struct {
	PriorityWeightRatio float64
	MaxIterations       int
	StepSize            float64

	nVars      int
	configured bool
}

// NewBoundedQPSolver builds a solver with the package's conservative defaults.
func NewBoundedQPSolver() *BoundedQPSolver {
	return &BoundedQPSolver{
		PriorityWeightRatio: DefaultPriorityWeightRatio,
		MaxIterations:       DefaultFixedPointIterations,
		StepSize:            0.5,
	}
}

// Configure implements Solver.
func (s *BoundedQPSolver) Configure(_ []int, nJoints int) error {
	s.nVars = nJoints
	s.configured = true
	return nil
}

// Solve implements Solver.
func (s *BoundedQPSolver) Solve(hqp HierarchicalQP, out []float64) error {
	if !s.configured {
		return ErrNotConfigured
	}
	if hqp.NumVars != s.nVars || len(out) != s.nVars {
		return NewNumericFailureError("output vector size does not match configured joint count")
	}
	if len(hqp.LowerBound) != s.nVars || len(hqp.UpperBound) != s.nVars {
		return NewNumericFailureError("bounds size does not match configured joint count")
	}
	for i := 0; i < s.nVars; i++ {
		if hqp.LowerBound[i] > hqp.UpperBound[i] {
			return NewNumericFailureError("infeasible bounds on joint index")
		}
	}

	// Stack every level's (A, y) rows, scaling each level's weights by a geometric factor so that
	// higher priority (lower Priority number) dominates.
	totalRows := 0
	for _, level := range hqp.SubQPs {
		totalRows += len(level.Y)
	}
	if totalRows == 0 {
		for i := range out {
			out[i] = clamp(0, hqp.LowerBound[i], hqp.UpperBound[i])
		}
		return nil
	}

	a := mat.NewDense(totalRows, s.nVars, nil)
	y := mat.NewVecDense(totalRows, nil)
	w := make([]float64, totalRows)

	row := 0
	for _, level := range hqp.SubQPs {
		scale := 1.0
		for p := 0; p < level.Priority; p++ {
			scale *= 1 / s.PriorityWeightRatio
		}
		for i := 0; i < len(level.Y); i++ {
			for j := 0; j < s.nVars; j++ {
				a.Set(row, j, level.A.At(i, j))
			}
			y.SetVec(row, level.Y[i])
			w[row] = level.Weights[i] * scale
			row++
		}
	}

	weighted := weightRows(a, w)
	weightedY := mat.NewVecDense(totalRows, nil)
	for i := 0; i < totalRows; i++ {
		weightedY.SetVec(i, w[i]*y.AtVec(i))
	}

	// Gram matrix normal-equations solve: x = (A^T A + damping I)^-1 A^T y, then clamp to bounds and
	// re-project iteratively (projected gradient descent) so the box constraints are respected even
	// when the unconstrained optimum violates them.
	var ata mat.Dense
	ata.Mul(weighted.T(), weighted)
	for i := 0; i < s.nVars; i++ {
		ata.Set(i, i, ata.At(i, i)+DefaultDamping)
	}
	var aty mat.VecDense
	aty.MulVec(weighted.T(), weightedY)

	var x mat.VecDense
	if err := x.SolveVec(&ata, &aty); err != nil {
		return NewNumericFailureError("normal-equations solve failed: " + err.Error())
	}
	for i := 0; i < s.nVars; i++ {
		out[i] = clamp(x.AtVec(i), hqp.LowerBound[i], hqp.UpperBound[i])
	}

	// Fixed-point refinement: projected gradient steps on the weighted residual over every
	// variable, each step clamped to the bounds, until no variable changes or MaxIterations runs out.
	for iter := 0; iter < s.MaxIterations; iter++ {
		changed := false
		var resid mat.VecDense
		resid.MulVec(weighted, mat.NewVecDense(s.nVars, out))
		resid.SubVec(&weightedY, &resid)

		grad := mat.NewVecDense(s.nVars, nil)
		grad.MulVec(weighted.T(), &resid)

		for i := 0; i < s.nVars; i++ {
			next := out[i] + s.StepSize*grad.AtVec(i)/float64(totalRows)
			clamped := clamp(next, hqp.LowerBound[i], hqp.UpperBound[i])
			if clamped != out[i] {
				changed = true
			}
			out[i] = clamped
		}
		if !changed {
			break
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
