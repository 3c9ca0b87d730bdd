// Package solver implements the hierarchical QP representation and the two solver strategies that
// consume it: a hierarchical least-squares solver (kinematic, SVD-based) and a bounded QP solver
// (geometric priority weighting with box bounds), grounded in original_source's
// solvers/Solver.hpp, HierarchicalLSSolver, and QPOASESSolver.
package solver

import "gonum.org/v1/gonum/mat"

// SubQP is one priority level of a HierarchicalQP: an equality-flavored least-squares block
// (A, y, weights) plus the box bounds every level shares.
type SubQP struct {
	Priority int
	A        *mat.Dense // taskDim x nVars
	Y        []float64  // taskDim
	Weights  []float64  // taskDim, effective (activation * configured weight)
}

// HierarchicalQP is the ordered-by-priority (ascending, 0 = highest) list of sub-QPs produced by a
// scene each cycle, plus the box bounds shared by every level (per SPEC_FULL.md: "HQP as data, not
// control flow").
type HierarchicalQP struct {
	SubQPs     []SubQP
	LowerBound []float64 // nVars
	UpperBound []float64 // nVars
	NumVars    int
}

// Solver is the capability set a scene drives each cycle: configure once, then solve repeatedly.
// Grounded in original_source's solvers/Solver.hpp.
type Solver interface {
	// Configure records nJoints, the decision-vector size every Solve call checks against; it must
	// be called once before any Solve call and again whenever nJoints changes. The solvers in this
	// package ignore constraintsPerPriority and allocate their working matrices inside Solve.
	Configure(constraintsPerPriority []int, nJoints int) error
	// Solve solves hqp in lexicographic priority order and writes the result into out, which must
	// have length hqp.NumVars.
	Solve(hqp HierarchicalQP, out []float64) error
}
