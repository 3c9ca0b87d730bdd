package solver

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func boundedHQP(nVars int, lo, hi []float64, task SubQP) HierarchicalQP {
	return HierarchicalQP{NumVars: nVars, LowerBound: lo, UpperBound: hi, SubQPs: []SubQP{task}}
}

func TestBoundedQPSolverUnconstrainedMatchesTarget(t *testing.T) {
	s := NewBoundedQPSolver()
	test.That(t, s.Configure(nil, 2), test.ShouldBeNil)

	task := SubQP{Priority: 0, A: mat.NewDense(2, 2, []float64{1, 0, 0, 1}), Y: []float64{0.3, -0.2}, Weights: []float64{1, 1}}
	hqp := boundedHQP(2, []float64{-1, -1}, []float64{1, 1}, task)
	out := make([]float64, 2)
	test.That(t, s.Solve(hqp, out), test.ShouldBeNil)
	test.That(t, out[0], test.ShouldAlmostEqual, 0.3)
	test.That(t, out[1], test.ShouldAlmostEqual, -0.2)
}

func TestBoundedQPSolverClampsToBounds(t *testing.T) {
	s := NewBoundedQPSolver()
	test.That(t, s.Configure(nil, 1), test.ShouldBeNil)

	task := SubQP{Priority: 0, A: mat.NewDense(1, 1, []float64{1}), Y: []float64{10}, Weights: []float64{1}}
	hqp := boundedHQP(1, []float64{-1}, []float64{1}, task)
	out := make([]float64, 1)
	test.That(t, s.Solve(hqp, out), test.ShouldBeNil)
	test.That(t, out[0], test.ShouldAlmostEqual, 1.0)
}

func TestBoundedQPSolverRejectsInfeasibleBounds(t *testing.T) {
	s := NewBoundedQPSolver()
	test.That(t, s.Configure(nil, 1), test.ShouldBeNil)

	task := SubQP{Priority: 0, A: mat.NewDense(1, 1, []float64{1}), Y: []float64{0}, Weights: []float64{1}}
	hqp := boundedHQP(1, []float64{1}, []float64{-1}, task)
	out := make([]float64, 1)
	err := s.Solve(hqp, out)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBoundedQPSolverEmptyHQPReturnsZero(t *testing.T) {
	s := NewBoundedQPSolver()
	test.That(t, s.Configure(nil, 2), test.ShouldBeNil)

	hqp := HierarchicalQP{NumVars: 2, LowerBound: []float64{-1, -1}, UpperBound: []float64{1, 1}}
	out := make([]float64, 2)
	test.That(t, s.Solve(hqp, out), test.ShouldBeNil)
	test.That(t, out[0], test.ShouldAlmostEqual, 0.0)
	test.That(t, out[1], test.ShouldAlmostEqual, 0.0)
}
