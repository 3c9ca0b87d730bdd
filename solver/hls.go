package solver

import (
	"gonum.org/v1/gonum/mat"
)

// DefaultDamping and DefaultSingularValueThreshold are the conservative defaults chosen to resolve
// the open question in SPEC_FULL.md/spec.md §9 ("exact damping and singular-value thresholds... are
// configurable but defaults are not explicit").
const (
	DefaultDamping                 = 1e-6
	DefaultSingularValueThreshold = 1e-9
)

// HierarchicalLeastSquaresSolver solves a HierarchicalQP level by level: at each priority, it
// minimizes ‖W(Ax-y)‖² subject to the solution staying in the null space of every higher-priority
// level, using a damped SVD pseudo-inverse to stay bounded near singularities. Grounded in
// spec.md §4.4 and original_source's HierarchicalLSSolver.
type HierarchicalLeastSquaresSolver struct {
	// Damping is added to the denominator of every singular value before inversion; zero means a
	// pure pseudo-inverse.
	Damping float64
	// SingularValueThreshold below which a singular value is treated as zero even with damping
	// applied, to avoid amplifying near-null directions.
	SingularValueThreshold float64

	nVars      int
	configured bool
}

// NewHierarchicalLeastSquaresSolver builds a solver with the package's conservative defaults.
func NewHierarchicalLeastSquaresSolver() *HierarchicalLeastSquaresSolver {
	return &HierarchicalLeastSquaresSolver{
		Damping:                DefaultDamping,
		SingularValueThreshold: DefaultSingularValueThreshold,
	}
}

// Configure implements Solver.
func (s *HierarchicalLeastSquaresSolver) Configure(_ []int, nJoints int) error {
	s.nVars = nJoints
	s.configured = true
	return nil
}

// Solve implements Solver.
func (s *HierarchicalLeastSquaresSolver) Solve(hqp HierarchicalQP, out []float64) error {
	if !s.configured {
		return ErrNotConfigured
	}
	if hqp.NumVars != s.nVars || len(out) != s.nVars {
		return NewNumericFailureError("output vector size does not match configured joint count")
	}

	x := mat.NewVecDense(s.nVars, nil) // current solution
	n := mat.NewDense(s.nVars, s.nVars, nil)
	for i := 0; i < s.nVars; i++ {
		n.Set(i, i, 1) // null-space projector, starts as identity
	}

	for _, level := range hqp.SubQPs {
		if len(level.Y) == 0 {
			continue
		}
		taskDim := len(level.Y)

		// Apply the current null-space projector: we solve for a correction dx = N*z that doesn't
		// disturb higher-priority levels, i.e. minimize ‖W(A*(x+N*z) - y)‖² over z.
		var an mat.Dense
		an.Mul(level.A, n)

		residual := mat.NewVecDense(taskDim, nil)
		var ax mat.VecDense
		ax.MulVec(level.A, x)
		for i := 0; i < taskDim; i++ {
			residual.SetVec(i, level.Y[i]-ax.AtVec(i))
		}

		weighted := weightRows(&an, level.Weights)
		weightedResidual := mat.NewVecDense(taskDim, nil)
		for i := 0; i < taskDim; i++ {
			weightedResidual.SetVec(i, level.Weights[i]*residual.AtVec(i))
		}

		z, err := s.dampedPseudoInverseSolve(weighted, weightedResidual)
		if err != nil {
			return err
		}

		var dx mat.VecDense
		dx.MulVec(n, z)
		x.AddVec(x, &dx)

		// Update the null-space projector: project out the row space of (weighted A*N) so lower
		// priorities cannot perturb this level's satisfied residual.
		nextN, err := s.updateNullSpace(n, weighted)
		if err != nil {
			return err
		}
		n = nextN
	}

	clampToBounds(x, hqp.LowerBound, hqp.UpperBound)

	for i := 0; i < s.nVars; i++ {
		out[i] = x.AtVec(i)
	}
	return nil
}

// clampToBounds enforces hqp's box bounds on the solved vector in place. This solver is otherwise
// unconstrained (a pure least-squares/null-space solve per priority, spec.md §4.4); per Testable
// Property 7 / Seed Scenario S6, bounds are still enforced unconditionally via a direct clamp rather
// than being folded into the least-squares solve itself.
func clampToBounds(x *mat.VecDense, lower, upper []float64) {
	n := x.Len()
	for i := 0; i < n; i++ {
		v := x.AtVec(i)
		if i < len(lower) && v < lower[i] {
			v = lower[i]
		}
		if i < len(upper) && v > upper[i] {
			v = upper[i]
		}
		x.SetVec(i, v)
	}
}

func weightRows(m *mat.Dense, weights []float64) *mat.Dense {
	r, c := m.Dims()
	w := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			w.Set(i, j, weights[i]*m.At(i, j))
		}
	}
	return w
}

// dampedPseudoInverseSolve solves min ‖A*z - y‖² for z via SVD with Tikhonov damping: z = V *
// diag(s/(s²+damping²)) * U^T * y, treating singular values below SingularValueThreshold as zero.
func (s *HierarchicalLeastSquaresSolver) dampedPseudoInverseSolve(a *mat.Dense, y *mat.VecDense) (*mat.VecDense, error) {
	_, c := a.Dims()
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, NewNumericFailureError("SVD factorization failed")
	}
	values := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	uty := mat.NewVecDense(len(values), nil)
	uty.MulVec(u.T(), y)

	scaled := mat.NewVecDense(len(values), nil)
	for i, sv := range values {
		if sv < s.SingularValueThreshold {
			scaled.SetVec(i, 0)
			continue
		}
		scaled.SetVec(i, sv/(sv*sv+s.Damping*s.Damping)*uty.AtVec(i))
	}

	z := mat.NewVecDense(c, nil)
	z.MulVec(&v, scaled)
	return z, nil
}

// updateNullSpace returns N' = N - N * A^T * pinv(A*A^T) * A * N restricted to the row space of the
// weighted task, i.e. the orthogonal projector onto ker(weighted), composed with the prior N.
func (s *HierarchicalLeastSquaresSolver) updateNullSpace(n *mat.Dense, weighted *mat.Dense) (*mat.Dense, error) {
	r, c := weighted.Dims()
	if r == 0 {
		return n, nil
	}

	var svd mat.SVD
	if !svd.Factorize(weighted, mat.SVDFull) {
		return nil, NewNumericFailureError("SVD factorization failed while updating null space")
	}
	values := svd.Values(nil)

	var v mat.Dense
	svd.VTo(&v)

	rank := 0
	for _, sv := range values {
		if sv >= s.SingularValueThreshold {
			rank++
		}
	}

	// rowSpaceProjector = V[:, :rank] * V[:, :rank]^T
	vr := v.Slice(0, c, 0, rank)
	var rowSpace mat.Dense
	rowSpace.Mul(vr, vr.T())

	nullProjector := mat.NewDense(c, c, nil)
	for i := 0; i < c; i++ {
		nullProjector.Set(i, i, 1)
	}
	nullProjector.Sub(nullProjector, &rowSpace)

	var next mat.Dense
	next.Mul(n, nullProjector)
	return &next, nil
}
