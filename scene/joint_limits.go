package scene

import "go.viam.com/wbc/referenceframe"

// VelocityLimitPolicy derives velocity bounds for a VelocityScene from the model's position limits,
// current joint positions, and a common per-joint speed cap, per spec.md §4.5: `lb = max(v_min,
// (q_min-q)/Δt)`, `ub = min(v_max, (q_max-q)/Δt)`.
type VelocityLimitPolicy struct {
	MaxSpeed float64
	// Dt is the control-cycle period used to convert a remaining position margin into a velocity
	// bound. It must be positive; spec.md §4.5 describes Δt as "configurable."
	Dt float64
}

// Bounds returns position-aware velocity bounds for every joint: the speed cap narrowed by however
// much room remains before the joint's position limit is reached within one Dt.
func (p VelocityLimitPolicy) Bounds(positions []float64, limits []referenceframe.Limit) (lower, upper []float64) {
	n := len(positions)
	lower = make([]float64, n)
	upper = make([]float64, n)
	for i := range positions {
		lower[i] = -p.MaxSpeed
		upper[i] = p.MaxSpeed
		if i >= len(limits) || p.Dt <= 0 {
			continue
		}
		lim := limits[i]
		fromMin := (lim.Min - positions[i]) / p.Dt
		fromMax := (lim.Max - positions[i]) / p.Dt
		if fromMin > lower[i] {
			lower[i] = fromMin
		}
		if fromMax < upper[i] {
			upper[i] = fromMax
		}
		if upper[i] < lower[i] {
			// Already past the limit for this Dt; collapse to the midpoint of the two crossed
			// bounds rather than report an inverted (infeasible) box.
			mid := (lower[i] + upper[i]) / 2
			lower[i], upper[i] = mid, mid
		}
	}
	return lower, upper
}

// AccelerationLimitPolicy derives kinematically consistent acceleration bounds for an
// AccelerationScene: the acceleration is bounded not just by a fixed cap (MaxAccel), but by how
// much room remains in position and velocity before one Dt of integration would violate either
// limit. Grounded in spec.md §4.5 ("substitute the kinematically consistent acceleration bounds");
// no reference implementation of the exact formula exists in the retrieved pack, so the
// double-integration projection (the standard Del Prete-style construction used for viability-
// constrained acceleration bounds) is applied directly from first principles - see DESIGN.md.
type AccelerationLimitPolicy struct {
	MaxAccel float64
	MaxSpeed float64
	Dt       float64
}

// Bounds returns per-joint acceleration bounds given current position and velocity.
func (p AccelerationLimitPolicy) Bounds(positions, velocities []float64, limits []referenceframe.Limit) (lower, upper []float64) {
	n := len(positions)
	lower = make([]float64, n)
	upper = make([]float64, n)
	for i := range positions {
		lower[i] = -p.MaxAccel
		upper[i] = p.MaxAccel
		if p.Dt <= 0 {
			continue
		}
		// Velocity-limit-consistent bound: accelerating for one Dt must not exceed MaxSpeed.
		fromVMin := (-p.MaxSpeed - velocities[i]) / p.Dt
		fromVMax := (p.MaxSpeed - velocities[i]) / p.Dt
		if fromVMin > lower[i] {
			lower[i] = fromVMin
		}
		if fromVMax < upper[i] {
			upper[i] = fromVMax
		}
		if i >= len(limits) {
			continue
		}
		// Position-limit-consistent bound: the standard double-integration projection, i.e. the
		// constant acceleration that brings the position exactly to the limit after one Dt
		// (q + v*Δt + a*Δt²/2 = q_limit), 2*(q_limit - q - v*Δt)/Δt².
		lim := limits[i]
		fromQMin := 2 * (lim.Min - positions[i] - velocities[i]*p.Dt) / (p.Dt * p.Dt)
		fromQMax := 2 * (lim.Max - positions[i] - velocities[i]*p.Dt) / (p.Dt * p.Dt)
		if fromQMin > lower[i] {
			lower[i] = fromQMin
		}
		if fromQMax < upper[i] {
			upper[i] = fromQMax
		}
		if upper[i] < lower[i] {
			mid := (lower[i] + upper[i]) / 2
			lower[i], upper[i] = mid, mid
		}
	}
	return lower, upper
}

// ClampToPositionLimits returns a per-joint velocity scale in [0,1] that tapers toward zero as a
// joint's current position approaches either limit, within margin of the bound. A joint already at
// or past either limit gets scale 0; the scale is one value per joint and does not depend on the
// direction of motion.
func ClampToPositionLimits(positions []float64, limits []referenceframe.Limit, margin float64) []float64 {
	scale := make([]float64, len(positions))
	for i := range scale {
		scale[i] = 1
		if margin <= 0 || i >= len(limits) {
			continue
		}
		lim := limits[i]
		distToMax := lim.Max - positions[i]
		distToMin := positions[i] - lim.Min
		if distToMax < margin {
			if distToMax < 0 {
				scale[i] = 0
			} else {
				scale[i] = distToMax / margin
			}
		}
		if distToMin < margin {
			s := distToMin / margin
			if distToMin < 0 {
				s = 0
			}
			if s < scale[i] {
				scale[i] = s
			}
		}
	}
	return scale
}
