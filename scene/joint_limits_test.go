package scene

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/wbc/referenceframe"
)

func TestVelocityLimitPolicyBoundsNarrowsNearLimit(t *testing.T) {
	p := VelocityLimitPolicy{MaxSpeed: 2, Dt: 0.1}
	limits := []referenceframe.Limit{{Min: -1, Max: 1}}

	// far from either limit: the speed cap alone governs.
	lower, upper := p.Bounds([]float64{0}, limits)
	test.That(t, lower[0], test.ShouldAlmostEqual, -2.0)
	test.That(t, upper[0], test.ShouldAlmostEqual, 2.0)

	// 0.05 rad from the upper limit with Dt=0.1s: ub = (1-0.95)/0.1 = 0.5, well under the speed cap.
	lower, upper = p.Bounds([]float64{0.95}, limits)
	test.That(t, lower[0], test.ShouldAlmostEqual, -2.0)
	test.That(t, upper[0], test.ShouldAlmostEqual, 0.5)
}

func TestVelocityLimitPolicyBoundsPastLimitCollapses(t *testing.T) {
	p := VelocityLimitPolicy{MaxSpeed: 2, Dt: 0.1}
	limits := []referenceframe.Limit{{Min: -1, Max: 1}}

	// already past the limit: the box must not invert.
	lower, upper := p.Bounds([]float64{1.5}, limits)
	test.That(t, lower[0], test.ShouldBeLessThanOrEqualTo, upper[0])
}

func TestAccelerationLimitPolicyBoundsRespectsVelocityMargin(t *testing.T) {
	p := AccelerationLimitPolicy{MaxAccel: 100, MaxSpeed: 1, Dt: 0.1}
	limits := []referenceframe.Limit{{Min: -10, Max: 10}}

	// velocity already at the cap: accelerating further that direction must be blocked.
	lower, upper := p.Bounds([]float64{0}, []float64{1}, limits)
	test.That(t, upper[0], test.ShouldAlmostEqual, 0.0)
	test.That(t, lower[0], test.ShouldBeLessThan, 0.0)
}

func TestAccelerationLimitPolicyBoundsNeverInverts(t *testing.T) {
	p := AccelerationLimitPolicy{MaxAccel: 100, MaxSpeed: 50, Dt: 0.1}
	limits := []referenceframe.Limit{{Min: -1, Max: 1}}

	lower, upper := p.Bounds([]float64{0.99}, []float64{10}, limits)
	test.That(t, lower[0], test.ShouldBeLessThanOrEqualTo, upper[0])
}
