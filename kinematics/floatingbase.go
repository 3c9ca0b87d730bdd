package kinematics

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/wbc/referenceframe"
)

// floatingBaseJointNames are the six synthetic joints prepended to the joint vector for a
// floating-base model, per the design note in SPEC_FULL.md: "floating base: 6 synthetic joints
// prepended to the joint vector, from external pose/twist/accel."
var floatingBaseJointNames = []string{"fb_x", "fb_y", "fb_z", "fb_rx", "fb_ry", "fb_rz"}

// floatingBaseFrames builds the six synthetic frames representing an unattached root link's pose:
// three prismatic translations, then three revolute rotations about the world X, Y, and Z axes
// (an XYZ Euler decomposition, which is sufficient to synthesize any orientation reachable by the
// external base-state feed driving these joints each cycle).
func floatingBaseFrames() []referenceframe.Frame {
	unbounded := referenceframe.Limit{Min: -1e9, Max: 1e9}
	return []referenceframe.Frame{
		referenceframe.NewPrismaticFrame("fb_x", r3.Vector{X: 1}, unbounded),
		referenceframe.NewPrismaticFrame("fb_y", r3.Vector{Y: 1}, unbounded),
		referenceframe.NewPrismaticFrame("fb_z", r3.Vector{Z: 1}, unbounded),
		referenceframe.NewRevoluteFrame("fb_rx", r3.Vector{X: 1}, unbounded),
		referenceframe.NewRevoluteFrame("fb_ry", r3.Vector{Y: 1}, unbounded),
		referenceframe.NewRevoluteFrame("fb_rz", r3.Vector{Z: 1}, unbounded),
	}
}

// floatingBaseInputs converts a base rigid-body state into the six synthetic joint positions that
// reproduce it through floatingBaseFrames, using the orientation vector's Theta-about-Z-then-lat/
// lon decomposition is avoided in favor of extracting XYZ Euler angles directly from the rotation
// matrix, since the synthetic chain is itself an XYZ Euler chain.
func floatingBaseInputs(base referenceframe.RigidBodyStateSE3) []float64 {
	rm := base.Pose.Orientation().RotationMatrix()
	// XYZ extrinsic Euler angles from a rotation matrix built as Rz*Ry*Rx is not what
	// floatingBaseFrames composes (it composes Rx then Ry then Rz intrinsically, i.e. R = Rx*Ry*Rz
	// applied in chain order root->tip, which yields R = Rx(rx)*Ry(ry)*Rz(rz) as the tip
	// orientation). Solve for rx, ry, rz from that product form.
	r02 := rm.At(0, 2)
	if r02 > 1 {
		r02 = 1
	} else if r02 < -1 {
		r02 = -1
	}
	ry := math.Asin(r02)
	rx := math.Atan2(-rm.At(1, 2), rm.At(2, 2))
	rz := math.Atan2(-rm.At(0, 1), rm.At(0, 0))

	p := base.Pose.Point()
	return []float64{p.X, p.Y, p.Z, rx, ry, rz}
}
