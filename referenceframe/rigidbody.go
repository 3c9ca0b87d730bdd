package referenceframe

import (
	"github.com/golang/geo/r3"

	"go.viam.com/wbc/spatialmath"
)

// RigidBodyStateSE3 is the full kinematic state of a rigid body (a task frame, a link, or the
// floating base): pose, twist, and spatial acceleration of the frame named by FrameID, all
// expressed relative to SourceFrame, plus bookkeeping for when the state was last refreshed.
type RigidBodyStateSE3 struct {
	FrameID     string
	SourceFrame string

	Pose spatialmath.Pose

	TwistLinear  r3.Vector
	TwistAngular r3.Vector

	AccLinear  r3.Vector
	AccAngular r3.Vector

	Timestamp Timestamp
}

// NewRigidBodyStateSE3 builds a zeroed, never-updated rigid body state for frameID expressed
// relative to sourceFrame.
func NewRigidBodyStateSE3(frameID, sourceFrame string) RigidBodyStateSE3 {
	return RigidBodyStateSE3{
		FrameID:     frameID,
		SourceFrame: sourceFrame,
		Pose:        spatialmath.NewZeroPose(),
	}
}

// IsStale reports whether the state's Timestamp is null, or older than maxAge nanoseconds before
// now (both in the same epoch as the Timestamp values being compared).
func (s RigidBodyStateSE3) IsStale(now Timestamp, maxAgeNanos int64) bool {
	if s.Timestamp.IsNull() {
		return true
	}
	if now.IsNull() {
		return false
	}
	return now.Nanos()-s.Timestamp.Nanos() > maxAgeNanos
}
