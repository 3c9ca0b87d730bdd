package kinematics

import (
	"github.com/golang/geo/r3"

	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/spatialmath"
)

// chainKey identifies a cached (root,tip) kinematic chain, per the design note in SPEC_FULL.md
// ("cached kinematic chains keyed by (root,tip) string pairs").
type chainKey struct {
	root string
	tip  string
}

// jointSlot locates one actuated degree of freedom inside a chain: which frame in the model's
// ordered transform list it is, and which column of the full joint vector it reads from.
type jointSlot struct {
	frameIdx int // index into model.OrdTransforms
	jointIdx int // column in the full joint-position vector
}

// chain is a cached root-to-tip kinematic sub-chain over a single serial ordered-transform list.
// This repo's models are single serial chains (arms, mobile bases, a floating base prefix), so
// root is always the owning model's own base frame; tip selects a prefix of the transform list.
type chain struct {
	transforms []referenceframe.Frame
	tipIdx     int // index into transforms of the last frame included (inclusive)
	joints     []jointSlot
}

// newChain builds a chain over model's own ordered transforms.
func newChain(model referenceframe.Model, jointIndexOf map[string]int, tip string) (*chain, error) {
	return newChainOverFrames(model.OrderedTransforms(), jointIndexOf, tip)
}

// newChainOverFrames builds a chain over an explicit ordered frame list, used by DynamicModel to
// prepend the synthetic floating-base frames ahead of the inner model's own transforms.
func newChainOverFrames(transforms []referenceframe.Frame, jointIndexOf map[string]int, tip string) (*chain, error) {
	tipIdx := -1
	for i, f := range transforms {
		if f.Name() == tip {
			tipIdx = i
			break
		}
	}
	if tipIdx < 0 {
		return nil, NewUnknownFrameError(tip)
	}

	var joints []jointSlot
	jointCol := 0
	for i, f := range transforms {
		dof := len(f.DoF())
		if dof > 0 {
			if i <= tipIdx {
				idx, ok := jointIndexOf[f.Name()]
				if !ok {
					idx = jointCol
				}
				joints = append(joints, jointSlot{frameIdx: i, jointIdx: idx})
			}
			jointCol += dof
		}
	}

	return &chain{transforms: transforms, tipIdx: tipIdx, joints: joints}, nil
}

// pose returns the tip pose relative to the chain's root, given the full joint-position vector (one
// entry per DoF of the whole model, not just this chain).
func (c *chain) pose(fullJoints []float64) spatialmath.Pose {
	composed, _ := c.poseAndFrames(fullJoints)
	return composed
}

// poseAndFrames returns the tip pose plus, per joint slot in chain order, the joint's pivot point
// and motion axis expressed in the root frame. These are exactly what a Jacobian column needs.
func (c *chain) poseAndFrames(fullJoints []float64) (spatialmath.Pose, []jacColumn) {
	transforms := c.transforms
	composed := spatialmath.NewZeroPose()
	cols := make([]jacColumn, 0, len(c.joints))

	jointCol := 0
	nextSlot := 0
	for i := 0; i <= c.tipIdx; i++ {
		f := transforms[i]
		dof := len(f.DoF())
		inputs := referenceframe.FloatsToInputs(fullJoints[jointCol : jointCol+dof])

		if nextSlot < len(c.joints) && c.joints[nextSlot].frameIdx == i {
			pivot := composed.Point()
			axisLocal := f.AxisInParent(inputs)
			axisRoot := spatialmath.RotateVector(composed.Orientation(), axisLocal)
			cols = append(cols, jacColumn{pivot: pivot, axis: axisRoot, prismatic: f.Kind() == referenceframe.Prismatic})
			nextSlot++
		}

		local, err := f.Transform(inputs)
		if err == nil {
			composed = spatialmath.Compose(composed, local)
		}
		jointCol += dof
	}
	return composed, cols
}

// jacColumn is the geometric data needed to build one Jacobian column from a chain's joint slots.
type jacColumn struct {
	pivot     r3.Vector
	axis      r3.Vector
	prismatic bool
}
