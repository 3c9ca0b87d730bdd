package referenceframe

import (
	"sync"

	"github.com/golang/geo/r3"

	"go.viam.com/wbc/spatialmath"
)

// Model is a Frame that also knows how to decompose itself into its constituent ordered
// transforms, so that a kinematics.RobotModel can build a (root,tip) chain from it.
type Model interface {
	Frame
	OrderedTransforms() []Frame
}

// SimpleModel is a model that serially concatenates a list of Frames, adapted from
// go.viam.com/rdk/referenceframe's SimpleModel.
type SimpleModel struct {
	*baseFrame
	// OrdTransforms is the list of transforms ordered from base to end effector.
	OrdTransforms []Frame

	lock      sync.RWMutex
	limitsSet bool
}

// NewSimpleModel constructs a named model with no transforms; call AddTransform to build it up.
func NewSimpleModel(name string) *SimpleModel {
	return &SimpleModel{baseFrame: &baseFrame{name: name}}
}

// AddTransform appends a frame to the end of the chain.
func (m *SimpleModel) AddTransform(f Frame) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.OrdTransforms = append(m.OrdTransforms, f)
	m.limitsSet = false
}

// OrderedTransforms returns the frames composing this model, base to end effector.
func (m *SimpleModel) OrderedTransforms() []Frame {
	return m.OrdTransforms
}

// DoF returns the concatenated joint limits of every transform in the chain.
func (m *SimpleModel) DoF() []Limit {
	m.lock.RLock()
	if m.limitsSet {
		defer m.lock.RUnlock()
		return m.baseFrame.limits
	}
	m.lock.RUnlock()

	limits := make([]Limit, 0, len(m.OrdTransforms))
	for _, transform := range m.OrdTransforms {
		limits = append(limits, transform.DoF()...)
	}

	m.lock.Lock()
	m.baseFrame.limits = limits
	m.limitsSet = true
	m.lock.Unlock()
	return limits
}

// Transform composes every transform in the chain under the given full joint-input vector and
// returns the end-effector pose relative to the model's base.
func (m *SimpleModel) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(inputs) != len(m.DoF()) {
		return nil, NewInputLengthMismatchError(len(m.DoF()), len(inputs))
	}
	composed := spatialmath.NewZeroPose()
	posIdx := 0
	for _, transform := range m.OrdTransforms {
		dof := len(transform.DoF()) + posIdx
		local, err := transform.Transform(inputs[posIdx:dof])
		if err != nil {
			return nil, err
		}
		posIdx = dof
		composed = spatialmath.Compose(composed, local)
	}
	return composed, nil
}

// AxisInParent is undefined for a composite model; it satisfies the Frame interface so a
// SimpleModel can itself be nested as a sub-chain, but always returns the zero vector.
func (m *SimpleModel) AxisInParent([]Input) r3.Vector { return r3.Vector{} }

// Kind reports Fixed: a composite model has no single motion axis of its own.
func (m *SimpleModel) Kind() JointKind { return Fixed }
