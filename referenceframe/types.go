// Package referenceframe provides the joint-space and rigid-body data types shared by the
// kinematics, scene, and solver packages, plus parsing of URDF and DH-parameter kinematic
// descriptions. Types and conventions are adapted from go.viam.com/rdk/referenceframe.
package referenceframe

import "math"

// Limit describes an inclusive joint range, in the joint's native units (radians or meters).
type Limit struct {
	Min float64
	Max float64
}

// Input is a single joint-space value (position, in radians or meters depending on joint type).
type Input struct {
	Value float64
}

// FloatsToInputs converts a plain slice of floats to Input values.
func FloatsToInputs(vs []float64) []Input {
	inputs := make([]Input, len(vs))
	for i, v := range vs {
		inputs[i] = Input{Value: v}
	}
	return inputs
}

// InputsToFloats converts a slice of Input back to plain floats.
func InputsToFloats(inputs []Input) []float64 {
	vs := make([]float64, len(inputs))
	for i, in := range inputs {
		vs[i] = in.Value
	}
	return vs
}

// NamedVector pairs an ordered slice of values with a parallel slice of names. The two slices are
// always the same length; index i of Values corresponds to index i of Names.
type NamedVector[T any] struct {
	Names  []string
	Values []T
}

// NewNamedVector builds a NamedVector, panicking if names and values disagree in length.
func NewNamedVector[T any](names []string, values []T) *NamedVector[T] {
	if len(names) != len(values) {
		panic("referenceframe: NamedVector names and values must be the same length")
	}
	return &NamedVector[T]{Names: names, Values: values}
}

// Len returns the number of named entries.
func (nv *NamedVector[T]) Len() int { return len(nv.Names) }

// Get returns the value for name and whether it was found.
func (nv *NamedVector[T]) Get(name string) (T, bool) {
	for i, n := range nv.Names {
		if n == name {
			return nv.Values[i], true
		}
	}
	var zero T
	return zero, false
}

// IndexOf returns the index of name, or -1 if absent.
func (nv *NamedVector[T]) IndexOf(name string) int {
	for i, n := range nv.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Timestamp distinguishes "never updated" from the in-band zero time, so that callers cannot
// confuse time-zero with no data. Grounded in the original's base::Time::isNull() convention.
type Timestamp struct {
	nanos int64
	set   bool
}

// NewTimestamp builds a Timestamp set to nanos nanoseconds since an arbitrary epoch.
func NewTimestamp(nanos int64) Timestamp {
	return Timestamp{nanos: nanos, set: true}
}

// NullTimestamp returns the "never updated" sentinel.
func NullTimestamp() Timestamp {
	return Timestamp{}
}

// IsNull reports whether the timestamp has ever been set.
func (t Timestamp) IsNull() bool { return !t.set }

// Nanos returns the stored nanosecond value; callers must check IsNull first.
func (t Timestamp) Nanos() int64 { return t.nanos }

// Before reports whether t happened strictly before o. A null timestamp is before everything set.
func (t Timestamp) Before(o Timestamp) bool {
	if t.IsNull() {
		return !o.IsNull()
	}
	if o.IsNull() {
		return false
	}
	return t.nanos < o.nanos
}

// JointState is the per-joint kinematic state exchanged between a robot model, a scene, and the
// outside world each cycle. Unset fields are represented as NaN, not zero, so that "unspecified"
// and "commanded to zero" are never confused.
type JointState struct {
	Position     float64
	Speed        float64
	Acceleration float64
	Effort       float64
	Timestamp    Timestamp
}

// NewUnsetJointState returns a JointState with every numeric field set to NaN and a null
// timestamp.
func NewUnsetJointState() JointState {
	return JointState{
		Position:     math.NaN(),
		Speed:        math.NaN(),
		Acceleration: math.NaN(),
		Effort:       math.NaN(),
	}
}

// HasPosition reports whether Position has been set.
func (js JointState) HasPosition() bool { return !math.IsNaN(js.Position) }

// HasSpeed reports whether Speed has been set.
func (js JointState) HasSpeed() bool { return !math.IsNaN(js.Speed) }

// HasAcceleration reports whether Acceleration has been set.
func (js JointState) HasAcceleration() bool { return !math.IsNaN(js.Acceleration) }

// HasEffort reports whether Effort has been set.
func (js JointState) HasEffort() bool { return !math.IsNaN(js.Effort) }
