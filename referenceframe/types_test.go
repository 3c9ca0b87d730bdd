package referenceframe

import (
	"testing"

	"go.viam.com/test"
)

func TestTimestampNullOrdering(t *testing.T) {
	null := NullTimestamp()
	set := NewTimestamp(100)
	test.That(t, null.IsNull(), test.ShouldBeTrue)
	test.That(t, set.IsNull(), test.ShouldBeFalse)
	test.That(t, null.Before(set), test.ShouldBeTrue)
	test.That(t, set.Before(null), test.ShouldBeFalse)
}

func TestNamedVectorGetAndIndexOf(t *testing.T) {
	nv := NewNamedVector([]string{"a", "b", "c"}, []float64{1, 2, 3})
	v, ok := nv.Get("b")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldAlmostEqual, 2.0)

	_, ok = nv.Get("z")
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, nv.IndexOf("c"), test.ShouldEqual, 2)
	test.That(t, nv.IndexOf("missing"), test.ShouldEqual, -1)
}

func TestUnsetJointStateFieldsAreUnset(t *testing.T) {
	js := NewUnsetJointState()
	test.That(t, js.HasPosition(), test.ShouldBeFalse)
	test.That(t, js.HasSpeed(), test.ShouldBeFalse)
	test.That(t, js.HasAcceleration(), test.ShouldBeFalse)
	test.That(t, js.HasEffort(), test.ShouldBeFalse)

	js.Position = 0
	test.That(t, js.HasPosition(), test.ShouldBeTrue)
}

func TestFloatsToInputsRoundTrip(t *testing.T) {
	vs := []float64{0.1, -0.2, 3}
	inputs := FloatsToInputs(vs)
	back := InputsToFloats(inputs)
	test.That(t, back, test.ShouldResemble, vs)
}
