package referenceframe

import (
	"testing"

	"go.viam.com/test"
)

func TestParseDHConfigTwoLinkPlanar(t *testing.T) {
	cfg := &DHModelConfig{
		Name: "planar2",
		DHParams: []DHParamConfig{
			{ID: "j1", A: 1, D: 0, Alpha: 0, Min: -180, Max: 180},
			{ID: "j2", A: 1, D: 0, Alpha: 0, Min: -180, Max: 180},
		},
	}
	m, err := cfg.ParseConfig("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name(), test.ShouldEqual, "planar2")
	test.That(t, len(m.DoF()), test.ShouldEqual, 2)

	pose, err := m.Transform([]Input{{Value: 0}, {Value: 0}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 2.0)
}

func TestParseDHConfigRejectsEmpty(t *testing.T) {
	cfg := &DHModelConfig{Name: "empty"}
	_, err := cfg.ParseConfig("")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParseDHConfigBytesRejectsEmptyInput(t *testing.T) {
	_, err := ParseDHConfig(nil, "x")
	test.That(t, err, test.ShouldNotBeNil)
}
