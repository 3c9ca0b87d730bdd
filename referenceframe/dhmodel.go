package referenceframe

import (
	"encoding/json"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/wbc/spatialmath"
)

// DHParamConfig is one row of a Denavit-Hartenberg parameter table: a revolute joint followed by
// the fixed link offset it carries, adapted from the "DH" branch of
// go.viam.com/rdk/referenceframe's ModelConfig.
type DHParamConfig struct {
	ID    string  `json:"id"`
	A     float64 `json:"a"`
	D     float64 `json:"d"`
	Alpha float64 `json:"alpha_deg"`
	Min   float64 `json:"min_deg"`
	Max   float64 `json:"max_deg"`
}

// DHModelConfig is a kinematic description expressed as a Denavit-Hartenberg parameter table.
type DHModelConfig struct {
	Name     string          `json:"name"`
	DHParams []DHParamConfig `json:"dhParams"`
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

// poseFromDH builds the link-offset pose for one DH row using the standard (Craig) convention:
// translate by a along the new X, d along the new Z, and twist by alpha about the new X.
func poseFromDH(a, d, alpha float64) spatialmath.Pose {
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	rm := spatialmath.NewRotationMatrix([9]float64{
		1, 0, 0,
		0, ca, -sa,
		0, sa, ca,
	})
	return spatialmath.NewPose(r3.Vector{X: a, Y: 0, Z: d}, rm)
}

// ParseConfig converts a DHModelConfig into a Model, named name unless name is empty.
func (cfg *DHModelConfig) ParseConfig(name string) (Model, error) {
	if name == "" {
		name = cfg.Name
	}
	if len(cfg.DHParams) == 0 {
		return nil, errors.New("DH configuration declares no parameters")
	}

	model := NewSimpleModel(name)
	for _, dh := range cfg.DHParams {
		model.AddTransform(NewRevoluteFrame(dh.ID, r3.Vector{Z: 1},
			Limit{Min: degToRad(dh.Min), Max: degToRad(dh.Max)}))
		model.AddTransform(NewStaticFrame(dh.ID+":link", poseFromDH(dh.A, dh.D, degToRad(dh.Alpha))))
	}
	return model, nil
}

// ParseDHConfigFile reads a DH-parameter JSON file from path and returns the resulting Model.
func ParseDHConfigFile(path, name string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(path, err)
	}
	model, err := ParseDHConfig(data, name)
	if err != nil {
		return nil, NewConfigError(path, err)
	}
	return model, nil
}

// ParseDHConfig parses DH-parameter JSON content into a Model, named name unless name is empty.
func ParseDHConfig(data []byte, name string) (Model, error) {
	if len(data) == 0 {
		return nil, errors.New("no DH model data")
	}
	cfg := &DHModelConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal DH configuration")
	}
	return cfg.ParseConfig(name)
}
