// Package urdf parses a URDF (Unified Robot Description Format) XML document into a
// referenceframe.Model, adapted from go.viam.com/rdk/referenceframe/urdf.
package urdf

import (
	"encoding/xml"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/spatialmath"
)

type urdfLink struct {
	Name string `xml:"name,attr"`
}

type urdfAxis struct {
	XYZ string `xml:"xyz,attr"`
}

type urdfOrigin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type urdfLimit struct {
	Lower float64 `xml:"lower,attr"`
	Upper float64 `xml:"upper,attr"`
}

type urdfJoint struct {
	Name   string     `xml:"name,attr"`
	Type   string     `xml:"type,attr"`
	Parent urdfLink   `xml:"parent"`
	Child  urdfLink   `xml:"child"`
	Origin urdfOrigin `xml:"origin"`
	Axis   urdfAxis   `xml:"axis"`
	Limit  urdfLimit  `xml:"limit"`
}

type urdfRobot struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []urdfLink  `xml:"link"`
	Joints  []urdfJoint `xml:"joint"`
}

func parseVec3(s string) r3.Vector {
	s = strings.TrimSpace(s)
	if s == "" {
		return r3.Vector{}
	}
	fields := strings.Fields(s)
	var v [3]float64
	for i := 0; i < 3 && i < len(fields); i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err == nil {
			v[i] = f
		}
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// rpyToOrientation converts a URDF roll-pitch-yaw triple (XYZ fixed-axis, extrinsic) to an
// Orientation via its equivalent rotation matrix.
func rpyToOrientation(rpy r3.Vector) spatialmath.Orientation {
	cr, sr := math.Cos(rpy.X), math.Sin(rpy.X)
	cp, sp := math.Cos(rpy.Y), math.Sin(rpy.Y)
	cy, sy := math.Cos(rpy.Z), math.Sin(rpy.Z)

	rm := spatialmath.NewRotationMatrix([9]float64{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr,
		-sp, cp * sr, cp * cr,
	})
	return rm
}

// ParseFile reads a URDF file from path and returns the resulting Model, named name unless name is
// empty (in which case the robot's own <robot name=...> attribute is used).
func ParseFile(path, name string) (referenceframe.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, referenceframe.NewConfigError(path, err)
	}
	model, err := ParseBytes(data, name)
	if err != nil {
		return nil, referenceframe.NewConfigError(path, err)
	}
	return model, nil
}

// ParseBytes parses URDF XML content into a Model, named name unless name is empty.
func ParseBytes(data []byte, name string) (referenceframe.Model, error) {
	var robot urdfRobot
	if err := xml.Unmarshal(data, &robot); err != nil {
		return nil, errors.Wrap(err, "malformed URDF XML")
	}
	if name == "" {
		name = robot.Name
	}
	if len(robot.Joints) == 0 {
		return nil, errors.New("URDF declares no joints")
	}

	// Build a chain by following parent->child joints from the link that is never a child.
	isChild := map[string]bool{}
	byParent := map[string]*urdfJoint{}
	for i := range robot.Joints {
		j := &robot.Joints[i]
		isChild[j.Child.Name] = true
		byParent[j.Parent.Name] = j
	}
	var root string
	for _, l := range robot.Links {
		if !isChild[l.Name] {
			root = l.Name
			break
		}
	}
	if root == "" {
		return nil, errors.New("URDF has no root link (every link is some joint's child)")
	}

	model := referenceframe.NewSimpleModel(name)
	visited := map[string]bool{root: true}
	cur := root
	for {
		j, ok := byParent[cur]
		if !ok {
			break
		}
		if visited[j.Child.Name] {
			return nil, errors.Errorf("URDF kinematic chain contains a cycle at link %q", j.Child.Name)
		}
		visited[j.Child.Name] = true

		origin := rpyToOrientation(parseVec3(j.Origin.RPY))
		offset := spatialmath.NewPose(parseVec3(j.Origin.XYZ), origin)

		switch j.Type {
		case "fixed", "":
			model.AddTransform(referenceframe.NewStaticFrame(j.Name, offset))
		case "continuous":
			model.AddTransform(referenceframe.NewStaticFrame(j.Name+":origin", offset))
			model.AddTransform(referenceframe.NewRevoluteFrame(j.Name, parseVec3(j.Axis.XYZ),
				referenceframe.Limit{Min: -1e9, Max: 1e9}))
		case "revolute":
			model.AddTransform(referenceframe.NewStaticFrame(j.Name+":origin", offset))
			model.AddTransform(referenceframe.NewRevoluteFrame(j.Name, parseVec3(j.Axis.XYZ),
				referenceframe.Limit{Min: j.Limit.Lower, Max: j.Limit.Upper}))
		case "prismatic":
			model.AddTransform(referenceframe.NewStaticFrame(j.Name+":origin", offset))
			model.AddTransform(referenceframe.NewPrismaticFrame(j.Name, parseVec3(j.Axis.XYZ),
				referenceframe.Limit{Min: j.Limit.Lower, Max: j.Limit.Upper}))
		default:
			return nil, errors.Errorf("unsupported URDF joint type %q on joint %q", j.Type, j.Name)
		}
		cur = j.Child.Name
	}

	if len(model.OrdTransforms) == 0 {
		return nil, errors.New("URDF chain resolved to zero transforms")
	}
	return model, nil
}
