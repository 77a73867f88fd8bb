// Package config loads tracker configuration from JSON documents, applying
// environment-variable interpolation the way the surrounding stack does for
// its own configuration files.
package config

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/a8m/envsubst"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/IMRCLab/librigidbodytracker/pointcloud"
	"github.com/IMRCLab/librigidbodytracker/spatialmath"
	"github.com/IMRCLab/librigidbodytracker/tracker"
)

// Document is the on-disk JSON shape: named marker configurations and
// dynamics configurations, referenced by name from each rigid body entry.
type Document struct {
	DynamicsConfigurations []DynamicsConfiguration `json:"dynamicsConfigurations"`
	MarkerConfigurations   []MarkerConfiguration    `json:"markerConfigurations"`
	RigidBodies            []RigidBodyDocument      `json:"rigidBodies"`
}

// DynamicsConfiguration mirrors tracker.DynamicsConfiguration in JSON, named
// so rigid body entries can reference it.
type DynamicsConfiguration struct {
	Name            string  `json:"name"`
	MaxXVelocity    float64 `json:"maxXVelocity"`
	MaxYVelocity    float64 `json:"maxYVelocity"`
	MaxZVelocity    float64 `json:"maxZVelocity"`
	MaxRoll         float64 `json:"maxRoll"`
	MaxPitch        float64 `json:"maxPitch"`
	MaxRollRate     float64 `json:"maxRollRate"`
	MaxPitchRate    float64 `json:"maxPitchRate"`
	MaxYawRate      float64 `json:"maxYawRate"`
	MaxFitnessScore float64 `json:"maxFitnessScore"`
}

// MarkerConfiguration is a named set of marker offsets in the body frame.
type MarkerConfiguration struct {
	Name    string    `json:"name"`
	Markers []Point3D `json:"markers"`
}

// Point3D is a JSON-friendly 3-vector.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point3D) vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// RigidBodyDocument describes one rigid body: which marker and dynamics
// configuration it uses (by name), and its nominal initial pose. InitialYaw
// is authored in degrees and converted to radians by Build; the angle limits
// in DynamicsConfiguration are passed through unchanged, in radians.
type RigidBodyDocument struct {
	Name                  string  `json:"name"`
	MarkerConfiguration   string  `json:"markerConfiguration"`
	DynamicsConfiguration string  `json:"dynamicsConfiguration"`
	InitialPosition       Point3D `json:"initialPosition"`
	InitialYaw            float64 `json:"initialYaw"`
}

func (rb RigidBodyDocument) initialYawRadians() float64 {
	return rb.InitialYaw * math.Pi / 180
}

// Load reads path, substituting ${VAR} / $VAR references from the process
// environment before parsing, the same way the surrounding stack resolves
// secrets and host-specific values out of its own config files.
func Load(path string) (*Document, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	var doc Document
	if err := json.NewDecoder(bytes.NewReader(buf)).Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}
	return &doc, nil
}

// Build converts the document into the tables and rigid bodies a
// tracker.Tracker is constructed from. Marker and dynamics configuration
// names are resolved to indices in declaration order; an unknown name is
// reported as an error rather than silently defaulting to index 0.
func (d *Document) Build() ([]tracker.DynamicsConfiguration, []tracker.MarkerConfiguration, []*tracker.RigidBody, error) {
	dynByName := make(map[string]int, len(d.DynamicsConfigurations))
	dynCfgs := make([]tracker.DynamicsConfiguration, len(d.DynamicsConfigurations))
	for i, dc := range d.DynamicsConfigurations {
		dynCfgs[i] = tracker.DynamicsConfiguration{
			MaxXVelocity:    dc.MaxXVelocity,
			MaxYVelocity:    dc.MaxYVelocity,
			MaxZVelocity:    dc.MaxZVelocity,
			MaxRoll:         dc.MaxRoll,
			MaxPitch:        dc.MaxPitch,
			MaxRollRate:     dc.MaxRollRate,
			MaxPitchRate:    dc.MaxPitchRate,
			MaxYawRate:      dc.MaxYawRate,
			MaxFitnessScore: dc.MaxFitnessScore,
		}
		dynByName[dc.Name] = i
	}

	markerByName := make(map[string]int, len(d.MarkerConfigurations))
	markerCfgs := make([]tracker.MarkerConfiguration, len(d.MarkerConfigurations))
	for i, mc := range d.MarkerConfigurations {
		cloud := make(pointcloud.Cloud, len(mc.Markers))
		for j, m := range mc.Markers {
			cloud[j] = pointcloud.NewPoint(m.vector())
		}
		markerCfgs[i] = tracker.MarkerConfiguration(cloud)
		markerByName[mc.Name] = i
	}

	bodies := make([]*tracker.RigidBody, 0, len(d.RigidBodies))
	for _, rb := range d.RigidBodies {
		markerIdx, ok := markerByName[rb.MarkerConfiguration]
		if !ok {
			return nil, nil, nil, errors.Errorf("rigid body %q references unknown marker configuration %q", rb.Name, rb.MarkerConfiguration)
		}
		dynIdx, ok := dynByName[rb.DynamicsConfiguration]
		if !ok {
			return nil, nil, nil, errors.Errorf("rigid body %q references unknown dynamics configuration %q", rb.Name, rb.DynamicsConfiguration)
		}

		pose := spatialmath.NewPoseFromYaw(rb.InitialPosition.vector(), rb.initialYawRadians())
		bodies = append(bodies, tracker.NewRigidBody(rb.Name, markerIdx, dynIdx, pose))
	}

	return dynCfgs, markerCfgs, bodies, nil
}
