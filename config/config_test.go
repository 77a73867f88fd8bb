package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

const sampleConfig = `{
  "dynamicsConfigurations": [
    {
      "name": "loose",
      "maxXVelocity": ${MAX_X_VELOCITY},
      "maxYVelocity": 2.0,
      "maxZVelocity": 2.0,
      "maxRollRate": 10,
      "maxPitchRate": 10,
      "maxYawRate": 10,
      "maxRoll": 3,
      "maxPitch": 3,
      "maxFitnessScore": 0.001
    }
  ],
  "markerConfigurations": [
    {
      "name": "square",
      "markers": [
        {"x": 0.5, "y": 0, "z": 0},
        {"x": -0.5, "y": 0, "z": 0},
        {"x": 0, "y": 0.5, "z": 0},
        {"x": 0, "y": -0.5, "z": 0}
      ]
    }
  ],
  "rigidBodies": [
    {
      "name": "drone1",
      "markerConfiguration": "square",
      "dynamicsConfiguration": "loose",
      "initialPosition": {"x": 0, "y": 0, "z": 0},
      "initialYaw": 0
    }
  ]
}`

func TestLoadSubstitutesEnvAndParses(t *testing.T) {
	t.Setenv("MAX_X_VELOCITY", "2.5")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	test.That(t, os.WriteFile(path, []byte(sampleConfig), 0o600), test.ShouldBeNil)

	doc, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(doc.DynamicsConfigurations), test.ShouldEqual, 1)
	test.That(t, doc.DynamicsConfigurations[0].MaxXVelocity, test.ShouldEqual, 2.5)
}

func TestBuildResolvesNamesToIndices(t *testing.T) {
	t.Setenv("MAX_X_VELOCITY", "2.0")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	test.That(t, os.WriteFile(path, []byte(sampleConfig), 0o600), test.ShouldBeNil)

	doc, err := Load(path)
	test.That(t, err, test.ShouldBeNil)

	dynCfgs, markerCfgs, bodies, err := doc.Build()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(dynCfgs), test.ShouldEqual, 1)
	test.That(t, len(markerCfgs), test.ShouldEqual, 1)
	test.That(t, len(markerCfgs[0]), test.ShouldEqual, 4)
	test.That(t, len(bodies), test.ShouldEqual, 1)
	test.That(t, bodies[0].Name(), test.ShouldEqual, "drone1")
}

func TestBuildRejectsUnknownMarkerConfiguration(t *testing.T) {
	doc := &Document{
		DynamicsConfigurations: []DynamicsConfiguration{{Name: "loose", MaxXVelocity: 1}},
		RigidBodies: []RigidBodyDocument{
			{Name: "a", MarkerConfiguration: "missing", DynamicsConfiguration: "loose"},
		},
	}
	_, _, _, err := doc.Build()
	test.That(t, err, test.ShouldNotBeNil)
}
