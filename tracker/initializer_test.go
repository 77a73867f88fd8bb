package tracker

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/IMRCLab/librigidbodytracker/logging"
	"github.com/IMRCLab/librigidbodytracker/pointcloud"
	"github.com/IMRCLab/librigidbodytracker/spatialmath"
)

func TestInitializeSingleBodyExactObservation(t *testing.T) {
	markerCfg := unitSquareMarkers()
	body := NewRigidBody("a", 0, 0, spatialmath.NewZeroPose())

	cloud := pointcloud.Cloud(markerCfg)
	ok := initialize([]*RigidBody{body}, []MarkerConfiguration{markerCfg}, cloud, logging.NewTestLogger(t))

	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(body.Transformation(), spatialmath.NewZeroPose()), test.ShouldBeTrue)
}

func TestInitializeSingleBodyYawedObservation(t *testing.T) {
	markerCfg := unitSquareMarkers()
	body := NewRigidBody("a", 0, 0, spatialmath.NewZeroPose())

	truth := spatialmath.NewPoseFromYaw(r3.Vector{X: 0.2, Y: -0.1, Z: 0}, 0.9)
	cloud := pointcloud.Cloud(markerCfg).Transform(func(v r3.Vector) r3.Vector { return spatialmath.TransformPoint(truth, v) })

	ok := initialize([]*RigidBody{body}, []MarkerConfiguration{markerCfg}, cloud, logging.NewTestLogger(t))

	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(body.Transformation(), truth), test.ShouldBeTrue)
}

func TestInitializeTwoBodiesDisjointAssignment(t *testing.T) {
	markerCfg := unitSquareMarkers()
	bodyA := NewRigidBody("a", 0, 0, spatialmath.NewPoseFromPoint(r3.Vector{X: 0, Y: 0, Z: 0}))
	bodyB := NewRigidBody("b", 0, 0, spatialmath.NewPoseFromPoint(r3.Vector{X: 5, Y: 0, Z: 0}))

	cloudA := pointcloud.Cloud(markerCfg).Transform(func(v r3.Vector) r3.Vector { return v.Add(r3.Vector{X: 0, Y: 0, Z: 0}) })
	cloudB := pointcloud.Cloud(markerCfg).Transform(func(v r3.Vector) r3.Vector { return v.Add(r3.Vector{X: 5, Y: 0, Z: 0}) })
	cloud := append(append(pointcloud.Cloud{}, cloudA...), cloudB...)

	bodies := []*RigidBody{bodyA, bodyB}
	markerCfgs := []MarkerConfiguration{markerCfg}
	ok := initialize(bodies, markerCfgs, cloud, logging.NewTestLogger(t))

	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, bodyA.Transformation().Point().X, test.ShouldAlmostEqual, 0.0, 1e-3)
	test.That(t, bodyB.Transformation().Point().X, test.ShouldAlmostEqual, 5.0, 1e-3)
}

func TestInitializeFailsWithTooFewObservedMarkers(t *testing.T) {
	markerCfg := unitSquareMarkers()
	body := NewRigidBody("a", 0, 0, spatialmath.NewZeroPose())

	cloud := pointcloud.Cloud(markerCfg)[:2]
	ok := initialize([]*RigidBody{body}, []MarkerConfiguration{markerCfg}, cloud, logging.NewTestLogger(t))

	test.That(t, ok, test.ShouldBeFalse)
}
