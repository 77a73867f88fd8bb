package icp

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/IMRCLab/librigidbodytracker/pointcloud"
	"github.com/IMRCLab/librigidbodytracker/spatialmath"
)

func square() pointcloud.Cloud {
	return pointcloud.Cloud{
		pointcloud.NewPoint(r3.Vector{X: 1, Y: 0, Z: 0}),
		pointcloud.NewPoint(r3.Vector{X: -1, Y: 0, Z: 0}),
		pointcloud.NewPoint(r3.Vector{X: 0, Y: 1, Z: 0}),
		pointcloud.NewPoint(r3.Vector{X: 0, Y: -1, Z: 0}),
	}
}

func TestAlignPureTranslation(t *testing.T) {
	source := square()
	target := source.Transform(func(v r3.Vector) r3.Vector { return v.Add(r3.Vector{X: 0.5, Y: 0.2, Z: 0}) })

	e := New()
	e.SetSource(source)
	e.SetTarget(target)
	e.SetMaxCorrespondenceDistance(1.0)

	result := e.Align(spatialmath.NewZeroPose())
	test.That(t, result.Converged, test.ShouldBeTrue)
	test.That(t, result.Transform.Point().X, test.ShouldAlmostEqual, 0.5, 1e-4)
	test.That(t, result.Transform.Point().Y, test.ShouldAlmostEqual, 0.2, 1e-4)
	test.That(t, result.FitnessScore, test.ShouldAlmostEqual, 0.0, 1e-6)
}

func TestAlignRotationAndTranslation(t *testing.T) {
	source := square()
	truth := spatialmath.NewPoseFromYaw(r3.Vector{X: 1, Y: -1, Z: 0}, math.Pi/6)
	target := source.Transform(func(v r3.Vector) r3.Vector { return spatialmath.TransformPoint(truth, v) })

	e := New()
	e.SetSource(source)
	e.SetTarget(target)
	e.SetMaxCorrespondenceDistance(5.0)

	guess := spatialmath.NewPoseFromYaw(r3.Vector{X: 0.8, Y: -0.9, Z: 0}, 0.4)
	result := e.Align(guess)

	test.That(t, result.Converged, test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(result.Transform, truth), test.ShouldBeTrue)
}

func TestAlignNoCorrespondencesDoesNotConverge(t *testing.T) {
	source := square()
	target := source.Transform(func(v r3.Vector) r3.Vector { return v.Add(r3.Vector{X: 100, Y: 100, Z: 100}) })

	e := New()
	e.SetSource(source)
	e.SetTarget(target)
	e.SetMaxCorrespondenceDistance(0.01)

	result := e.Align(spatialmath.NewZeroPose())
	test.That(t, result.Converged, test.ShouldBeFalse)
}
