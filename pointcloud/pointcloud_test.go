package pointcloud

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestCentroid(t *testing.T) {
	c := Cloud{
		NewPoint(r3.Vector{X: 0, Y: 0, Z: 0}),
		NewPoint(r3.Vector{X: 2, Y: 0, Z: 0}),
		NewPoint(r3.Vector{X: 1, Y: 3, Z: 0}),
	}
	got := c.Centroid()
	test.That(t, got.X, test.ShouldAlmostEqual, 1.0, 1e-6)
	test.That(t, got.Y, test.ShouldAlmostEqual, 1.0, 1e-6)
	test.That(t, got.Z, test.ShouldAlmostEqual, 0.0, 1e-6)
}

func TestCloneIsIndependent(t *testing.T) {
	c := Cloud{NewPoint(r3.Vector{X: 1, Y: 1, Z: 1})}
	clone := c.Clone()
	clone[0] = NewPoint(r3.Vector{X: 9, Y: 9, Z: 9})
	test.That(t, c[0].X, test.ShouldEqual, float32(1))
}

func TestTransform(t *testing.T) {
	c := Cloud{NewPoint(r3.Vector{X: 1, Y: 0, Z: 0})}
	out := c.Transform(func(v r3.Vector) r3.Vector { return v.Mul(2) })
	test.That(t, out[0].X, test.ShouldEqual, float32(2))
}

func TestVectors(t *testing.T) {
	c := Cloud{NewPoint(r3.Vector{X: 1, Y: 2, Z: 3})}
	vs := c.Vectors()
	test.That(t, len(vs), test.ShouldEqual, 1)
	test.That(t, vs[0], test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
}
