package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNewPoseFromPoint(t *testing.T) {
	p := NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, p.Point(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, p.EulerAngles(), test.ShouldResemble, EulerAngles{})
}

func TestTransformPointIdentity(t *testing.T) {
	p := NewZeroPose()
	out := TransformPoint(p, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, out, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
}

func TestTransformPointYaw90(t *testing.T) {
	p := NewPoseFromYaw(r3.Vector{}, math.Pi/2)
	out := TransformPoint(p, r3.Vector{X: 1, Y: 0, Z: 0})
	test.That(t, out.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, out.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, out.Z, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestCompose(t *testing.T) {
	a := NewPoseFromPoint(r3.Vector{X: 1, Y: 0, Z: 0})
	b := NewPoseFromYaw(r3.Vector{X: 0, Y: 1, Z: 0}, math.Pi/2)
	c := Compose(a, b)

	test.That(t, c.Point().X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, c.Point().Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, c.Point().Z, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestTranslate(t *testing.T) {
	a := NewPoseFromYaw(r3.Vector{X: 1, Y: 2, Z: 3}, 0.4)
	b := Translate(a, r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, b.Point(), test.ShouldResemble, r3.Vector{X: 2, Y: 3, Z: 4})
	test.That(t, QuaternionAlmostEqual(a.Orientation(), b.Orientation(), 1e-9), test.ShouldBeTrue)
}

func TestEulerRoundTrip(t *testing.T) {
	want := EulerAngles{Roll: 0.1, Pitch: -0.2, Yaw: 0.3}
	p := NewPoseFromEulerAngles(r3.Vector{}, want)
	got := p.EulerAngles()
	test.That(t, got.Roll, test.ShouldAlmostEqual, want.Roll, 1e-9)
	test.That(t, got.Pitch, test.ShouldAlmostEqual, want.Pitch, 1e-9)
	test.That(t, got.Yaw, test.ShouldAlmostEqual, want.Yaw, 1e-9)
}

func TestPoseAlmostEqual(t *testing.T) {
	a := NewPoseFromYaw(r3.Vector{X: 1, Y: 2, Z: 3}, 0.5)
	b := NewPoseFromYaw(r3.Vector{X: 1, Y: 2, Z: 3}, 0.5+1e-9)
	test.That(t, PoseAlmostEqual(a, b), test.ShouldBeTrue)

	c := NewPoseFromYaw(r3.Vector{X: 1, Y: 2, Z: 3}, 0.9)
	test.That(t, PoseAlmostEqual(a, c), test.ShouldBeFalse)
}
