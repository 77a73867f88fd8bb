// Package spatialmath provides the 3D vector and rigid-transform math the
// tracker uses to represent marker positions and rigid body poses.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid transform: a translation plus an orientation. It never
// carries scale or shear.
type Pose interface {
	// Point returns the translation component of the pose.
	Point() r3.Vector
	// Orientation returns the rotation component of the pose as a unit quaternion.
	Orientation() quat.Number
	// EulerAngles returns the roll/pitch/yaw (radians, extrinsic X-Y-Z, i.e.
	// intrinsic Z-Y-X) decomposition.
	EulerAngles() EulerAngles
}

// EulerAngles is a roll-pitch-yaw decomposition of an orientation, in radians.
type EulerAngles struct {
	Roll, Pitch, Yaw float64
}

type pose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return &pose{orientation: quat.Number{Real: 1}}
}

// NewPoseFromPoint returns a pose with the given translation and zero rotation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return &pose{point: pt, orientation: quat.Number{Real: 1}}
}

// NewPose returns a pose with the given translation and orientation. The
// orientation quaternion is normalized.
func NewPose(pt r3.Vector, o quat.Number) Pose {
	return &pose{point: pt, orientation: normalize(o)}
}

// NewPoseFromEulerAngles builds a pose from a translation and roll/pitch/yaw
// (radians), composing rotations in X (roll), then Y (pitch), then Z (yaw)
// order about the fixed world axes (equivalently Z, then Y, then X about the
// body's own axes).
func NewPoseFromEulerAngles(pt r3.Vector, e EulerAngles) Pose {
	return &pose{point: pt, orientation: quatFromEuler(e)}
}

// NewPoseFromYaw returns a pose with only a yaw rotation about Z - used by
// the initializer's yaw sweep.
func NewPoseFromYaw(pt r3.Vector, yaw float64) Pose {
	return NewPoseFromEulerAngles(pt, EulerAngles{Yaw: yaw})
}

func (p *pose) Point() r3.Vector          { return p.point }
func (p *pose) Orientation() quat.Number  { return p.orientation }
func (p *pose) EulerAngles() EulerAngles  { return eulerFromQuat(p.orientation) }

// Compose returns the pose equivalent to applying a, then b, in a's frame:
// result = a ∘ b (b expressed in the frame established by a).
func Compose(a, b Pose) Pose {
	rotated := rotate(a.Orientation(), b.Point())
	return &pose{
		point:       a.Point().Add(rotated),
		orientation: normalize(quat.Mul(a.Orientation(), b.Orientation())),
	}
}

// TransformPoint applies pose p to a point v expressed in p's local frame,
// returning v's position in the frame p is relative to: rotate then
// translate.
func TransformPoint(p Pose, v r3.Vector) r3.Vector {
	return p.Point().Add(rotate(p.Orientation(), v))
}

// Translate returns a copy of p translated by delta in the world frame,
// leaving orientation unchanged. Used by the per-frame updater's
// velocity-based prediction step.
func Translate(p Pose, delta r3.Vector) Pose {
	return &pose{point: p.Point().Add(delta), orientation: p.Orientation()}
}

// PoseAlmostEqual reports whether two poses are equal within 1e-6 translation
// and a small angular tolerance.
func PoseAlmostEqual(a, b Pose) bool {
	if a.Point().Sub(b.Point()).Norm() > 1e-6 {
		return false
	}
	return QuaternionAlmostEqual(a.Orientation(), b.Orientation(), 1e-5)
}

// QuaternionAlmostEqual reports whether two unit quaternions represent the
// same rotation within tol radians, accounting for the double cover (q, -q).
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	if dot < 0 {
		dot = -dot
	}
	if dot > 1 {
		dot = 1
	}
	return 2*math.Acos(dot) < tol
}

func normalize(q quat.Number) quat.Number {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

func rotate(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

func quatFromEuler(e EulerAngles) quat.Number {
	cr, sr := math.Cos(e.Roll/2), math.Sin(e.Roll/2)
	cp, sp := math.Cos(e.Pitch/2), math.Sin(e.Pitch/2)
	cy, sy := math.Cos(e.Yaw/2), math.Sin(e.Yaw/2)

	return normalize(quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	})
}

func eulerFromQuat(q quat.Number) EulerAngles {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	sinrCosp := 2 * (w*x + y*z)
	cosrCosp := 1 - 2*(x*x+y*y)
	roll := math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (w*y - z*x)
	var pitch float64
	if sinp >= 1 {
		pitch = math.Pi / 2
	} else if sinp <= -1 {
		pitch = -math.Pi / 2
	} else {
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (w*z + x*y)
	cosyCosp := 1 - 2*(y*y+z*z)
	yaw := math.Atan2(sinyCosp, cosyCosp)

	return EulerAngles{Roll: roll, Pitch: pitch, Yaw: yaw}
}
