// Package pointcloud defines the Point and Cloud types shared by the
// spatial index, ICP engine, and tracker. A Cloud is an ordered sequence of
// single-precision 3D positions in a fixed world frame; order is
// preserved so that marker indices stay stable within one update.
package pointcloud

import "github.com/golang/geo/r3"

// Point is a single observed or configured marker position.
type Point struct {
	X, Y, Z float32
}

// Vector returns p as a double-precision r3.Vector for use in the math
// packages, which operate in float64 throughout.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

// NewPoint builds a Point from an r3.Vector, narrowing to float32.
func NewPoint(v r3.Vector) Point {
	return Point{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Cloud is an ordered sequence of Points representing one captured frame or
// a rigid body's marker configuration expressed in its local frame.
type Cloud []Point

// Clone returns an independent copy of the cloud.
func (c Cloud) Clone() Cloud {
	out := make(Cloud, len(c))
	copy(out, c)
	return out
}

// Vectors returns the cloud's points as r3.Vector, for consumption by the
// spatial index and ICP engine.
func (c Cloud) Vectors() []r3.Vector {
	out := make([]r3.Vector, len(c))
	for i, p := range c {
		out[i] = p.Vector()
	}
	return out
}

// Centroid returns the mean position of the cloud's points. Callers must not
// pass an empty cloud.
func (c Cloud) Centroid() r3.Vector {
	var sum r3.Vector
	for _, p := range c {
		sum = sum.Add(p.Vector())
	}
	return sum.Mul(1 / float64(len(c)))
}

// Transform returns a new cloud with every point transformed by applying f,
// used to move a body's local marker configuration into world coordinates
// under a candidate pose.
func (c Cloud) Transform(f func(r3.Vector) r3.Vector) Cloud {
	out := make(Cloud, len(c))
	for i, p := range c {
		out[i] = NewPoint(f(p.Vector()))
	}
	return out
}
