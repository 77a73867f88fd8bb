package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// QuaternionFromRotationMatrix converts a 3x3 rotation matrix (as produced by
// the ICP engine's SVD-based Kabsch fit) into a unit quaternion. m must be
// orthonormal with determinant +1; the ICP engine enforces this by flipping
// the sign of the smallest singular vector when the raw SVD result reflects.
func QuaternionFromRotationMatrix(m *mat.Dense) quat.Number {
	r00, r01, r02 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	r10, r11, r12 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	r20, r21, r22 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	trace := r00 + r11 + r22
	var w, x, y, z float64
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		w = 0.25 / s
		x = (r21 - r12) * s
		y = (r02 - r20) * s
		z = (r10 - r01) * s
	case r00 > r11 && r00 > r22:
		s := 2 * math.Sqrt(1+r00-r11-r22)
		w = (r21 - r12) / s
		x = 0.25 * s
		y = (r01 + r10) / s
		z = (r02 + r20) / s
	case r11 > r22:
		s := 2 * math.Sqrt(1+r11-r00-r22)
		w = (r02 - r20) / s
		x = (r01 + r10) / s
		y = 0.25 * s
		z = (r12 + r21) / s
	default:
		s := 2 * math.Sqrt(1+r22-r00-r11)
		w = (r10 - r01) / s
		x = (r02 + r20) / s
		y = (r12 + r21) / s
		z = 0.25 * s
	}
	return normalize(quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z})
}
