// Package icp implements rigid point-set registration by Iterative Closest
// Point. Given a source cloud expressed in a rigid body's
// local frame and a target cloud (an observed frame), it refines an initial
// rigid-transform guess to minimize squared correspondence distance.
package icp

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/IMRCLab/librigidbodytracker/pointcloud"
	"github.com/IMRCLab/librigidbodytracker/spatialindex"
	"github.com/IMRCLab/librigidbodytracker/spatialmath"
)

// defaultMaxIterations matches the bound used throughout this tracker's ICP
// calls: both initialization and per-frame update run ICP with an iteration
// cap of 5.
const defaultMaxIterations = 5

// transformEpsilon is the convergence threshold on the per-iteration pose
// delta (translation in meters plus rotation in radians).
const transformEpsilon = 1e-7

// Result is the outcome of one Align call.
type Result struct {
	Transform    spatialmath.Pose
	Converged    bool
	FitnessScore float64
}

// Engine performs rigid registration of a source cloud against a target
// cloud. An Engine is reused across many Align calls against the same
// target (the Initializer's per-body yaw sweep) or a fresh target each frame
// (FrameUpdater).
type Engine struct {
	source                    pointcloud.Cloud
	target                    pointcloud.Cloud
	targetIndex               *spatialindex.Index
	maxCorrespondenceDistance float64
	maxIterations             int
}

// New returns an Engine with the default iteration cap and an unbounded
// correspondence distance; callers must set a target and source before
// calling Align.
func New() *Engine {
	return &Engine{
		maxCorrespondenceDistance: math.Inf(1),
		maxIterations:             defaultMaxIterations,
	}
}

// SetSource sets the cloud to be aligned (a rigid body's marker configuration).
func (e *Engine) SetSource(c pointcloud.Cloud) { e.source = c }

// SetTarget sets the fixed reference cloud (the observed frame) and rebuilds
// the nearest-neighbor index over it.
func (e *Engine) SetTarget(c pointcloud.Cloud) {
	e.target = c
	e.targetIndex = spatialindex.Build(c.Vectors())
}

// SetMaxCorrespondenceDistance bounds how far a transformed source point may
// be from its nearest target point and still form a correspondence.
func (e *Engine) SetMaxCorrespondenceDistance(d float64) {
	e.maxCorrespondenceDistance = d
}

// SetMaxIterations bounds the number of refinement iterations.
func (e *Engine) SetMaxIterations(n int) { e.maxIterations = n }

// correspondence is one matched (source point, target point) pair and its
// squared distance.
type correspondence struct {
	sourcePoint r3.Vector
	targetPoint r3.Vector
	sqDist      float64
}

// Align refines initialGuess against the current source/target, running at
// most maxIterations closed-form rigid fits. It returns the final transform
// estimate, whether the iteration converged before the bound, and the mean
// squared correspondence distance of the final iteration's fit.
func (e *Engine) Align(initialGuess spatialmath.Pose) Result {
	estimate := initialGuess
	maxDist2 := e.maxCorrespondenceDistance * e.maxCorrespondenceDistance

	var lastFitness float64
	converged := false

	for iter := 0; iter < e.maxIterations; iter++ {
		corrs := e.correspond(estimate, maxDist2)
		if len(corrs) == 0 {
			lastFitness = math.Inf(1)
			converged = false
			break
		}
		lastFitness = meanSquaredDistance(corrs)

		next := kabsch(corrs)
		delta := poseDelta(estimate, next)
		estimate = next
		if delta < transformEpsilon {
			converged = true
			break
		}
	}

	return Result{
		Transform:    estimate,
		Converged:    converged,
		FitnessScore: lastFitness,
	}
}

// correspond finds, for each source point transformed by estimate, its
// nearest target point within maxDist2 (squared). Points with no target
// within range are dropped from the correspondence set.
func (e *Engine) correspond(estimate spatialmath.Pose, maxDist2 float64) []correspondence {
	corrs := make([]correspondence, 0, len(e.source))
	for _, sp := range e.source {
		world := spatialmath.TransformPoint(estimate, sp.Vector())
		neighbors := e.targetIndex.KNearest(world, 1)
		if len(neighbors) == 0 {
			continue
		}
		n := neighbors[0]
		if n.SquaredDistance > maxDist2 {
			continue
		}
		corrs = append(corrs, correspondence{
			sourcePoint: sp.Vector(),
			targetPoint: e.target[n.Index].Vector(),
			sqDist:      n.SquaredDistance,
		})
	}
	return corrs
}

func meanSquaredDistance(corrs []correspondence) float64 {
	var sum float64
	for _, c := range corrs {
		sum += c.sqDist
	}
	return sum / float64(len(corrs))
}

// kabsch solves the closed-form rigid-transform least-squares fit (Kabsch
// algorithm) for the given correspondences via SVD of the cross-covariance
// matrix.
func kabsch(corrs []correspondence) spatialmath.Pose {
	n := len(corrs)
	var srcCentroid, tgtCentroid r3.Vector
	for _, c := range corrs {
		srcCentroid = srcCentroid.Add(c.sourcePoint)
		tgtCentroid = tgtCentroid.Add(c.targetPoint)
	}
	srcCentroid = srcCentroid.Mul(1 / float64(n))
	tgtCentroid = tgtCentroid.Mul(1 / float64(n))

	h := mat.NewDense(3, 3, nil)
	for _, c := range corrs {
		sp := c.sourcePoint.Sub(srcCentroid)
		tp := c.targetPoint.Sub(tgtCentroid)
		outer := mat.NewDense(3, 3, []float64{
			sp.X * tp.X, sp.X * tp.Y, sp.X * tp.Z,
			sp.Y * tp.X, sp.Y * tp.Y, sp.Y * tp.Z,
			sp.Z * tp.X, sp.Z * tp.Y, sp.Z * tp.Z,
		})
		h.Add(h, outer)
	}

	var svd mat.SVD
	ok := svd.Factorize(h, mat.SVDFull)
	if !ok {
		// Degenerate correspondence set (e.g. all points coincident); fall
		// back to a pure translation with no rotation change.
		return spatialmath.NewPoseFromPoint(tgtCentroid)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&v, u.T())
	if mat.Det(&r) < 0 {
		v.Set(0, 2, -v.At(0, 2))
		v.Set(1, 2, -v.At(1, 2))
		v.Set(2, 2, -v.At(2, 2))
		r.Mul(&v, u.T())
	}

	rotation := spatialmath.QuaternionFromRotationMatrix(&r)
	candidate := spatialmath.NewPose(r3.Vector{}, rotation)
	translation := tgtCentroid.Sub(spatialmath.TransformPoint(candidate, srcCentroid))
	return spatialmath.NewPose(translation, rotation)
}

// poseDelta is a combined translation+rotation distance used as the ICP
// convergence criterion.
func poseDelta(a, b spatialmath.Pose) float64 {
	translationDelta := a.Point().Sub(b.Point()).Norm()
	angleDelta := 2 * math.Acos(clampUnit(dotQuat(a, b)))
	return translationDelta + angleDelta
}

func dotQuat(a, b spatialmath.Pose) float64 {
	qa, qb := a.Orientation(), b.Orientation()
	d := qa.Real*qb.Real + qa.Imag*qb.Imag + qa.Jmag*qb.Jmag + qa.Kmag*qb.Kmag
	if d < 0 {
		d = -d
	}
	return d
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
