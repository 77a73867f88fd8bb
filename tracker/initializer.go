package tracker

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/IMRCLab/librigidbodytracker/icp"
	"github.com/IMRCLab/librigidbodytracker/logging"
	"github.com/IMRCLab/librigidbodytracker/pointcloud"
	"github.com/IMRCLab/librigidbodytracker/spatialindex"
	"github.com/IMRCLab/librigidbodytracker/spatialmath"
)

// nYaw is the number of equally spaced yaw guesses swept per body during
// initialization.
const nYaw = 20

// initMaxIterations is the ICP iteration cap used for every yaw guess.
const initMaxIterations = 5

// initMaxSquaredDeviation is the acceptance threshold on a fitted marker's
// distance to its matched observed marker: (5mm)^2.
const initMaxSquaredDeviation = 5e-3 * 5e-3

// initialize labels the first frame: each body claims a disjoint subset of
// observed markers from cloud and computes its initial pose.
// It returns true only if every body's fit was accepted.
func initialize(
	bodies []*RigidBody,
	markerCfgs []MarkerConfiguration,
	cloud pointcloud.Cloud,
	logger logging.Logger,
) bool {
	maxDeviation := maxNominalDeviation(bodies)

	observed := cloud.Vectors()
	index := spatialindex.Build(observed)

	allFitsGood := true
	for _, body := range bodies {
		markerCfg := markerCfgs[body.markerCfgIdx]
		k := len(markerCfg)

		nominal := body.initialTransformation.Point()
		neighbors := index.KNearest(nominal, k)
		if len(neighbors) < k {
			logger.Warnw("not enough observed markers near nominal position",
				"body", body.name, "want", k, "have", len(neighbors))
			allFitsGood = false
			continue
		}

		var centroidSum r3.Vector
		for _, n := range neighbors {
			centroidSum = centroidSum.Add(observed[n.Index])
		}
		centroid := centroidSum.Mul(1 / float64(k))

		if centroid.Sub(nominal).Norm() > maxDeviation {
			logger.Warnw("nearest observed markers too far from nominal position",
				"body", body.name, "centroid", centroid, "nominal", nominal, "maxDeviation", maxDeviation)
			allFitsGood = false
			continue
		}

		best := bestYawFit(markerCfg, index, centroid)

		matched, fitGood := matchModelMarkers(markerCfg, best.Transform, index)
		if !fitGood {
			logger.Warnw("initialization fit rejected: marker too far from nearest observation",
				"body", body.name)
			allFitsGood = false
			continue
		}

		body.lastTransformation = best.Transform
		index.RemovePoints(matched)
		index.Rebuild()
	}

	return allFitsGood
}

// maxNominalDeviation computes closestPair/3 over all pairs of bodies'
// nominal centers. With fewer than two bodies there is
// no pair to bound against, so deviation is unconstrained.
func maxNominalDeviation(bodies []*RigidBody) float64 {
	if len(bodies) < 2 {
		return math.Inf(1)
	}
	closest := math.Inf(1)
	for i := 0; i < len(bodies); i++ {
		ci := bodies[i].initialTransformation.Point()
		for j := i + 1; j < len(bodies); j++ {
			cj := bodies[j].initialTransformation.Point()
			if d := ci.Sub(cj).Norm(); d < closest {
				closest = d
			}
		}
	}
	return closest / 3
}

// bestYawFit sweeps nYaw yaw guesses about centroid, running ICP for each
// against the currently live observed markers, and returns the
// lowest-fitness result.
func bestYawFit(markerCfg MarkerConfiguration, index *spatialindex.Index, centroid r3.Vector) icp.Result {
	target := make(pointcloud.Cloud, 0)
	for _, p := range index.LivePoints() {
		target = append(target, pointcloud.NewPoint(p))
	}

	engine := icp.New()
	engine.SetSource(pointcloud.Cloud(markerCfg))
	engine.SetTarget(target)
	engine.SetMaxIterations(initMaxIterations)

	var best icp.Result
	for i := 0; i < nYaw; i++ {
		yaw := float64(i) * (2 * math.Pi / nYaw)
		guess := spatialmath.NewPoseFromYaw(centroid, yaw)
		result := engine.Align(guess)
		if i == 0 || result.FitnessScore < best.FitnessScore {
			best = result
		}
	}
	return best
}

// matchModelMarkers transforms every model marker by transform and finds its
// single nearest observed marker. The fit is accepted only if every nearest
// squared distance is within initMaxSquaredDeviation.
// On acceptance it returns the original-cloud indices consumed.
func matchModelMarkers(markerCfg MarkerConfiguration, transform spatialmath.Pose, index *spatialindex.Index) ([]int, bool) {
	matched := make([]int, 0, len(markerCfg))
	for _, mp := range markerCfg {
		world := spatialmath.TransformPoint(transform, mp.Vector())
		nearest := index.KNearest(world, 1)
		if len(nearest) == 0 || nearest[0].SquaredDistance > initMaxSquaredDeviation {
			return nil, false
		}
		matched = append(matched, nearest[0].Index)
	}
	return matched, true
}
