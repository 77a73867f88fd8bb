package tracker

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/IMRCLab/librigidbodytracker/icp"
	"github.com/IMRCLab/librigidbodytracker/pointcloud"
	"github.com/IMRCLab/librigidbodytracker/spatialmath"
)

// frameUpdaterMaxIterations is the ICP iteration cap used for every body's
// per-frame alignment.
const frameUpdaterMaxIterations = 5

// updateFrame advances every rigid body's state against one new cloud.
// Bodies are processed in construction order. If any body
// with prior valid state would see a non-positive dt, the whole frame is
// rejected as an InvalidInput contract violation before any state is
// mutated.
func updateFrame(
	bodies []*RigidBody,
	dynCfgs []DynamicsConfiguration,
	markerCfgs []MarkerConfiguration,
	stamp time.Time,
	cloud pointcloud.Cloud,
	warn func(string),
) error {
	for _, b := range bodies {
		if b.lastValidTime.IsZero() {
			continue
		}
		if stamp.Sub(b.lastValidTime).Seconds() <= 0 {
			return errors.Wrapf(ErrNonIncreasingStamp, "rigid body %q", b.name)
		}
	}

	for _, b := range bodies {
		updateOneBody(b, dynCfgs[b.dynCfgIdx], markerCfgs[b.markerCfgIdx], stamp, cloud, warn)
	}
	return nil
}

func updateOneBody(
	b *RigidBody,
	dynCfg DynamicsConfiguration,
	markerCfg MarkerConfiguration,
	stamp time.Time,
	cloud pointcloud.Cloud,
	warn func(string),
) {
	b.lastTransformationValid = false

	// On the first frame after initialization there is no prior valid
	// timestamp; dt is treated as unbounded so the correspondence search
	// radius and the velocity/angular-rate checks below, which are undefined
	// without a prior pose, do not spuriously reject the very first pose
	// (mirrors librigidbodytracker's use of a default-constructed, i.e.
	// epoch-zero, lastValidTransform). Roll, pitch, and fitness are still
	// enforced on this frame.
	unconstrained := b.lastValidTime.IsZero()
	var dt float64
	if !unconstrained {
		dt = stamp.Sub(b.lastValidTime).Seconds()
	}

	engine := icp.New()
	engine.SetSource(pointcloud.Cloud(markerCfg))
	engine.SetTarget(cloud)
	engine.SetMaxIterations(frameUpdaterMaxIterations)
	if unconstrained {
		engine.SetMaxCorrespondenceDistance(math.Inf(1))
	} else {
		engine.SetMaxCorrespondenceDistance(dynCfg.MaxXVelocity * dt)
	}

	deltaPos := r3.Vector{}
	if !unconstrained {
		deltaPos = b.velocity.Mul(dt)
	}
	predicted := spatialmath.Translate(b.lastTransformation, deltaPos)

	result := engine.Align(predicted)
	if !result.Converged {
		warn(fmt.Sprintf("ICP did not converge for rigid body %q", b.name))
		return
	}

	newPos := result.Transform.Point()
	newEuler := result.Transform.EulerAngles()

	var failures []string
	check := func(name string, value, limit float64) {
		if math.Abs(value) >= limit {
			failures = append(failures, fmt.Sprintf("%s: %.6f >= %.6f", name, math.Abs(value), limit))
		}
	}

	// roll, pitch, and fitness are instantaneous properties of this frame's
	// fit, not differenced against a prior pose, so they are enforced even on
	// the unconstrained first frame after initialization.
	check("roll", newEuler.Roll, dynCfg.MaxRoll)
	check("pitch", newEuler.Pitch, dynCfg.MaxPitch)
	if result.FitnessScore >= dynCfg.MaxFitnessScore {
		failures = append(failures, fmt.Sprintf("fitness: %.6f >= %.6f", result.FitnessScore, dynCfg.MaxFitnessScore))
	}

	var velocity r3.Vector
	if !unconstrained {
		oldPos := b.lastTransformation.Point()
		oldEuler := b.lastTransformation.EulerAngles()

		vx := (newPos.X - oldPos.X) / dt
		vy := (newPos.Y - oldPos.Y) / dt
		vz := (newPos.Z - oldPos.Z) / dt
		wroll := (newEuler.Roll - oldEuler.Roll) / dt
		wpitch := (newEuler.Pitch - oldEuler.Pitch) / dt
		wyaw := (newEuler.Yaw - oldEuler.Yaw) / dt

		check("vx", vx, dynCfg.MaxXVelocity)
		check("vy", vy, dynCfg.MaxYVelocity)
		check("vz", vz, dynCfg.MaxZVelocity)
		check("wroll", wroll, dynCfg.MaxRollRate)
		check("wpitch", wpitch, dynCfg.MaxPitchRate)
		check("wyaw", wyaw, dynCfg.MaxYawRate)

		velocity = r3.Vector{X: vx, Y: vy, Z: vz}
	}

	if len(failures) > 0 {
		warn(fmt.Sprintf("dynamics check failed for rigid body %q: %s", b.name, strings.Join(failures, "; ")))
		return
	}

	b.velocity = velocity
	b.lastTransformation = result.Transform
	b.lastValidTime = stamp
	b.lastTransformationValid = true
}
