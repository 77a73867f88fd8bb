package tracker

import "github.com/IMRCLab/librigidbodytracker/pointcloud"

// DynamicsConfiguration bounds plausible inter-frame motion for a rigid body.
// All fields are positive real numbers in SI units (m, s, rad).
type DynamicsConfiguration struct {
	MaxXVelocity float64
	MaxYVelocity float64
	MaxZVelocity float64

	MaxRollRate  float64
	MaxPitchRate float64
	MaxYawRate   float64

	MaxRoll  float64
	MaxPitch float64

	// MaxFitnessScore is the largest acceptable ICP mean-squared
	// correspondence distance.
	MaxFitnessScore float64
}

// MarkerConfiguration is a rigid body's marker constellation expressed in
// its local frame. Immutable after construction; referenced by
// stable index from RigidBody.
type MarkerConfiguration pointcloud.Cloud
