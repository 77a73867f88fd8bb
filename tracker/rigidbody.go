package tracker

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/IMRCLab/librigidbodytracker/spatialmath"
)

// RigidBody is the per-body mutable tracking state. Its fields
// are mutated only by the Initializer and FrameUpdater, both in this
// package; external callers observe it only through the accessor methods.
type RigidBody struct {
	markerCfgIdx int
	dynCfgIdx    int
	name         string

	initialTransformation spatialmath.Pose
	lastTransformation    spatialmath.Pose
	velocity              r3.Vector

	lastValidTime           time.Time
	lastTransformationValid bool
}

// NewRigidBody constructs a RigidBody. initialTransformation seeds
// lastTransformation; markerCfgIdx and dynCfgIdx are
// validated against the configuration tables when the Tracker is built.
func NewRigidBody(name string, markerCfgIdx, dynCfgIdx int, initialTransformation spatialmath.Pose) *RigidBody {
	return &RigidBody{
		name:                  name,
		markerCfgIdx:          markerCfgIdx,
		dynCfgIdx:             dynCfgIdx,
		initialTransformation: initialTransformation,
		lastTransformation:    initialTransformation,
	}
}

// Name returns the body's human-readable identifier.
func (b *RigidBody) Name() string { return b.name }

// Transformation returns the most recently accepted pose.
func (b *RigidBody) Transformation() spatialmath.Pose { return b.lastTransformation }

// InitialTransformation returns the immutable pose hint supplied at
// construction.
func (b *RigidBody) InitialTransformation() spatialmath.Pose { return b.initialTransformation }

// Center returns the translation component of the current pose.
func (b *RigidBody) Center() r3.Vector { return b.lastTransformation.Point() }

// LastTransformationValid reports whether the most recent frame's update
// passed dynamics gating.
func (b *RigidBody) LastTransformationValid() bool { return b.lastTransformationValid }

// LastValidTime returns the timestamp of the most recently accepted update.
func (b *RigidBody) LastValidTime() time.Time { return b.lastValidTime }

// Velocity returns the translational velocity estimated from the last
// accepted pose change.
func (b *RigidBody) Velocity() r3.Vector { return b.velocity }
