// Package tracker implements the multi-rigid-body motion capture core:
// initialization (labeling the first observed cloud), per-frame pose update
// via constrained ICP, and dynamics gating.
package tracker

import (
	"time"

	"github.com/pkg/errors"

	"github.com/IMRCLab/librigidbodytracker/logging"
	"github.com/IMRCLab/librigidbodytracker/pointcloud"
)

// Tracker owns the configuration tables and rigid-body states, and
// orchestrates the Initializer and FrameUpdater.
//
// A Tracker performs no internal parallelism: a single call to UpdateAt runs
// to completion before another may begin.
type Tracker struct {
	dynamicsConfigurations []DynamicsConfiguration
	markerConfigurations   []MarkerConfiguration
	rigidBodies            []*RigidBody

	initialized bool

	logger logging.Logger
	warnFn func(string)
}

// New constructs a Tracker. dynamicsConfigurations and markerConfigurations
// are read-only after construction; rigidBodies'
// initialTransformation seeds their lastTransformation. Returns
// ErrInvalidMarkerConfigIndex or ErrInvalidDynamicsConfigIndex if any body
// references an out-of-range configuration index.
func New(
	dynamicsConfigurations []DynamicsConfiguration,
	markerConfigurations []MarkerConfiguration,
	rigidBodies []*RigidBody,
	logger logging.Logger,
) (*Tracker, error) {
	for _, b := range rigidBodies {
		if b.markerCfgIdx < 0 || b.markerCfgIdx >= len(markerConfigurations) {
			return nil, errors.Wrapf(ErrInvalidMarkerConfigIndex, "rigid body %q (index %d)", b.name, b.markerCfgIdx)
		}
		if b.dynCfgIdx < 0 || b.dynCfgIdx >= len(dynamicsConfigurations) {
			return nil, errors.Wrapf(ErrInvalidDynamicsConfigIndex, "rigid body %q (index %d)", b.name, b.dynCfgIdx)
		}
	}
	if logger == nil {
		logger = logging.NewBlankLogger("tracker")
	}
	return &Tracker{
		dynamicsConfigurations: dynamicsConfigurations,
		markerConfigurations:   markerConfigurations,
		rigidBodies:            rigidBodies,
		logger:                 logger,
	}, nil
}

// Update is a convenience that stamps the frame with the current wall-clock
// time.
func (t *Tracker) Update(cloud pointcloud.Cloud) error {
	return t.UpdateAt(time.Now(), cloud)
}

// UpdateAt is the tracker's main entry point. If the
// tracker has not yet completed initialization, it attempts initialization
// against cloud first; success is sticky and never reverts. If
// initialization still has not succeeded, a warning is emitted and state is
// left untouched. Otherwise the FrameUpdater advances every rigid body.
func (t *Tracker) UpdateAt(stamp time.Time, cloud pointcloud.Cloud) error {
	if !t.initialized {
		t.initialized = initialize(t.rigidBodies, t.markerConfigurations, cloud, t.logger)
		if !t.initialized {
			t.logWarn("rigid body tracker initialization failed - check that position is correct, " +
				"all markers are visible, and marker configuration matches config file")
			return nil
		}
	}
	return updateFrame(t.rigidBodies, t.dynamicsConfigurations, t.markerConfigurations, stamp, cloud, t.logWarn)
}

// RigidBodies returns read-only access to the current rigid-body states.
func (t *Tracker) RigidBodies() []*RigidBody {
	return t.rigidBodies
}

// Initialized reports whether the tracker has completed its (sticky, one-way)
// initialization transition.
func (t *Tracker) Initialized() bool {
	return t.initialized
}

// SetLogWarningCallback installs a sink for human-readable warning messages
// about per-frame, non-fatal failures. The callback must not
// block or call back into the Tracker.
func (t *Tracker) SetLogWarningCallback(fn func(string)) {
	t.warnFn = fn
}

func (t *Tracker) logWarn(msg string) {
	t.logger.Warnw(msg)
	if t.warnFn != nil {
		t.warnFn(msg)
	}
}
