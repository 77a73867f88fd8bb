package tracker

import "github.com/pkg/errors"

// Sentinel errors for contract violations: misconfigured indices or a
// non-increasing timestamp are programmer errors, not expected per-frame
// failures, so they surface as real Go errors rather than going through the
// warning callback.
var (
	ErrInvalidMarkerConfigIndex   = errors.New("marker configuration index out of range")
	ErrInvalidDynamicsConfigIndex = errors.New("dynamics configuration index out of range")
	ErrNonIncreasingStamp         = errors.New("update stamp did not advance for a rigid body with prior valid state")
)
