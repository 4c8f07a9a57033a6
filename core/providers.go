package core

import (
	"errors"

	"github.com/gustavocaldassouza/landmark-detector/model"
)

// ErrPositionUnavailable is reported while no location fix exists or
// the location provider is stopped. Transient: the next cycle retries.
var ErrPositionUnavailable = errors.New("position unavailable")

// ErrOrientationUnavailable is reported while no attitude sample exists
// or the motion sensors are stopped. Transient like the above.
var ErrOrientationUnavailable = errors.New("orientation unavailable")

// LocationProvider supplies the observer's current GPS position. The
// detection loop polls it once per cycle; implementations hold their
// latest fix behind a lock and replace it as a whole record.
type LocationProvider interface {
	Start() error
	Stop()

	// Position returns the latest fix, or ErrPositionUnavailable when
	// none has arrived yet or the provider is stopped.
	Position() (model.Position, error)
}

// OrientationProvider supplies raw device attitude samples at a fixed
// sample rate. The detection loop polls it at that rate and feeds each
// sample through the orientation smoother.
type OrientationProvider interface {
	Start() error
	Stop()

	// Orientation returns the latest raw sample, or
	// ErrOrientationUnavailable when sensors are not delivering.
	Orientation() (model.Orientation, error)
}
