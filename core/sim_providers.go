package core

import (
	"sync"

	"github.com/gustavocaldassouza/landmark-detector/model"
	"github.com/gustavocaldassouza/landmark-detector/timectrl"
)

// SimulatedLocationProvider serves fixes from a MotionModel. Before
// Start and after Stop it reports ErrPositionUnavailable, matching how
// a real GPS source behaves while disabled.
type SimulatedLocationProvider struct {
	Model MotionModel
	Clock timectrl.Clock

	mu      sync.Mutex
	started bool
}

// NewSimulatedLocationProvider wraps a motion model as a location
// provider on the system clock.
func NewSimulatedLocationProvider(m MotionModel) *SimulatedLocationProvider {
	return &SimulatedLocationProvider{Model: m, Clock: timectrl.SystemClock{}}
}

// Start implements LocationProvider.
func (p *SimulatedLocationProvider) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = true
	return nil
}

// Stop implements LocationProvider.
func (p *SimulatedLocationProvider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = false
}

// Position implements LocationProvider.
func (p *SimulatedLocationProvider) Position() (model.Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started || p.Model == nil {
		return model.Position{}, ErrPositionUnavailable
	}
	return p.Model.PositionAt(p.Clock.Now()), nil
}

// SimulatedOrientationProvider serves attitude samples from an
// OrientationModel under the same start/stop contract.
type SimulatedOrientationProvider struct {
	Model OrientationModel
	Clock timectrl.Clock

	mu      sync.Mutex
	started bool
}

// NewSimulatedOrientationProvider wraps an orientation model as an
// orientation provider on the system clock.
func NewSimulatedOrientationProvider(m OrientationModel) *SimulatedOrientationProvider {
	return &SimulatedOrientationProvider{Model: m, Clock: timectrl.SystemClock{}}
}

// Start implements OrientationProvider.
func (p *SimulatedOrientationProvider) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = true
	return nil
}

// Stop implements OrientationProvider.
func (p *SimulatedOrientationProvider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = false
}

// Orientation implements OrientationProvider.
func (p *SimulatedOrientationProvider) Orientation() (model.Orientation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started || p.Model == nil {
		return model.Orientation{}, ErrOrientationUnavailable
	}
	return p.Model.OrientationAt(p.Clock.Now()), nil
}
