package core

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/gustavocaldassouza/landmark-detector/model"
)

// DefaultSmoothingWindow is how many raw samples each orientation
// channel averages over. At the nominal 10 Hz sample rate this is half
// a second of history.
const DefaultSmoothingWindow = 5

// OrientationSmoother damps sensor noise by averaging raw
// heading/pitch/roll samples over a fixed-size FIFO window per channel.
// Pitch and roll use a plain arithmetic mean; heading uses a circular
// mean so values straddling the 0°/360° boundary average correctly.
// Safe for concurrent use: the provider feeds samples while the
// detection loop reads the smoothed triple.
type OrientationSmoother struct {
	mu sync.Mutex

	heading ring
	pitch   ring
	roll    ring
}

// NewOrientationSmoother constructs a smoother with the given window
// size; sizes < 1 fall back to DefaultSmoothingWindow.
func NewOrientationSmoother(windowSize int) *OrientationSmoother {
	if windowSize < 1 {
		windowSize = DefaultSmoothingWindow
	}
	return &OrientationSmoother{
		heading: newRing(windowSize),
		pitch:   newRing(windowSize),
		roll:    newRing(windowSize),
	}
}

// AddSample feeds one raw orientation sample and returns the smoothed
// triple derived from the updated windows.
func (s *OrientationSmoother) AddSample(raw model.Orientation) model.Orientation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.heading.push(raw.HeadingDegrees)
	s.pitch.push(raw.PitchDegrees)
	s.roll.push(raw.RollDegrees)
	return s.smoothedLocked()
}

// Smoothed returns the current smoothed triple without feeding a new
// sample. The zero orientation is returned before any sample arrives.
func (s *OrientationSmoother) Smoothed() model.Orientation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.smoothedLocked()
}

// SampleCount returns how many samples the windows currently hold.
func (s *OrientationSmoother) SampleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heading.len()
}

// Reset drops all buffered samples.
func (s *OrientationSmoother) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heading.reset()
	s.pitch.reset()
	s.roll.reset()
}

func (s *OrientationSmoother) smoothedLocked() model.Orientation {
	if s.heading.len() == 0 {
		return model.Orientation{}
	}
	return model.Orientation{
		HeadingDegrees: circularMean(s.heading.values()),
		PitchDegrees:   stat.Mean(s.pitch.values(), nil),
		RollDegrees:    stat.Mean(s.roll.values(), nil),
	}
}

// circularMean averages angles by summing their unit vectors and
// recovering the angle of the resultant, so {350°, 10°} averages to 0°
// rather than the 180° a naive mean would produce.
func circularMean(degs []float64) float64 {
	var sinSum, cosSum float64
	for _, d := range degs {
		r := radians(d)
		sinSum += math.Sin(r)
		cosSum += math.Cos(r)
	}
	return NormalizeBearing(degrees(math.Atan2(sinSum, cosSum)))
}

// ring is a fixed-capacity FIFO of float64 samples. Once full, each
// push evicts the oldest sample.
type ring struct {
	buf  []float64
	next int
	full bool
}

func newRing(capacity int) ring {
	return ring{buf: make([]float64, 0, capacity)}
}

func (r *ring) push(v float64) {
	if !r.full {
		r.buf = append(r.buf, v)
		if len(r.buf) == cap(r.buf) {
			r.full = true
		}
		return
	}
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
}

func (r *ring) len() int { return len(r.buf) }

// values returns the buffered samples; order is irrelevant to the
// averages taken over them.
func (r *ring) values() []float64 { return r.buf }

func (r *ring) reset() {
	r.buf = r.buf[:0]
	r.next = 0
	r.full = false
}
