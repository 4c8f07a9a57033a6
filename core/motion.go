package core

import (
	"math"
	"time"

	"github.com/gustavocaldassouza/landmark-detector/model"
)

// MotionModel yields a simulated observer's position for a given time.
// Used by the simulated location provider in the demo binary and in
// tests.
type MotionModel interface {
	PositionAt(t time.Time) model.Position
}

// StaticMotionModel keeps the observer at a fixed position.
type StaticMotionModel struct {
	Pos model.Position
}

// PositionAt for static motion always returns the same fix.
func (m *StaticMotionModel) PositionAt(time.Time) model.Position {
	return m.Pos
}

// PathMotionModel walks the observer along a sequence of waypoints at
// a constant speed, interpolating linearly within each leg and
// stopping at the final waypoint. Leg lengths use great-circle
// distance; linear lat/lon interpolation is fine at walking scales.
type PathMotionModel struct {
	Waypoints []model.Position
	SpeedMps  float64
	Start     time.Time
}

// PositionAt returns the interpolated position after walking from
// Start at SpeedMps.
func (m *PathMotionModel) PositionAt(t time.Time) model.Position {
	if len(m.Waypoints) == 0 {
		return model.Position{}
	}
	if len(m.Waypoints) == 1 || m.SpeedMps <= 0 || !t.After(m.Start) {
		return m.Waypoints[0]
	}

	travelled := m.SpeedMps * t.Sub(m.Start).Seconds()
	for i := 0; i < len(m.Waypoints)-1; i++ {
		a, b := m.Waypoints[i], m.Waypoints[i+1]
		leg := Distance(
			LatLon{Latitude: a.Latitude, Longitude: a.Longitude},
			LatLon{Latitude: b.Latitude, Longitude: b.Longitude},
		)
		if travelled <= leg || leg == 0 {
			frac := 0.0
			if leg > 0 {
				frac = travelled / leg
			}
			return model.Position{
				Latitude:       a.Latitude + (b.Latitude-a.Latitude)*frac,
				Longitude:      a.Longitude + (b.Longitude-a.Longitude)*frac,
				AltitudeMeters: a.AltitudeMeters + (b.AltitudeMeters-a.AltitudeMeters)*frac,
				AccuracyMeters: a.AccuracyMeters,
			}
		}
		travelled -= leg
	}
	return m.Waypoints[len(m.Waypoints)-1]
}

// OrientationModel yields a simulated device attitude for a given
// time.
type OrientationModel interface {
	OrientationAt(t time.Time) model.Orientation
}

// FixedOrientationModel holds a constant attitude.
type FixedOrientationModel struct {
	Orient model.Orientation
}

// OrientationAt for a fixed model always returns the same attitude.
func (m *FixedOrientationModel) OrientationAt(time.Time) model.Orientation {
	return m.Orient
}

// SweepOrientationModel pans the heading sinusoidally around a centre,
// holding pitch and roll constant. Mimics a user slowly scanning the
// skyline.
type SweepOrientationModel struct {
	CenterHeading float64
	SweepWidthDeg float64
	SweepPeriod   time.Duration
	PitchDegrees  float64
	Start         time.Time
}

// OrientationAt returns the attitude at time t along the sweep.
func (m *SweepOrientationModel) OrientationAt(t time.Time) model.Orientation {
	heading := m.CenterHeading
	if m.SweepPeriod > 0 && m.SweepWidthDeg > 0 {
		phase := 2 * math.Pi * t.Sub(m.Start).Seconds() / m.SweepPeriod.Seconds()
		heading += m.SweepWidthDeg / 2 * math.Sin(phase)
	}
	return model.Orientation{
		HeadingDegrees: NormalizeBearing(heading),
		PitchDegrees:   m.PitchDegrees,
	}
}
