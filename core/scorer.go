package core

import (
	"math"

	"github.com/gustavocaldassouza/landmark-detector/model"
)

// Confidence weights. Bearing and elevation dominate because they are
// what the user actually controls by pointing; distance only modulates.
const (
	bearingWeight   = 0.4
	elevationWeight = 0.4
	distanceWeight  = 0.2
)

// RejectReason identifies which gate excluded a landmark from the
// results. Empty means the landmark passed.
type RejectReason string

const (
	RejectNone       RejectReason = ""
	RejectDistance   RejectReason = "distance"
	RejectBearing    RejectReason = "bearing"
	RejectElevation  RejectReason = "elevation"
	RejectConfidence RejectReason = "confidence"
)

// VisibilityScorer decides whether the observer is pointing at a given
// landmark and how confidently. Each landmark is evaluated through a
// sequence of hard-reject gates (distance band, bearing match,
// elevation match) before the surviving candidates are scored.
// Thresholds are exported so callers can tune them after construction.
type VisibilityScorer struct {
	// MinDetectionDistanceM rejects landmarks the observer is standing
	// on or inside; bearing is meaningless at point-blank range.
	MinDetectionDistanceM float64

	// MaxDetectionDistanceM rejects landmarks too far away to plausibly
	// be what the user is looking at.
	MaxDetectionDistanceM float64

	// BearingToleranceDeg is the maximum allowed difference between the
	// smoothed heading and the true bearing to the landmark.
	BearingToleranceDeg float64

	// ElevationToleranceDeg is the maximum allowed difference between
	// the smoothed pitch and the expected elevation angle.
	ElevationToleranceDeg float64

	// MinConfidence excludes weak matches from the result list.
	MinConfidence float64
}

// NewVisibilityScorer returns a scorer with the default thresholds.
func NewVisibilityScorer() *VisibilityScorer {
	return &VisibilityScorer{
		MinDetectionDistanceM: 50,
		MaxDetectionDistanceM: 3000,
		BearingToleranceDeg:   5,
		ElevationToleranceDeg: 8,
		MinConfidence:         0.3,
	}
}

// Evaluate scores one landmark against the current observer position
// and smoothed orientation. It returns the detection and RejectNone on
// a match, or a zero detection and the gate that failed. No state is
// carried between landmarks; every call is independent.
func (vs *VisibilityScorer) Evaluate(pos model.Position, orient model.Orientation, lm *model.Landmark) (model.Detection, RejectReason) {
	observer := LatLon{Latitude: pos.Latitude, Longitude: pos.Longitude}
	target := LatLon{Latitude: lm.Latitude, Longitude: lm.Longitude}

	// 1) Distance band.
	dist := Distance(observer, target)
	if dist < vs.MinDetectionDistanceM || dist > vs.MaxDetectionDistanceM {
		return model.Detection{}, RejectDistance
	}

	// 2) Bearing match against the smoothed heading.
	bearing := Bearing(observer, target)
	bearingDiff := AngularDifference(orient.HeadingDegrees, bearing)
	if bearingDiff > vs.BearingToleranceDeg {
		return model.Detection{}, RejectBearing
	}

	// 3) Elevation match against the smoothed pitch.
	elevation := ElevationAngle(pos.AltitudeMeters, lm, dist)
	elevationDiff := math.Abs(orient.PitchDegrees - elevation)
	if elevationDiff > vs.ElevationToleranceDeg {
		return model.Detection{}, RejectElevation
	}

	// 4) Component scores, each in [0, 1].
	bearingAccuracy := 1 - bearingDiff/vs.BearingToleranceDeg
	elevationAccuracy := 1 - elevationDiff/vs.ElevationToleranceDeg
	distScore := vs.distanceScore(dist, lm)

	confidence := bearingWeight*bearingAccuracy +
		elevationWeight*elevationAccuracy +
		distanceWeight*distScore
	if confidence < vs.MinConfidence {
		return model.Detection{}, RejectConfidence
	}

	return model.Detection{
		LandmarkID:            lm.ID,
		Confidence:            confidence,
		DistanceMeters:        dist,
		BearingDegrees:        bearing,
		ElevationAngleDegrees: elevation,
		BearingAccuracy:       bearingAccuracy,
		ElevationAccuracy:     elevationAccuracy,
	}, RejectNone
}

// distanceScore maps distance onto [0, 1] using breakpoints scaled by
// the landmark's footprint: full score out to the optimal viewing
// distance, decaying to 0.4 at the edge of the "good" band, then to
// zero at the absolute cut-off. Larger structures stay recognisable
// further out, so their bands stretch with footprint radius.
func (vs *VisibilityScorer) distanceScore(dist float64, lm *model.Landmark) float64 {
	optimal := math.Max(2*lm.FootprintRadiusMeters, 100)
	maxGood := math.Max(8*lm.FootprintRadiusMeters, 500)
	absoluteMax := math.Min(vs.MaxDetectionDistanceM, 2000)

	// The absolute cut-off wins even when a huge footprint stretches
	// the "good" band past it.
	if dist >= absoluteMax {
		return 0
	}

	switch {
	case dist <= optimal:
		return 1.0
	case dist <= maxGood:
		return 1.0 - 0.6*(dist-optimal)/(maxGood-optimal)
	case dist < absoluteMax:
		return 0.4 * (absoluteMax - dist) / (absoluteMax - maxGood)
	default:
		return 0
	}
}
