package core

import (
	"math"
	"testing"

	"github.com/gustavocaldassouza/landmark-detector/model"
)

func testLandmark() *model.Landmark {
	return &model.Landmark{
		ID:                    "basilica",
		Name:                  "Basilica",
		Latitude:              45.5017,
		Longitude:             -73.5563,
		HeightMeters:          69,
		FootprintRadiusMeters: 50,
		BaseElevationMeters:   20,
	}
}

func TestScorerRejectsAtPointBlankRange(t *testing.T) {
	vs := NewVisibilityScorer()
	lm := testLandmark()

	// Observer standing at the landmark's own coordinates: always a
	// distance reject, whatever the heading.
	pos := model.Position{Latitude: lm.Latitude, Longitude: lm.Longitude, AltitudeMeters: 20}
	for _, heading := range []float64{0, 90, 180, 270} {
		_, reject := vs.Evaluate(pos, model.Orientation{HeadingDegrees: heading}, lm)
		if reject != RejectDistance {
			t.Errorf("heading %v: reject = %q, want %q", heading, reject, RejectDistance)
		}
	}
}

func TestScorerRejectsBeyondMaxDistance(t *testing.T) {
	vs := NewVisibilityScorer()
	lm := testLandmark()

	// ~5.5 km south of the landmark.
	pos := model.Position{Latitude: lm.Latitude - 0.05, Longitude: lm.Longitude, AltitudeMeters: 20}
	_, reject := vs.Evaluate(pos, model.Orientation{HeadingDegrees: 0}, lm)
	if reject != RejectDistance {
		t.Errorf("reject = %q, want %q", reject, RejectDistance)
	}
}

func TestScorerRejectsAntipode(t *testing.T) {
	vs := NewVisibilityScorer()
	lm := &model.Landmark{
		ID:           "antipode",
		Latitude:     -86.38,
		Longitude:    -1.25,
		HeightMeters: 10,
	}

	// The observer's exact antipode is the far edge of the haversine
	// domain; it must fall out of the distance gate, never score.
	pos := model.Position{Latitude: 86.38, Longitude: 178.75}
	for _, heading := range []float64{0, 90, 180, 270} {
		det, reject := vs.Evaluate(pos, model.Orientation{HeadingDegrees: heading}, lm)
		if reject != RejectDistance {
			t.Errorf("heading %v: reject = %q, want %q", heading, reject, RejectDistance)
		}
		if math.IsNaN(det.Confidence) || math.IsNaN(det.DistanceMeters) {
			t.Errorf("heading %v: NaN leaked into the detection: %+v", heading, det)
		}
	}
}

func TestScorerRejectsWrongHeading(t *testing.T) {
	vs := NewVisibilityScorer()
	lm := testLandmark()

	// Observer ~500 m south, landmark due north, but facing east:
	// bearing difference ~90° rejects regardless of everything else.
	pos := model.Position{Latitude: lm.Latitude - 0.0045, Longitude: lm.Longitude, AltitudeMeters: 20}
	_, reject := vs.Evaluate(pos, model.Orientation{HeadingDegrees: 90}, lm)
	if reject != RejectBearing {
		t.Errorf("reject = %q, want %q", reject, RejectBearing)
	}
}

func TestScorerRejectsWrongPitch(t *testing.T) {
	vs := NewVisibilityScorer()
	lm := testLandmark()

	pos := model.Position{Latitude: lm.Latitude - 0.0045, Longitude: lm.Longitude, AltitudeMeters: 20}
	// Staring at the ground while the landmark sits near the horizon.
	_, reject := vs.Evaluate(pos, model.Orientation{HeadingDegrees: 0, PitchDegrees: -45}, lm)
	if reject != RejectElevation {
		t.Errorf("reject = %q, want %q", reject, RejectElevation)
	}
}

func TestScorerPerfectAlignmentDueNorth(t *testing.T) {
	vs := NewVisibilityScorer()

	// A stadium-scale landmark 500 m due north; heading 0 and pitch on
	// the computed elevation should score near-perfectly.
	lm := &model.Landmark{
		ID:                    "stadium",
		Latitude:              45.5045,
		Longitude:             -73.5563,
		HeightMeters:          60,
		FootprintRadiusMeters: 250,
		BaseElevationMeters:   20,
	}
	pos := model.Position{Latitude: lm.Latitude - 500/111194.9, Longitude: lm.Longitude, AltitudeMeters: 20}

	dist := Distance(
		LatLon{Latitude: pos.Latitude, Longitude: pos.Longitude},
		LatLon{Latitude: lm.Latitude, Longitude: lm.Longitude},
	)
	pitch := ElevationAngle(pos.AltitudeMeters, lm, dist)

	det, reject := vs.Evaluate(pos, model.Orientation{HeadingDegrees: 0, PitchDegrees: pitch}, lm)
	if reject != RejectNone {
		t.Fatalf("reject = %q, want pass", reject)
	}
	if det.Confidence < 0.9 {
		t.Errorf("confidence = %v, want >= 0.9", det.Confidence)
	}
	if det.BearingAccuracy < 0.99 {
		t.Errorf("bearing accuracy = %v, want ~1", det.BearingAccuracy)
	}
	if det.ElevationAccuracy < 0.99 {
		t.Errorf("elevation accuracy = %v, want ~1", det.ElevationAccuracy)
	}
}

func TestScorerMontrealScenario(t *testing.T) {
	vs := NewVisibilityScorer()
	lm := testLandmark()

	// Observer ~390 m due west of the landmark at matching base
	// altitude, facing east with pitch on the expected elevation.
	pos := model.Position{Latitude: 45.5017, Longitude: -73.5613, AltitudeMeters: 20}

	det, reject := vs.Evaluate(pos, model.Orientation{HeadingDegrees: 90, PitchDegrees: 4.81}, lm)
	if reject != RejectNone {
		t.Fatalf("reject = %q, want pass", reject)
	}
	if det.Confidence <= 0.85 {
		t.Errorf("confidence = %v, want > 0.85", det.Confidence)
	}
	if math.Abs(det.DistanceMeters-390) > 5 {
		t.Errorf("distance = %v m, want 390 ± 5", det.DistanceMeters)
	}
	if math.Abs(det.ElevationAngleDegrees-4.81) > 0.1 {
		t.Errorf("elevation angle = %v, want ~4.81", det.ElevationAngleDegrees)
	}
}

func TestScorerConfidenceFloor(t *testing.T) {
	vs := NewVisibilityScorer()
	vs.MinConfidence = 0.99
	lm := testLandmark()

	// Slightly off on bearing: passes the gates but cannot reach an
	// artificially high confidence floor.
	pos := model.Position{Latitude: 45.5017, Longitude: -73.5613, AltitudeMeters: 20}
	_, reject := vs.Evaluate(pos, model.Orientation{HeadingDegrees: 93, PitchDegrees: 4.81}, lm)
	if reject != RejectConfidence {
		t.Errorf("reject = %q, want %q", reject, RejectConfidence)
	}
}

func TestDistanceScoreMonotonicDecay(t *testing.T) {
	vs := NewVisibilityScorer()
	lm := testLandmark() // optimal 100 m, maxGood 500 m, absolute 2000 m

	prev := math.Inf(1)
	for d := 100.0; d <= 2100; d += 50 {
		score := vs.distanceScore(d, lm)
		if score < 0 || score > 1 {
			t.Fatalf("distanceScore(%v) = %v, outside [0, 1]", d, score)
		}
		if score > prev {
			t.Fatalf("distanceScore(%v) = %v increased from %v", d, score, prev)
		}
		prev = score
	}

	if got := vs.distanceScore(50, lm); got != 1.0 {
		t.Errorf("distanceScore inside optimal = %v, want 1.0", got)
	}
	if got := vs.distanceScore(500, lm); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("distanceScore at maxGood = %v, want 0.4", got)
	}
	if got := vs.distanceScore(2000, lm); got != 0 {
		t.Errorf("distanceScore at absolute max = %v, want 0", got)
	}
	if got := vs.distanceScore(5000, lm); got != 0 {
		t.Errorf("distanceScore beyond absolute max = %v, want 0", got)
	}
}

func TestDistanceScoreHugeFootprintCutoff(t *testing.T) {
	vs := NewVisibilityScorer()
	// Footprint large enough that 8× stretches past the absolute
	// cut-off; the cut-off still wins.
	lm := &model.Landmark{ID: "huge", FootprintRadiusMeters: 300}

	if got := vs.distanceScore(2100, lm); got != 0 {
		t.Errorf("distanceScore past cut-off = %v, want 0", got)
	}
}
