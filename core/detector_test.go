package core

import (
	"errors"
	"testing"
	"time"

	"github.com/gustavocaldassouza/landmark-detector/model"
	"github.com/gustavocaldassouza/landmark-detector/registry"
	"github.com/gustavocaldassouza/landmark-detector/timectrl"
)

// testRegistry holds the single basilica landmark from testLandmark.
func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	if err := reg.Add(testLandmark()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return reg
}

// alignedProviders places the observer ~390 m west of the basilica,
// facing it with pitch on the expected elevation angle.
func alignedProviders() (*SimulatedLocationProvider, *SimulatedOrientationProvider) {
	loc := NewSimulatedLocationProvider(&StaticMotionModel{
		Pos: model.Position{Latitude: 45.5017, Longitude: -73.5613, AltitudeMeters: 20},
	})
	ori := NewSimulatedOrientationProvider(&FixedOrientationModel{
		Orient: model.Orientation{HeadingDegrees: 90, PitchDegrees: 4.81},
	})
	return loc, ori
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestDetectorLifecycle(t *testing.T) {
	loc, ori := alignedProviders()
	d := NewDetector(testRegistry(t), loc, ori,
		WithCycleInterval(20*time.Millisecond),
		WithSampleInterval(5*time.Millisecond),
	)

	if d.IsDetecting() {
		t.Fatal("detector reports Detecting before Start")
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.IsDetecting() {
		t.Fatal("detector not Detecting after Start")
	}

	waitFor(t, func() bool { return len(d.Detections()) > 0 },
		"no detection published for a perfectly aligned observer")

	dets := d.Detections()
	if dets[0].LandmarkID != "basilica" {
		t.Errorf("detected landmark = %q, want basilica", dets[0].LandmarkID)
	}
	if dets[0].Confidence <= 0.85 {
		t.Errorf("confidence = %v, want > 0.85", dets[0].Confidence)
	}
	if err := d.LastError(); err != nil {
		t.Errorf("LastError = %v, want nil", err)
	}

	d.Stop()
	if d.IsDetecting() {
		t.Error("detector still Detecting after Stop")
	}
	if got := d.Detections(); len(got) != 0 {
		t.Errorf("detections after Stop = %v, want empty", got)
	}
	if err := d.LastError(); err != nil {
		t.Errorf("LastError after Stop = %v, want nil", err)
	}

	// Stop again: must be a no-op, not a panic or deadlock.
	d.Stop()
}

func TestDetectorStartIdempotent(t *testing.T) {
	loc, ori := alignedProviders()
	d := NewDetector(testRegistry(t), loc, ori,
		WithCycleInterval(20*time.Millisecond),
		WithSampleInterval(5*time.Millisecond),
	)

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	d.Stop()
	if d.IsDetecting() {
		t.Error("detector still Detecting after single Stop")
	}
}

func TestDetectorPositionUnavailable(t *testing.T) {
	// A location provider with no model starts fine but never has a fix.
	loc := &SimulatedLocationProvider{}
	_, ori := alignedProviders()
	d := NewDetector(testRegistry(t), loc, ori,
		WithCycleInterval(20*time.Millisecond),
		WithSampleInterval(5*time.Millisecond),
	)

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	waitFor(t, func() bool { return d.LastError() != nil },
		"no error surfaced for an unavailable position")

	if err := d.LastError(); !errors.Is(err, ErrPositionUnavailable) {
		t.Errorf("LastError = %v, want ErrPositionUnavailable", err)
	}
	if got := d.Detections(); len(got) != 0 {
		t.Errorf("detections = %v, want empty while position unavailable", got)
	}
	if !d.IsDetecting() {
		t.Error("transient position error must not stop the loop")
	}
}

func TestDetectorOrientationUnavailable(t *testing.T) {
	loc, _ := alignedProviders()
	ori := &SimulatedOrientationProvider{}
	d := NewDetector(testRegistry(t), loc, ori,
		WithCycleInterval(20*time.Millisecond),
		WithSampleInterval(5*time.Millisecond),
	)

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	waitFor(t, func() bool { return d.LastError() != nil },
		"no error surfaced for an unavailable orientation")

	if err := d.LastError(); !errors.Is(err, ErrOrientationUnavailable) {
		t.Errorf("LastError = %v, want ErrOrientationUnavailable", err)
	}
}

func TestDetectorEmptyWhenNothingAligned(t *testing.T) {
	// Observer standing on the landmark: the distance gate rejects it
	// every cycle, so the published list stays empty with no error.
	loc := NewSimulatedLocationProvider(&StaticMotionModel{
		Pos: model.Position{Latitude: 45.5017, Longitude: -73.5563, AltitudeMeters: 20},
	})
	ori := NewSimulatedOrientationProvider(&FixedOrientationModel{
		Orient: model.Orientation{HeadingDegrees: 90},
	})
	d := NewDetector(testRegistry(t), loc, ori,
		WithCycleInterval(20*time.Millisecond),
		WithSampleInterval(5*time.Millisecond),
	)

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	waitFor(t, func() bool { return !d.Snapshot().UpdatedAt.IsZero() },
		"no cycle published")

	if got := d.Detections(); len(got) != 0 {
		t.Errorf("detections = %v, want empty", got)
	}
	if err := d.LastError(); err != nil {
		t.Errorf("LastError = %v, want nil", err)
	}
}

func TestDetectorCycleListener(t *testing.T) {
	loc, ori := alignedProviders()
	d := NewDetector(testRegistry(t), loc, ori,
		WithCycleInterval(20*time.Millisecond),
		WithSampleInterval(5*time.Millisecond),
	)

	snaps := make(chan Snapshot, 64)
	d.RegisterCycleListener(func(s Snapshot) {
		select {
		case snaps <- s:
		default:
		}
	})

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case s := <-snaps:
			if !s.Detecting {
				t.Errorf("listener snapshot Detecting = false, want true")
			}
			if len(s.Detections) > 0 {
				if s.Detections[0].LandmarkID != "basilica" {
					t.Errorf("listener detection = %q, want basilica", s.Detections[0].LandmarkID)
				}
				return
			}
		case <-deadline:
			t.Fatal("listener never saw a detection")
		}
	}
}

func TestSortDetections(t *testing.T) {
	dets := []model.Detection{
		{LandmarkID: "far", Confidence: 0.5, DistanceMeters: 900},
		{LandmarkID: "best", Confidence: 0.9, DistanceMeters: 400},
		{LandmarkID: "near", Confidence: 0.5, DistanceMeters: 300},
	}
	sortDetections(dets)

	want := []string{"best", "near", "far"}
	for i, id := range want {
		if dets[i].LandmarkID != id {
			t.Errorf("position %d = %q, want %q", i, dets[i].LandmarkID, id)
		}
	}
}

func TestDetectorStopStampsClock(t *testing.T) {
	loc, ori := alignedProviders()
	clock := timectrl.NewManualClock(time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC))
	d := NewDetector(testRegistry(t), loc, ori,
		WithClock(clock),
		WithCycleInterval(time.Hour), // no cycle fires during the test
	)

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(42 * time.Second)
	d.Stop()

	if got := d.Snapshot().UpdatedAt; !got.Equal(clock.Now()) {
		t.Errorf("UpdatedAt = %v, want %v from the injected clock", got, clock.Now())
	}
}

type failingLocationProvider struct{}

func (failingLocationProvider) Start() error                   { return errors.New("gps hardware offline") }
func (failingLocationProvider) Stop()                          {}
func (failingLocationProvider) Position() (model.Position, error) { return model.Position{}, ErrPositionUnavailable }

func TestDetectorStartProviderFailure(t *testing.T) {
	_, ori := alignedProviders()
	d := NewDetector(testRegistry(t), failingLocationProvider{}, ori)

	if err := d.Start(); err == nil {
		t.Fatal("Start succeeded with a failing location provider")
	}
	if d.IsDetecting() {
		t.Error("detector reports Detecting after a failed Start")
	}
}
