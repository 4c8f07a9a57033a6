package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gustavocaldassouza/landmark-detector/internal/logging"
	"github.com/gustavocaldassouza/landmark-detector/model"
	"github.com/gustavocaldassouza/landmark-detector/registry"
	"github.com/gustavocaldassouza/landmark-detector/timectrl"
)

// Cycle cadence defaults. Orientation is sampled at 10 Hz and the
// landmark set is re-scored every half second.
const (
	DefaultCycleInterval  = 500 * time.Millisecond
	DefaultSampleInterval = 100 * time.Millisecond
)

// Cycle outcome labels reported to the metrics recorder.
const (
	cycleOutcomeOK                     = "ok"
	cycleOutcomePositionUnavailable    = "position_unavailable"
	cycleOutcomeOrientationUnavailable = "orientation_unavailable"
)

// MetricsRecorder receives detection-loop measurements. Implemented by
// the observability collector; a nil recorder disables instrumentation.
type MetricsRecorder interface {
	ObserveCycle(outcome string, duration time.Duration, results int)
	ObserveDetection(landmarkID string)
	ObserveRejection(gate string)
}

// Snapshot is the detector's externally visible state at the end of a
// cycle: the full published list, the detecting flag, and the last
// error condition (nil when the cycle scored normally).
type Snapshot struct {
	Detecting  bool
	Detections []model.Detection
	Err        error
	UpdatedAt  time.Time
}

// CycleListener is invoked after every published cycle, outside the
// detector's lock. Used by the serving layer to push updates.
type CycleListener func(Snapshot)

// Detector is the periodic orchestrator: while detecting, it samples
// the orientation provider, and every cycle reads the latest position
// and smoothed orientation, scores every registry landmark, and
// publishes a ranked detection list that wholly replaces the previous
// one.
//
// Two states: Idle and Detecting, Idle initial. Start and Stop are
// idempotent. All scoring runs inline in the single loop goroutine, so
// cycles never overlap even if one overruns the interval.
type Detector struct {
	registry    *registry.Registry
	scorer      *VisibilityScorer
	location    LocationProvider
	orientation OrientationProvider
	smoother    *OrientationSmoother

	interval       time.Duration
	sampleInterval time.Duration

	clock   timectrl.Clock
	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer

	mu         sync.Mutex
	detecting  bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	detections []model.Detection
	lastErr    error
	updatedAt  time.Time
	listeners  []CycleListener
}

// Option configures a Detector at construction.
type Option func(*Detector)

// WithLogger sets the structured logger; defaults to Noop.
func WithLogger(l logging.Logger) Option {
	return func(d *Detector) { d.log = l }
}

// WithClock sets the time source; defaults to the system clock.
func WithClock(c timectrl.Clock) Option {
	return func(d *Detector) { d.clock = c }
}

// WithMetrics sets the metrics recorder; defaults to none.
func WithMetrics(m MetricsRecorder) Option {
	return func(d *Detector) { d.metrics = m }
}

// WithScorer replaces the default-threshold scorer.
func WithScorer(s *VisibilityScorer) Option {
	return func(d *Detector) { d.scorer = s }
}

// WithCycleInterval overrides the detection cycle interval.
func WithCycleInterval(interval time.Duration) Option {
	return func(d *Detector) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithSampleInterval overrides the orientation sampling interval.
func WithSampleInterval(interval time.Duration) Option {
	return func(d *Detector) {
		if interval > 0 {
			d.sampleInterval = interval
		}
	}
}

// WithSmoothingWindow overrides the orientation smoothing window size.
func WithSmoothingWindow(size int) Option {
	return func(d *Detector) { d.smoother = NewOrientationSmoother(size) }
}

// NewDetector constructs an Idle detector. The location and
// orientation providers are owned by the detector from here on: Start
// and Stop control them.
func NewDetector(reg *registry.Registry, loc LocationProvider, ori OrientationProvider, opts ...Option) *Detector {
	d := &Detector{
		registry:       reg,
		scorer:         NewVisibilityScorer(),
		location:       loc,
		orientation:    ori,
		smoother:       NewOrientationSmoother(DefaultSmoothingWindow),
		interval:       DefaultCycleInterval,
		sampleInterval: DefaultSampleInterval,
		clock:          timectrl.SystemClock{},
		log:            logging.Noop(),
		tracer:         otel.Tracer("core/detector"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterCycleListener adds a callback invoked after every published
// cycle. Register before Start; listeners persist across Stop/Start.
func (d *Detector) RegisterCycleListener(fn CycleListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Start moves Idle→Detecting: activates both providers and launches
// the cycle goroutine. No-op when already Detecting.
func (d *Detector) Start() error {
	d.mu.Lock()
	if d.detecting {
		d.mu.Unlock()
		return nil
	}

	if err := d.location.Start(); err != nil {
		d.mu.Unlock()
		return err
	}
	if err := d.orientation.Start(); err != nil {
		d.location.Stop()
		d.mu.Unlock()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.detecting = true
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(ctx)

	d.log.Info(context.Background(), "detection started",
		logging.Int("landmarks", d.registry.Len()),
		logging.String("interval", d.interval.String()),
	)
	return nil
}

// Stop moves Detecting→Idle: cancels the loop, waits for any in-flight
// cycle, deactivates both providers, and clears the detection list and
// error state. Safe to call at any point, including mid-cycle and
// repeatedly.
func (d *Detector) Stop() {
	d.mu.Lock()
	if !d.detecting {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	d.cancel = nil
	d.detecting = false
	d.mu.Unlock()

	cancel()
	d.wg.Wait()

	d.location.Stop()
	d.orientation.Stop()
	d.smoother.Reset()

	d.mu.Lock()
	d.detections = nil
	d.lastErr = nil
	d.updatedAt = d.clock.Now()
	d.mu.Unlock()

	d.log.Info(context.Background(), "detection stopped")
}

// IsDetecting reports whether the loop is running.
func (d *Detector) IsDetecting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detecting
}

// Detections returns a copy of the most recently published list.
func (d *Detector) Detections() []model.Detection {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]model.Detection, len(d.detections))
	copy(res, d.detections)
	return res
}

// LastError returns the error condition of the most recent cycle, or
// nil. All error conditions are transient; the loop keeps running.
func (d *Detector) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Snapshot returns the full externally visible state.
func (d *Detector) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Detector) snapshotLocked() Snapshot {
	detections := make([]model.Detection, len(d.detections))
	copy(detections, d.detections)
	return Snapshot{
		Detecting:  d.detecting,
		Detections: detections,
		Err:        d.lastErr,
		UpdatedAt:  d.updatedAt,
	}
}

// run is the single loop goroutine. Orientation samples and detection
// cycles interleave here; because both are handled sequentially, a
// long cycle delays the next tick instead of running concurrently with
// it.
func (d *Detector) run(ctx context.Context) {
	defer d.wg.Done()

	cycle := time.NewTicker(d.interval)
	defer cycle.Stop()
	sample := time.NewTicker(d.sampleInterval)
	defer sample.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sample.C:
			if o, err := d.orientation.Orientation(); err == nil {
				d.smoother.AddSample(o)
			}
		case <-cycle.C:
			d.runCycle(ctx)
		}
	}
}

// runCycle evaluates every registry landmark against the latest
// observer state and publishes the ranked result list.
func (d *Detector) runCycle(ctx context.Context) {
	ctx, span := d.tracer.Start(ctx, "detector.cycle")
	defer span.End()

	start := d.clock.Now()
	outcome := cycleOutcomeOK
	var cycleErr error
	var results []model.Detection

	pos, perr := d.location.Position()
	_, oerr := d.orientation.Orientation()

	switch {
	case perr != nil:
		outcome = cycleOutcomePositionUnavailable
		cycleErr = ErrPositionUnavailable
	case oerr != nil || d.smoother.SampleCount() == 0:
		outcome = cycleOutcomeOrientationUnavailable
		cycleErr = ErrOrientationUnavailable
	default:
		orient := d.smoother.Smoothed()
		for _, lm := range d.registry.List() {
			det, reject := d.scorer.Evaluate(pos, orient, lm)
			if reject != RejectNone {
				if d.metrics != nil {
					d.metrics.ObserveRejection(string(reject))
				}
				continue
			}
			results = append(results, det)
			if d.metrics != nil {
				d.metrics.ObserveDetection(det.LandmarkID)
			}
		}
		sortDetections(results)
	}

	elapsed := d.clock.Now().Sub(start)
	if d.metrics != nil {
		d.metrics.ObserveCycle(outcome, elapsed, len(results))
	}
	span.SetAttributes(
		attribute.String("cycle.outcome", outcome),
		attribute.Int("cycle.results", len(results)),
	)

	d.mu.Lock()
	// Stop may have won the race while this cycle was in flight; do not
	// resurrect a cleared list.
	if !d.detecting {
		d.mu.Unlock()
		return
	}
	d.detections = results
	d.lastErr = cycleErr
	d.updatedAt = d.clock.Now()
	listeners := append([]CycleListener{}, d.listeners...)
	snap := d.snapshotLocked()
	d.mu.Unlock()

	switch {
	case cycleErr != nil:
		d.log.Debug(ctx, "detection cycle skipped", logging.String("reason", outcome))
	case len(results) > 0:
		d.log.Debug(ctx, "detection cycle published",
			logging.Int("results", len(results)),
			logging.String("top", results[0].LandmarkID),
			logging.Float64("top_confidence", results[0].Confidence),
		)
	}

	// Notify outside the lock so listeners can call back into the
	// detector.
	for _, fn := range listeners {
		fn(snap)
	}
}

// sortDetections orders by descending confidence, breaking ties by
// ascending distance.
func sortDetections(dets []model.Detection) {
	sort.Slice(dets, func(i, j int) bool {
		if dets[i].Confidence != dets[j].Confidence {
			return dets[i].Confidence > dets[j].Confidence
		}
		return dets[i].DistanceMeters < dets[j].DistanceMeters
	})
}
