package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DetectorCollector bundles Prometheus metrics for the detection loop
// and the HTTP surface, and provides helpers to wire them into
// handlers.
type DetectorCollector struct {
	gatherer prometheus.Gatherer

	Cycles        *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	Detections    *prometheus.CounterVec
	Rejections    *prometheus.CounterVec

	CurrentDetections  prometheus.Gauge
	RegistryLandmarks  prometheus.Gauge
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// Cycle outcome labels.
const (
	CycleOutcomeOK                     = "ok"
	CycleOutcomePositionUnavailable    = "position_unavailable"
	CycleOutcomeOrientationUnavailable = "orientation_unavailable"
)

// NewDetectorCollector registers detector Prometheus metrics against
// the provided registerer, defaulting to the global Prometheus registry
// when nil.
func NewDetectorCollector(reg prometheus.Registerer) (*DetectorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detector_cycles_total",
		Help: "Total number of detection cycles, labeled by outcome.",
	}, []string{"outcome"})
	cycles, err := registerCounterVec(reg, cycles, "detector_cycles_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "detector_cycle_duration_seconds",
		Help:    "Detection cycle latency in seconds.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}), "detector_cycle_duration_seconds")
	if err != nil {
		return nil, err
	}

	detections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detector_detections_total",
		Help: "Total number of landmark detections, labeled by landmark ID.",
	}, []string{"landmark"})
	detections, err = registerCounterVec(reg, detections, "detector_detections_total")
	if err != nil {
		return nil, err
	}

	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detector_rejections_total",
		Help: "Total number of per-landmark rejections, labeled by the gate that failed.",
	}, []string{"gate"})
	rejections, err = registerCounterVec(reg, rejections, "detector_rejections_total")
	if err != nil {
		return nil, err
	}

	current, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "detector_current_detections",
		Help: "Number of landmarks in the most recently published detection list.",
	}), "detector_current_detections")
	if err != nil {
		return nil, err
	}

	landmarks, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "detector_registry_landmarks",
		Help: "Number of landmarks loaded in the registry.",
	}), "detector_registry_landmarks")
	if err != nil {
		return nil, err
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detector_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by path and status code.",
	}, []string{"path", "code"})
	httpRequests, err = registerCounterVec(reg, httpRequests, "detector_http_requests_total")
	if err != nil {
		return nil, err
	}

	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "detector_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"path"})
	httpLatency, err = registerHistogramVec(reg, httpLatency, "detector_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &DetectorCollector{
		gatherer:           gatherer,
		Cycles:             cycles,
		CycleDuration:      duration,
		Detections:         detections,
		Rejections:         rejections,
		CurrentDetections:  current,
		RegistryLandmarks:  landmarks,
		HTTPRequests:       httpRequests,
		HTTPRequestLatency: httpLatency,
	}, nil
}

// ObserveCycle records one detection cycle: its outcome label, wall
// duration, and the size of the published list.
func (c *DetectorCollector) ObserveCycle(outcome string, duration time.Duration, results int) {
	if c == nil {
		return
	}
	if c.Cycles != nil {
		c.Cycles.WithLabelValues(outcome).Inc()
	}
	if c.CycleDuration != nil {
		c.CycleDuration.Observe(duration.Seconds())
	}
	if c.CurrentDetections != nil {
		c.CurrentDetections.Set(float64(results))
	}
}

// ObserveDetection counts a published detection for a landmark.
func (c *DetectorCollector) ObserveDetection(landmarkID string) {
	if c == nil || c.Detections == nil {
		return
	}
	c.Detections.WithLabelValues(landmarkID).Inc()
}

// ObserveRejection counts a landmark excluded by the named gate.
func (c *DetectorCollector) ObserveRejection(gate string) {
	if c == nil || c.Rejections == nil {
		return
	}
	c.Rejections.WithLabelValues(gate).Inc()
}

// SetRegistrySize records how many landmarks the registry holds.
func (c *DetectorCollector) SetRegistrySize(n int) {
	if c == nil || c.RegistryLandmarks == nil {
		return
	}
	c.RegistryLandmarks.Set(float64(n))
}

// Middleware records request counts and durations for HTTP handlers.
func (c *DetectorCollector) Middleware(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		if c == nil {
			return
		}
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(path, strconv.Itoa(sw.code)).Inc()
		}
		if c.HTTPRequestLatency != nil {
			c.HTTPRequestLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *DetectorCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
