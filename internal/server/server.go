// Package server exposes the detector to its consumers: a JSON API for
// the current detection list and loop control, a WebSocket push of
// every published cycle, and the Prometheus metrics endpoint.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gustavocaldassouza/landmark-detector/core"
	"github.com/gustavocaldassouza/landmark-detector/internal/logging"
	"github.com/gustavocaldassouza/landmark-detector/internal/observability"
	"github.com/gustavocaldassouza/landmark-detector/model"
	"github.com/gustavocaldassouza/landmark-detector/registry"
)

// Server bundles the HTTP surface around a detector and its registry.
type Server struct {
	detector  *core.Detector
	registry  *registry.Registry
	collector *observability.DetectorCollector
	hub       *Hub
	log       logging.Logger
}

// New constructs the server and subscribes its hub to the detector's
// published cycles.
func New(det *core.Detector, reg *registry.Registry, collector *observability.DetectorCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	s := &Server{
		detector:  det,
		registry:  reg,
		collector: collector,
		hub:       NewHub(log),
		log:       log,
	}
	det.RegisterCycleListener(func(snap core.Snapshot) {
		if err := s.hub.BroadcastJSON(statusFromSnapshot(snap)); err != nil {
			log.Warn(context.Background(), "broadcast failed",
				logging.String("error", err.Error()))
		}
	})
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/detections", s.instrument("/api/detections", s.handleDetections))
	mux.Handle("GET /api/landmarks", s.instrument("/api/landmarks", s.handleLandmarks))
	mux.Handle("GET /api/status", s.instrument("/api/status", s.handleStatus))
	mux.Handle("POST /api/start", s.instrument("/api/start", s.handleStart))
	mux.Handle("POST /api/stop", s.instrument("/api/stop", s.handleStop))
	mux.HandleFunc("GET /ws", s.hub.ServeWS)
	if s.collector != nil {
		mux.Handle("GET /metrics", s.collector.Handler())
	}
	return mux
}

// Start launches the hub and an http.Server on addr. The returned
// server should be shut down by the caller; the hub stops when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context, addr string) *http.Server {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error(ctx, "http server exited", logging.String("error", err.Error()))
		}
	}()

	s.log.Info(ctx, "serving detector API", logging.String("addr", addr))
	return srv
}

// status is the JSON shape shared by /api/detections, /api/status and
// the WebSocket push.
type status struct {
	Detecting  bool              `json:"detecting"`
	Detections []model.Detection `json:"detections"`
	Error      string            `json:"error,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func statusFromSnapshot(snap core.Snapshot) status {
	st := status{
		Detecting:  snap.Detecting,
		Detections: snap.Detections,
		UpdatedAt:  snap.UpdatedAt,
	}
	if st.Detections == nil {
		st.Detections = []model.Detection{}
	}
	if snap.Err != nil {
		st.Error = snap.Err.Error()
	}
	return st
}

func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusFromSnapshot(s.detector.Snapshot()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.detector.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"detecting":  snap.Detecting,
		"detections": len(snap.Detections),
		"landmarks":  s.registry.Len(),
		"clients":    s.hub.ClientCount(),
		"error":      errString(snap.Err),
		"updated_at": snap.UpdatedAt,
	})
}

func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx, log := logging.WithRequestLogger(r.Context(), s.log)
	if err := s.detector.Start(); err != nil {
		log.Error(ctx, "start failed", logging.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	log.Info(ctx, "detection start requested")
	writeJSON(w, http.StatusOK, map[string]bool{"detecting": s.detector.IsDetecting()})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	ctx, log := logging.WithRequestLogger(r.Context(), s.log)
	s.detector.Stop()
	log.Info(ctx, "detection stop requested")
	writeJSON(w, http.StatusOK, map[string]bool{"detecting": s.detector.IsDetecting()})
}

// instrument wraps a handler with the Prometheus request middleware
// when a collector is configured.
func (s *Server) instrument(path string, fn http.HandlerFunc) http.Handler {
	if s.collector == nil {
		return fn
	}
	return s.collector.Middleware(path, fn)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
