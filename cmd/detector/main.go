package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/gustavocaldassouza/landmark-detector/core"
	"github.com/gustavocaldassouza/landmark-detector/internal/logging"
	"github.com/gustavocaldassouza/landmark-detector/internal/observability"
	"github.com/gustavocaldassouza/landmark-detector/internal/server"
	"github.com/gustavocaldassouza/landmark-detector/model"
	"github.com/gustavocaldassouza/landmark-detector/registry"
)

func main() {
	httpAddr := flag.String("http-addr", ":8080", "HTTP address for the detector API, WebSocket push, and /metrics")
	landmarkPath := flag.String("landmarks", "", "path to a JSON landmark file; empty uses the built-in Montreal set")
	interval := flag.Duration("interval", core.DefaultCycleInterval, "detection cycle interval")
	sampleInterval := flag.Duration("sample-interval", core.DefaultSampleInterval, "orientation sampling interval")
	window := flag.Int("smoothing-window", core.DefaultSmoothingWindow, "orientation smoothing window size in samples")

	// Simulated observer: a fixed position scanning the skyline. Real
	// deployments replace these providers with platform sensor bridges.
	simLat := flag.Float64("sim-lat", 45.5043, "simulated observer latitude")
	simLon := flag.Float64("sim-lon", -73.5600, "simulated observer longitude")
	simAlt := flag.Float64("sim-alt", 20, "simulated observer altitude in metres")
	simHeading := flag.Float64("sim-heading", 90, "simulated sweep centre heading in degrees")
	simSweep := flag.Float64("sim-sweep", 30, "simulated sweep width in degrees")
	simPeriod := flag.Duration("sim-period", 20*time.Second, "simulated sweep period")
	simPitch := flag.Float64("sim-pitch", 5, "simulated pitch in degrees")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewDetectorCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	reg := loadRegistry(log, *landmarkPath)
	collector.SetRegistrySize(reg.Len())

	location := core.NewSimulatedLocationProvider(&core.StaticMotionModel{
		Pos: model.Position{
			Latitude:       *simLat,
			Longitude:      *simLon,
			AltitudeMeters: *simAlt,
		},
	})
	orientation := core.NewSimulatedOrientationProvider(&core.SweepOrientationModel{
		CenterHeading: *simHeading,
		SweepWidthDeg: *simSweep,
		SweepPeriod:   *simPeriod,
		PitchDegrees:  *simPitch,
		Start:         time.Now(),
	})

	detector := core.NewDetector(reg, location, orientation,
		core.WithLogger(log),
		core.WithMetrics(collector),
		core.WithCycleInterval(*interval),
		core.WithSampleInterval(*sampleInterval),
		core.WithSmoothingWindow(*window),
	)

	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()

	srv := server.New(detector, reg, collector, log)
	httpSrv := srv.Start(serveCtx, *httpAddr)

	if err := detector.Start(); err != nil {
		log.Error(ctx, "failed to start detection", logging.String("error", err.Error()))
		os.Exit(1)
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down detector")
	detector.Stop()
	cancelServe()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	observability.ShutdownWithTimeout(ctx, shutdownTracing, log)
}

// loadRegistry builds the landmark registry from a JSON file, or falls
// back to the built-in table when no path is given.
func loadRegistry(log logging.Logger, path string) *registry.Registry {
	if path == "" {
		reg := registry.Default()
		log.Info(context.Background(), "using built-in landmark table",
			logging.Int("count", reg.Len()))
		return reg
	}

	reg := registry.New()
	if err := reg.LoadFile(path); err != nil {
		log.Error(context.Background(), "failed to load landmark file",
			logging.String("path", path),
			logging.String("error", err.Error()),
		)
		os.Exit(1)
	}
	log.Info(context.Background(), "loaded landmark file",
		logging.String("path", path),
		logging.Int("count", reg.Len()),
	)
	return reg
}
