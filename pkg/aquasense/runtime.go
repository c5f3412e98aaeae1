package aquasense

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/observability"
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/opcua"
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/simulator"
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/snapshot"
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/summarizer"
	"github.com/The-Vheed/AquaSense-Monitor/internal/app/detector"
	"github.com/The-Vheed/AquaSense-Monitor/internal/app/server"
	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
)

// NewSimulator returns the config's synthetic reading generator as a
// standalone Collector, for producing readings outside a Runtime.
func NewSimulator(cfg *Config) Collector {
	return simulator.NewGenerator(cfg.Source.Simulator, cfg.Thresholds())
}

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	collector     Collector
	snapshots     SnapshotStore
	summarizer    Summarizer
	observability Observability
}

// WithCollector injects a custom reading source (MQTT, Modbus, replay, etc.).
func WithCollector(col Collector) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.collector = col
	}
}

// WithSnapshotStore lets callers bring their own persistence backend.
func WithSnapshotStore(s SnapshotStore) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.snapshots = s
	}
}

// WithSummarizer overrides the default Ollama summarizer.
func WithSummarizer(sum Summarizer) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.summarizer = sum
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// Runtime wires the reading source → detector → ledger path together with
// the HTTP transport, metrics server, and retention sweeper, and exposes
// simple lifecycle hooks for embedding the monitor inside any Go service.
type Runtime struct {
	cfg *Config
	obs ports.Observability
	svc *detector.Service
	col ports.Collector

	httpSrv    *http.Server
	metricsSrv *http.Server

	readingsCh  chan *domain.Reading
	stopCh      chan struct{}
	feedDoneCh  chan struct{}
	sweepDoneCh chan struct{}
}

// NewRuntime bootstraps the default adapters (file snapshot store, Prometheus
// observability, source per config, Ollama summarizer). RuntimeOption values
// override any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs()
	}

	snap := overrides.snapshots
	if snap == nil {
		fs, err := snapshot.NewFileStore(cfg.Snapshot.Dir)
		if err != nil {
			return nil, err
		}
		snap = fs
	}

	svc, err := detector.New(detector.Config{
		Thresholds:    cfg.Thresholds(),
		MaxAnomalies:  cfg.Ledger.MaxEntries,
		Retention:     cfg.Ledger.Retention,
		SweepInterval: cfg.Ledger.SweepInterval,
	}, snap, obs)
	if err != nil {
		return nil, err
	}

	col := overrides.collector
	if col == nil {
		switch cfg.Source.Kind {
		case "simulator":
			col = simulator.NewGenerator(cfg.Source.Simulator, cfg.Thresholds())
		case "opcua":
			col, err = opcua.NewCollector(cfg.Source.OPCUA)
			if err != nil {
				return nil, err
			}
		}
		// "http": readings arrive through POST /data only.
	}

	sum := overrides.summarizer
	if sum == nil {
		sum = summarizer.NewOllama(cfg.Ollama)
	}

	rt := &Runtime{
		cfg: cfg,
		obs: obs,
		svc: svc,
		col: col,
	}
	rt.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(svc, sum, obs).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return rt, nil
}

// Detector exposes the core service for direct in-process ingestion.
func (r *Runtime) Detector() *detector.Service {
	if r == nil {
		return nil
	}
	return r.svc
}

// Start launches the collector, HTTP transport, metrics server, and
// retention sweeper. It returns immediately; call Run to block on a context
// instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	r.stopCh = make(chan struct{})
	r.sweepDoneCh = make(chan struct{})

	if r.col != nil {
		r.readingsCh = make(chan *domain.Reading, 64)
		if err := r.col.Start(r.readingsCh); err != nil {
			return err
		}
		r.feedDoneCh = make(chan struct{})
		go r.feed()
	}

	go func() {
		if err := r.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server exited: %v", err)
		}
	}()

	r.startMetrics()

	go func() {
		r.svc.RunSweeper(r.stopCh)
		close(r.sweepDoneCh)
	}()

	r.obs.LogInfo("runtime_started",
		ports.Field{Key: "addr", Value: r.cfg.Server.Addr},
		ports.Field{Key: "source", Value: r.cfg.Source.Kind})
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown, flushing a final
// snapshot.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the collector, servers, and sweeper, then flushes the final
// snapshot through the detector.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.col != nil {
		if err := r.col.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.stopCh != nil {
		close(r.stopCh)
	}
	if r.feedDoneCh != nil {
		<-r.feedDoneCh
	}
	if r.sweepDoneCh != nil {
		<-r.sweepDoneCh
	}

	if r.httpSrv != nil {
		if err := r.httpSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}
	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if err := r.svc.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// feed moves collector readings into the detector until shutdown.
func (r *Runtime) feed() {
	defer close(r.feedDoneCh)

	for {
		select {
		case <-r.stopCh:
			return
		case reading := <-r.readingsCh:
			if reading == nil {
				continue
			}
			if _, err := r.svc.Ingest(reading); err != nil {
				r.obs.LogError("ingest_failed", err,
					ports.Field{Key: "sensor", Value: reading.SensorID})
			}
		}
	}
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}
