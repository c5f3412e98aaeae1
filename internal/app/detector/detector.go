package detector

import (
	"sync"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ledger"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
	"github.com/The-Vheed/AquaSense-Monitor/internal/rules"
)

// Config sizes the detector's ledger and retention behavior.
type Config struct {
	Thresholds    rules.Thresholds
	MaxAnomalies  int
	Retention     time.Duration
	SweepInterval time.Duration
}

// Service is the detection core: it classifies readings through the rule
// engine, maintains the bounded anomaly ledger, and keeps a best-effort
// snapshot on disk. The classify-and-append sequence per reading runs as one
// atomic unit under a single mutex; the retention sweep takes the same
// exclusion. Snapshot writes happen on a dedicated goroutine fed latest-wins
// so ingestion never blocks on disk.
type Service struct {
	cfg    Config
	obs    ports.Observability
	snap   ports.SnapshotStore
	engine *rules.Engine
	ledger *ledger.Ledger

	mu sync.Mutex

	saveCh chan []domain.Anomaly
	stopCh chan struct{}
	doneCh chan struct{}
}

// New restores prior ledger state from the snapshot store and starts the
// background snapshot writer.
func New(cfg Config, snap ports.SnapshotStore, obs ports.Observability) (*Service, error) {
	s := &Service{
		cfg:    cfg,
		obs:    obs,
		snap:   snap,
		engine: rules.NewEngine(cfg.Thresholds),
		ledger: ledger.New(cfg.MaxAnomalies),
		saveCh: make(chan []domain.Anomaly, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	restored, err := snap.Load()
	if err != nil {
		return nil, err
	}
	if len(restored) > 0 {
		s.ledger.Replace(restored)
		obs.LogInfo("snapshot_restored", ports.Field{Key: "anomalies", Value: len(restored)})
	}

	go s.writeLoop()
	return s, nil
}

// Ingest validates and classifies one reading, appends whatever it produced
// to the ledger, and schedules a snapshot. It returns the anomalies detected
// for this reading only. A rejected reading mutates no state.
func (s *Service) Ingest(r *domain.Reading) ([]domain.Anomaly, error) {
	if err := r.Validate(); err != nil {
		s.obs.IncCounter("aquasense_readings_rejected_total", 1)
		return nil, err
	}

	start := time.Now()
	s.mu.Lock()
	anomalies := s.engine.Detect(r)
	s.ledger.Append(anomalies...)
	snapshot := s.ledger.Snapshot()
	sensors := s.engine.Sensors()
	s.mu.Unlock()
	s.obs.ObserveLatency("aquasense_detect_latency_seconds", time.Since(start).Seconds())

	s.obs.IncCounter("aquasense_readings_ingested_total", 1)
	for _, a := range anomalies {
		s.obs.IncCounter(counterFor(a.Type), 1)
		s.obs.LogInfo("anomaly_detected",
			ports.Field{Key: "type", Value: string(a.Type)},
			ports.Field{Key: "sensor", Value: a.SensorID},
			ports.Field{Key: "message", Value: a.Message})
	}
	s.obs.SetGauge("aquasense_ledger_size", float64(len(snapshot)))
	s.obs.SetGauge("aquasense_known_sensors", float64(sensors))

	s.scheduleSave(snapshot)
	return anomalies, nil
}

// RecentAnomalies returns a point-in-time copy of the ledger, oldest first.
func (s *Service) RecentAnomalies() []domain.Anomaly {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}

// Sweep evicts ledger entries older than the retention horizon relative to
// now and reports the count removed. Never errors.
func (s *Service) Sweep(now time.Time) int {
	s.mu.Lock()
	n := s.ledger.EvictOlderThan(now.Add(-s.cfg.Retention))
	remaining := s.ledger.Len()
	s.mu.Unlock()

	if n > 0 {
		s.obs.IncCounter("aquasense_sweep_evicted_total", float64(n))
		s.obs.SetGauge("aquasense_ledger_size", float64(remaining))
		s.obs.LogInfo("sweep_complete",
			ports.Field{Key: "evicted", Value: n},
			ports.Field{Key: "remaining", Value: remaining})
	}
	return n
}

// RunSweeper blocks, running Sweep on the configured interval until stop is
// closed.
func (s *Service) RunSweeper(stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Sweep(time.Now().UTC())
		}
	}
}

// Close stops the snapshot writer and flushes a final snapshot, best effort.
func (s *Service) Close() error {
	close(s.stopCh)
	<-s.doneCh

	if err := s.snap.Save(s.RecentAnomalies()); err != nil {
		s.obs.LogError("final_snapshot_failed", err)
		return err
	}
	return nil
}

// scheduleSave hands the snapshot to the writer goroutine, replacing any
// pending one so only the latest state hits disk.
func (s *Service) scheduleSave(snapshot []domain.Anomaly) {
	for {
		select {
		case s.saveCh <- snapshot:
			return
		default:
		}
		select {
		case <-s.saveCh:
		default:
		}
	}
}

func (s *Service) writeLoop() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			return
		case snapshot := <-s.saveCh:
			if err := s.snap.Save(snapshot); err != nil {
				s.obs.IncCounter("aquasense_snapshot_failures_total", 1)
				s.obs.LogError("snapshot_save_failed", err)
			}
		}
	}
}

func counterFor(t domain.AnomalyType) string {
	switch t {
	case domain.AnomalyDrift:
		return "aquasense_drift_anomalies_total"
	case domain.AnomalyDropout:
		return "aquasense_dropout_anomalies_total"
	default:
		return "aquasense_spike_anomalies_total"
	}
}
