package detector

import (
	"testing"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/snapshot"
	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
	"github.com/The-Vheed/AquaSense-Monitor/internal/rules"
)

// nopObs satisfies the observability port without touching the default
// prometheus registry, which tests in this package share.
type nopObs struct{}

func (nopObs) LogInfo(string, ...ports.Field)            {}
func (nopObs) LogError(string, error, ...ports.Field)    {}
func (nopObs) LogCritical(string, error, ...ports.Field) {}
func (nopObs) IncCounter(string, float64)                {}
func (nopObs) ObserveLatency(string, float64)            {}
func (nopObs) SetGauge(string, float64)                  {}

var _ ports.Observability = nopObs{}

func testConfig() Config {
	return Config{
		Thresholds: rules.Thresholds{
			Temperature:     rules.Bounds{NormalMin: 10, NormalMax: 35, SpikeLow: 10, SpikeHigh: 35, DriftLow: 10, DriftHigh: 35},
			Pressure:        rules.Bounds{NormalMin: 1, NormalMax: 3, SpikeLow: 1, SpikeHigh: 3, DriftLow: 1, DriftHigh: 3},
			Flow:            rules.Bounds{NormalMin: 20, NormalMax: 100, SpikeLow: 20, SpikeHigh: 100, DriftLow: 20, DriftHigh: 100},
			DriftWindow:     8,
			ReadingInterval: 2 * time.Second,
			DropoutAfter:    10 * time.Second,
		},
		MaxAnomalies:  100,
		Retention:     2 * time.Minute,
		SweepInterval: time.Minute,
	}
}

func newService(t *testing.T, cfg Config, dir string) *Service {
	t.Helper()
	store, err := snapshot.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	svc, err := New(cfg, store, nopObs{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func reading(sensor string, ts time.Time, temp, pressure, flow float64) *domain.Reading {
	return &domain.Reading{
		SensorID:    sensor,
		Timestamp:   ts,
		Temperature: temp,
		Pressure:    pressure,
		Flow:        flow,
	}
}

func TestIngestDetectsTemperatureSpike(t *testing.T) {
	svc := newService(t, testConfig(), t.TempDir())
	defer svc.Close()

	got, err := svc.Ingest(reading("wtf-pipe-1", time.Now(), 50, 2, 60))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got))
	}
	a := got[0]
	if a.Type != domain.AnomalySpike || a.Parameter != domain.ParamTemperature {
		t.Fatalf("expected temperature spike, got %+v", a)
	}
	if a.Message != "Temperature spike detected: 50°C." {
		t.Fatalf("unexpected message: %q", a.Message)
	}
	if svc.RecentAnomalies()[0].SensorID != "wtf-pipe-1" {
		t.Fatal("anomaly not recorded in ledger")
	}
}

func TestIngestDetectsSustainedDrift(t *testing.T) {
	cfg := testConfig()
	// spike bounds well beyond the drift values so only drift fires
	cfg.Thresholds.Temperature.SpikeHigh = 60
	svc := newService(t, cfg, t.TempDir())
	defer svc.Close()

	base := time.Now()
	var got []domain.Anomaly
	for i := 0; i < 8; i++ {
		var err error
		got, err = svc.Ingest(reading("wtf-pipe-1", base.Add(time.Duration(i)*2*time.Second), 40, 2, 60))
		if err != nil {
			t.Fatalf("Ingest %d: %v", i, err)
		}
		if i < 7 && len(got) != 0 {
			t.Fatalf("reading %d: expected silence before the window fills, got %v", i, got)
		}
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 drift anomaly on the 8th reading, got %d", len(got))
	}
	a := got[0]
	if a.Type != domain.AnomalyDrift || a.Parameter != domain.ParamTemperature {
		t.Fatalf("expected temperature drift, got %+v", a)
	}
	if a.DurationSeconds != 16 {
		t.Fatalf("expected drift duration 16s, got %d", a.DurationSeconds)
	}
	if a.Message != "Temperature drift detected: sustained >35°C for last 8 readings." {
		t.Fatalf("unexpected message: %q", a.Message)
	}
}

func TestIngestDetectsDropout(t *testing.T) {
	svc := newService(t, testConfig(), t.TempDir())
	defer svc.Close()

	base := time.Now()
	if _, err := svc.Ingest(reading("wtf-pipe-1", base, 22, 2, 60)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	got, err := svc.Ingest(reading("wtf-pipe-1", base.Add(11*time.Second), 22, 2, 60))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(got) != 1 || got[0].Type != domain.AnomalyDropout {
		t.Fatalf("expected dropout, got %v", got)
	}
	if got[0].DurationSeconds != 11 {
		t.Fatalf("expected dropout duration 11s, got %d", got[0].DurationSeconds)
	}
}

func TestIngestRejectsInvalidReadingWithoutStateChange(t *testing.T) {
	svc := newService(t, testConfig(), t.TempDir())
	defer svc.Close()

	if _, err := svc.Ingest(&domain.Reading{Timestamp: time.Now()}); err == nil {
		t.Fatal("expected validation error for missing sensor id")
	}
	if got := svc.RecentAnomalies(); len(got) != 0 {
		t.Fatalf("rejected reading must not touch the ledger, got %d entries", len(got))
	}

	// the rejected reading also left no last-seen, so no dropout later
	base := time.Now()
	svc.Ingest(reading("wtf-pipe-1", base, 22, 2, 60))
	got, err := svc.Ingest(reading("wtf-pipe-1", base.Add(2*time.Second), 22, 2, 60))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected quiet follow-up, got %v, %v", got, err)
	}
}

func TestLedgerBoundHolds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAnomalies = 5
	svc := newService(t, cfg, t.TempDir())
	defer svc.Close()

	base := time.Now()
	for i := 0; i < 12; i++ {
		svc.Ingest(reading("s1", base.Add(time.Duration(i)*2*time.Second), 50, 2, 60))
	}

	if got := svc.RecentAnomalies(); len(got) != 5 {
		t.Fatalf("expected ledger capped at 5, got %d", len(got))
	}
}

func TestSweepEvictsExpiredAnomalies(t *testing.T) {
	svc := newService(t, testConfig(), t.TempDir())
	defer svc.Close()

	base := time.Now()
	// distinct sensors keep the old gap from reading as a dropout
	svc.Ingest(reading("s1", base.Add(-10*time.Minute), 50, 2, 60))
	svc.Ingest(reading("s2", base, 50, 2, 60))

	if n := svc.Sweep(base); n != 1 {
		t.Fatalf("expected 1 evicted, got %d", n)
	}
	got := svc.RecentAnomalies()
	if len(got) != 1 || !got[0].Timestamp.Equal(base) {
		t.Fatalf("expected only the fresh anomaly to survive, got %v", got)
	}

	if n := svc.Sweep(base); n != 0 {
		t.Fatalf("second sweep should evict nothing, got %d", n)
	}
}

func TestSnapshotRestoreAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc := newService(t, testConfig(), dir)
	if _, err := svc.Ingest(reading("wtf-pipe-1", time.Now(), 50, 2, 60)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	restarted := newService(t, testConfig(), dir)
	defer restarted.Close()

	got := restarted.RecentAnomalies()
	if len(got) != 1 {
		t.Fatalf("expected 1 restored anomaly, got %d", len(got))
	}
	if got[0].Type != domain.AnomalySpike || got[0].SensorID != "wtf-pipe-1" {
		t.Fatalf("restored anomaly mangled: %+v", got[0])
	}
}

func TestRestoreAppliesLedgerBound(t *testing.T) {
	dir := t.TempDir()

	svc := newService(t, testConfig(), dir)
	base := time.Now()
	for i := 0; i < 8; i++ {
		svc.Ingest(reading("s1", base.Add(time.Duration(i)*2*time.Second), 50, 2, 60))
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cfg := testConfig()
	cfg.MaxAnomalies = 3
	restarted := newService(t, cfg, dir)
	defer restarted.Close()

	got := restarted.RecentAnomalies()
	if len(got) != 3 {
		t.Fatalf("expected restore bounded to 3, got %d", len(got))
	}
	// newest entries win
	if !got[2].Timestamp.After(got[0].Timestamp) {
		t.Fatalf("expected oldest-first order after bounded restore, got %v", got)
	}
}
