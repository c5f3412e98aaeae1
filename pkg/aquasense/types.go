package aquasense

import (
	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
)

// Reading is one sensor telemetry sample. Exported so custom collectors and
// embedding services can construct and ingest readings directly.
type Reading = domain.Reading

// Anomaly is one detection result.
type Anomaly = domain.Anomaly

// AnomalyType classifies an anomaly (spike, drift, dropout).
type AnomalyType = domain.AnomalyType

// Parameter identifies a measured quantity on a reading.
type Parameter = domain.Parameter

const (
	AnomalySpike   = domain.AnomalySpike
	AnomalyDrift   = domain.AnomalyDrift
	AnomalyDropout = domain.AnomalyDropout

	ParamTemperature = domain.ParamTemperature
	ParamPressure    = domain.ParamPressure
	ParamFlow        = domain.ParamFlow
)

// ErrInvalidReading marks readings rejected by validation.
var ErrInvalidReading = domain.ErrInvalidReading

// Collector streams readings from any data source into the detector.
type Collector = ports.Collector

// SnapshotStore persists the anomaly ledger between restarts.
type SnapshotStore = ports.SnapshotStore

// Summarizer turns an anomaly list into a human-readable summary.
type Summarizer = ports.Summarizer

// Observability emits metrics/logs about ingestion and detection.
type Observability = ports.Observability

// Field is a structured log/metric field used by Observability implementations.
type Field = ports.Field
