package domain

import "time"

// AnomalyType classifies a detected anomaly.
type AnomalyType string

const (
	AnomalySpike   AnomalyType = "spike"
	AnomalyDrift   AnomalyType = "drift"
	AnomalyDropout AnomalyType = "dropout"
)

// Anomaly is an immutable detection result. Parameter and Value are absent
// for dropout anomalies; DurationSeconds is present for drift and dropout
// only. Field names match the snapshot file format.
type Anomaly struct {
	Type            AnomalyType `json:"type"`
	Timestamp       time.Time   `json:"timestamp"`
	SensorID        string      `json:"sensor_id"`
	Parameter       Parameter   `json:"parameter,omitempty"`
	Value           *float64    `json:"value,omitempty"`
	DurationSeconds int         `json:"duration_seconds,omitempty"`
	Message         string      `json:"message"`
}

// Float is a convenience for populating the optional Value field.
func Float(v float64) *float64 { return &v }
