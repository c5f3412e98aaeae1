package rules

import (
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
)

// Bounds holds the detection thresholds for a single parameter. The normal
// band and the spike band are configured independently: a value is a spike
// only when it is outside the normal band AND beyond a spike threshold, even
// in deployments where both bands coincide.
type Bounds struct {
	NormalMin float64
	NormalMax float64
	SpikeLow  float64
	SpikeHigh float64
	DriftLow  float64
	DriftHigh float64
}

// Thresholds is the full static rule configuration for one deployment.
type Thresholds struct {
	Temperature Bounds
	Pressure    Bounds
	Flow        Bounds

	// DriftWindow is the number of consecutive readings that must all sit
	// beyond a drift threshold before a drift anomaly fires.
	DriftWindow int

	// ReadingInterval is the nominal producer cadence. Drift durations are
	// reported as DriftWindow * ReadingInterval, not measured from actual
	// timestamps.
	ReadingInterval time.Duration

	// DropoutAfter is the maximum allowed silence per sensor; a gap must
	// strictly exceed it to fire.
	DropoutAfter time.Duration
}

// For returns the bounds configured for the given parameter.
func (t Thresholds) For(p domain.Parameter) Bounds {
	switch p {
	case domain.ParamPressure:
		return t.Pressure
	case domain.ParamFlow:
		return t.Flow
	default:
		return t.Temperature
	}
}

func title(p domain.Parameter) string {
	switch p {
	case domain.ParamPressure:
		return "Pressure"
	case domain.ParamFlow:
		return "Flow"
	default:
		return "Temperature"
	}
}

// unit returns the message suffix for a parameter, including its separator.
func unit(p domain.Parameter) string {
	switch p {
	case domain.ParamPressure:
		return " bar"
	case domain.ParamFlow:
		return " L/min"
	default:
		return "°C"
	}
}
