package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidReading is returned when an inbound reading fails validation.
// No detector state is mutated for a rejected reading.
var ErrInvalidReading = errors.New("invalid reading")

// Parameter identifies one of the three measured quantities on a reading.
type Parameter string

const (
	ParamTemperature Parameter = "temperature"
	ParamPressure    Parameter = "pressure"
	ParamFlow        Parameter = "flow"
)

// Parameters lists all parameters in their canonical evaluation order.
var Parameters = []Parameter{ParamTemperature, ParamPressure, ParamFlow}

// Reading is the canonical unit of water-network telemetry: one sample of
// temperature, pressure, and flow from a single sensor.
type Reading struct {
	SensorID    string    `json:"sensor_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Pressure    float64   `json:"pressure"`
	Flow        float64   `json:"flow"`
}

// Value returns the reading's value for the given parameter.
func (r *Reading) Value(p Parameter) float64 {
	switch p {
	case ParamTemperature:
		return r.Temperature
	case ParamPressure:
		return r.Pressure
	case ParamFlow:
		return r.Flow
	}
	return 0
}

// Validate rejects readings the detector must not process: missing sensor
// identity, a zero timestamp, or non-finite measurements.
func (r *Reading) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: reading is nil", ErrInvalidReading)
	}
	if r.SensorID == "" {
		return fmt.Errorf("%w: sensor_id is required", ErrInvalidReading)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidReading)
	}
	for _, p := range Parameters {
		v := r.Value(p)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidReading, p)
		}
	}
	return nil
}
