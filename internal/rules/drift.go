package rules

import (
	"fmt"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
)

// Drift flags sustained runs of abnormal values: a drift anomaly fires when
// the last DriftWindow consecutive values for a (sensor, parameter) all sit
// strictly above the high drift threshold, or all strictly below the low one.
type Drift struct {
	thresholds Thresholds
	store      *Store
}

func NewDrift(t Thresholds, store *Store) *Drift {
	return &Drift{thresholds: t, store: store}
}

// Check pushes the reading's values into the sensor's windows, then tests
// each parameter independently. A window below capacity never fires; the
// high condition is checked first and suppresses the low one.
func (d *Drift) Check(r *domain.Reading) []domain.Anomaly {
	var out []domain.Anomaly
	for _, p := range domain.Parameters {
		w := d.store.Push(r.SensorID, p, r.Value(p))
		if len(w) != d.store.WindowCap() {
			continue
		}

		b := d.thresholds.For(p)
		switch {
		case allAbove(w, b.DriftHigh):
			out = append(out, d.anomaly(r, p, w[len(w)-1],
				fmt.Sprintf("%s drift detected: sustained >%g%s for last %d readings.",
					title(p), b.DriftHigh, unit(p), len(w))))
		case allBelow(w, b.DriftLow):
			out = append(out, d.anomaly(r, p, w[len(w)-1],
				fmt.Sprintf("%s drift detected: sustained <%g%s for last %d readings.",
					title(p), b.DriftLow, unit(p), len(w))))
		}
	}
	return out
}

func (d *Drift) anomaly(r *domain.Reading, p domain.Parameter, last float64, msg string) domain.Anomaly {
	span := time.Duration(d.store.WindowCap()) * d.thresholds.ReadingInterval
	return domain.Anomaly{
		Type:            domain.AnomalyDrift,
		Timestamp:       r.Timestamp,
		SensorID:        r.SensorID,
		Parameter:       p,
		Value:           domain.Float(last),
		DurationSeconds: int(span.Seconds()),
		Message:         msg,
	}
}

func allAbove(w []float64, threshold float64) bool {
	for _, v := range w {
		if v <= threshold {
			return false
		}
	}
	return true
}

func allBelow(w []float64, threshold float64) bool {
	for _, v := range w {
		if v >= threshold {
			return false
		}
	}
	return true
}
