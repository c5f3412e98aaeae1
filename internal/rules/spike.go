package rules

import (
	"fmt"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
)

// Spike flags single readings that leave the normal band and additionally
// breach a spike threshold. Pure: no state is read or written.
type Spike struct {
	thresholds Thresholds
}

func NewSpike(t Thresholds) *Spike {
	return &Spike{thresholds: t}
}

// Check evaluates each parameter independently, in canonical order, and
// returns at most one spike anomaly per parameter.
func (s *Spike) Check(r *domain.Reading) []domain.Anomaly {
	var out []domain.Anomaly
	for _, p := range domain.Parameters {
		b := s.thresholds.For(p)
		v := r.Value(p)
		if v >= b.NormalMin && v <= b.NormalMax {
			continue
		}
		if v > b.SpikeHigh || v < b.SpikeLow {
			out = append(out, domain.Anomaly{
				Type:      domain.AnomalySpike,
				Timestamp: r.Timestamp,
				SensorID:  r.SensorID,
				Parameter: p,
				Value:     domain.Float(v),
				Message:   fmt.Sprintf("%s spike detected: %g%s.", title(p), v, unit(p)),
			})
		}
	}
	return out
}
