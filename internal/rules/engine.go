package rules

import "github.com/The-Vheed/AquaSense-Monitor/internal/domain"

// Engine runs the three detection rules over one reading in fixed order:
// spike, then drift, then dropout. The order, and the concatenation order of
// the results, is part of the detection contract.
type Engine struct {
	store   *Store
	spike   *Spike
	drift   *Drift
	dropout *Dropout
}

func NewEngine(t Thresholds) *Engine {
	store := NewStore(t.DriftWindow)
	return &Engine{
		store:   store,
		spike:   NewSpike(t),
		drift:   NewDrift(t, store),
		dropout: NewDropout(t, store),
	}
}

// Detect classifies one already-validated reading and returns the anomalies
// it produced, possibly none. Mutates window and last-seen state; callers
// serialize.
func (e *Engine) Detect(r *domain.Reading) []domain.Anomaly {
	var out []domain.Anomaly
	out = append(out, e.spike.Check(r)...)
	out = append(out, e.drift.Check(r)...)
	out = append(out, e.dropout.Check(r)...)
	return out
}

// Sensors reports how many distinct sensors the engine has seen.
func (e *Engine) Sensors() int { return e.store.Sensors() }
