package rules

import (
	"fmt"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
)

// Dropout flags sensors that went silent for longer than the allowed gap.
// The check walks every recorded last-seen timestamp but only matches the
// sensor reporting now, so per call it emits at most one anomaly: the
// reporting sensor's own prior silence. A sensor's first reading never fires.
type Dropout struct {
	thresholds Thresholds
	store      *Store
}

func NewDropout(t Thresholds, store *Store) *Dropout {
	return &Dropout{thresholds: t, store: store}
}

// Check runs the silence test against the reading's sensor and then
// unconditionally records the reading's timestamp as its last-seen.
func (d *Dropout) Check(r *domain.Reading) []domain.Anomaly {
	var out []domain.Anomaly
	d.store.RangeLastSeen(func(sensor string, last time.Time) {
		if sensor != r.SensorID {
			return
		}
		gap := r.Timestamp.Sub(last)
		if gap <= d.thresholds.DropoutAfter {
			return
		}
		out = append(out, domain.Anomaly{
			Type:            domain.AnomalyDropout,
			Timestamp:       r.Timestamp,
			SensorID:        sensor,
			DurationSeconds: int(gap.Seconds()),
			Message: fmt.Sprintf("Dropout detected for sensor '%s': No data received for more than %d seconds.",
				sensor, int(d.thresholds.DropoutAfter.Seconds())),
		})
	})

	d.store.Touch(r.SensorID, r.Timestamp)
	return out
}
