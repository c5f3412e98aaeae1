package ledger

import (
	"sync"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
)

// Ledger is a bounded, insertion-ordered buffer of recently detected
// anomalies. Under ordered arrival insertion order is also timestamp order,
// which the age sweep relies on: both size eviction and the sweep only ever
// remove from the head.
type Ledger struct {
	mu   sync.Mutex
	data []domain.Anomaly
	max  int
}

func New(max int) *Ledger {
	return &Ledger{
		data: make([]domain.Anomaly, 0, max),
		max:  max,
	}
}

// Append pushes anomalies to the tail in order, evicting from the head while
// the configured bound is exceeded. Size eviction is synchronous with the
// append, independent of the retention sweep.
func (l *Ledger) Append(anomalies ...domain.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = append(l.data, anomalies...)
	if over := len(l.data) - l.max; over > 0 {
		l.data = append(l.data[:0], l.data[over:]...)
	}
}

// Replace swaps in restored state on startup, applying the same bound.
func (l *Ledger) Replace(anomalies []domain.Anomaly) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if over := len(anomalies) - l.max; over > 0 {
		anomalies = anomalies[over:]
	}
	l.data = append(l.data[:0], anomalies...)
}

// EvictOlderThan pops head entries whose timestamp is strictly before cutoff
// and reports how many were removed.
func (l *Ledger) EvictOlderThan(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for n < len(l.data) && l.data[n].Timestamp.Before(cutoff) {
		n++
	}
	if n > 0 {
		l.data = append(l.data[:0], l.data[n:]...)
	}
	return n
}

// Snapshot returns a point-in-time copy, oldest first.
func (l *Ledger) Snapshot() []domain.Anomaly {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Anomaly, len(l.data))
	copy(out, l.data)
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.data)
}
