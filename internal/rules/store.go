package rules

import (
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
)

// Store owns the mutable per-sensor detection state: the fixed-capacity
// drift windows per (sensor, parameter) and the last-seen timestamp per
// sensor. Entries are created lazily on first contact and never evicted;
// sensor cardinality is assumed bounded. Not safe for concurrent use:
// callers serialize access through the detector's single-writer discipline.
type Store struct {
	windowCap int
	windows   map[string]map[domain.Parameter][]float64
	lastSeen  map[string]time.Time
}

func NewStore(windowCap int) *Store {
	return &Store{
		windowCap: windowCap,
		windows:   make(map[string]map[domain.Parameter][]float64),
		lastSeen:  make(map[string]time.Time),
	}
}

// Push appends v to the sensor's window for p, evicting the oldest value if
// the window is at capacity, and returns the window after the push. The
// returned slice is owned by the store and only valid until the next Push.
func (s *Store) Push(sensor string, p domain.Parameter, v float64) []float64 {
	byParam, ok := s.windows[sensor]
	if !ok {
		byParam = make(map[domain.Parameter][]float64, len(domain.Parameters))
		for _, q := range domain.Parameters {
			byParam[q] = make([]float64, 0, s.windowCap)
		}
		s.windows[sensor] = byParam
	}

	w := byParam[p]
	if len(w) == s.windowCap {
		copy(w, w[1:])
		w = w[:len(w)-1]
	}
	w = append(w, v)
	byParam[p] = w
	return w
}

// WindowCap reports the fixed window capacity.
func (s *Store) WindowCap() int { return s.windowCap }

// Touch records ts as the sensor's most recent reading time.
func (s *Store) Touch(sensor string, ts time.Time) {
	s.lastSeen[sensor] = ts
}

// RangeLastSeen visits every sensor with a recorded last-seen timestamp.
func (s *Store) RangeLastSeen(fn func(sensor string, ts time.Time)) {
	for sensor, ts := range s.lastSeen {
		fn(sensor, ts)
	}
}

// Sensors reports how many distinct sensors have been seen.
func (s *Store) Sensors() int { return len(s.lastSeen) }
