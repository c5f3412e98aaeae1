package ports

import "github.com/The-Vheed/AquaSense-Monitor/internal/domain"

// SnapshotStore persists the full anomaly ledger between restarts. Save
// overwrites any prior snapshot with the given sequence; Load restores it.
// A missing, empty, or corrupt snapshot loads as empty state, never an error.
type SnapshotStore interface {
	Save(anomalies []domain.Anomaly) error
	Load() ([]domain.Anomaly, error)
}
