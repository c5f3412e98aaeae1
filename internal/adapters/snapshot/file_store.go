package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
)

const fileName = "anomalies.json"

// FileStore persists the anomaly ledger as a single JSON document, rewritten
// whole on every save. A missing, empty, or corrupt file loads as empty
// state; a corrupt file is reset to an empty document on the spot.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: filepath.Join(dir, fileName)}, nil
}

// Path returns the snapshot file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Save(anomalies []domain.Anomaly) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if anomalies == nil {
		anomalies = []domain.Anomaly{}
	}
	b, err := json.MarshalIndent(anomalies, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return f.writeLocked(b)
}

func (f *FileStore) Load() ([]domain.Anomaly, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, f.resetLocked()
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, f.resetLocked()
	}

	var out []domain.Anomaly
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("snapshot: corrupt file %s, resetting: %v", f.path, err)
		return nil, f.resetLocked()
	}
	return out, nil
}

// resetLocked rewrites the snapshot as an empty document.
func (f *FileStore) resetLocked() error {
	return f.writeLocked([]byte("[]"))
}

// writeLocked replaces the snapshot atomically via a temp file rename so a
// crash mid-write never leaves a torn document behind.
func (f *FileStore) writeLocked(b []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

var _ ports.SnapshotStore = (*FileStore)(nil)
