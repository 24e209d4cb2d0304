// Package checkpoint saves and restores the population between runs.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"CreditCycle/internal/model"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the state needed to resume a run after its last closed period.
type Snapshot struct {
	RunID      string                `msgpack:"run_id"`
	Period     int                   `msgpack:"period"`
	Firms      []model.Firm          `msgpack:"firms"`
	Bank       model.BankState       `msgpack:"bank"`
	Government model.GovernmentState `msgpack:"government"`
	SavedAt    time.Time             `msgpack:"saved_at"`
}

// Empty reports whether the snapshot holds no population.
func (s *Snapshot) Empty() bool {
	return len(s.Firms) == 0
}

// Load reads a snapshot. Returns an empty snapshot if the file doesn't exist.
func Load(filePath string) (*Snapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", filePath, err)
	}
	return &snap, nil
}

// Save writes a snapshot, replacing any previous one atomically.
func Save(filePath string, snap *Snapshot) error {
	snap.SavedAt = time.Now()
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
