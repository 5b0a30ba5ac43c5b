// Package importer reads task snapshots written by export and checks them
// before they are merged into the store.
package importer

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// Snapshot is the exported task map: records keyed by task id.
type Snapshot map[string]*domain.Task

// LoadSnapshot reads and parses an export file.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses snapshot JSON. Records without an id take their key.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := sonic.ConfigStd.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	for key, t := range snap {
		if t != nil && t.ID == "" {
			t.ID = key
		}
	}
	return snap, nil
}
