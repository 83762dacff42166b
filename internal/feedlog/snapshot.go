package feedlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"feedlog-mcp/internal/feed"
)

// ActiveSnapshot is the persisted form of the in-progress feed: which
// device owns it plus the full state machine value. It survives restarts so
// a running session can be resumed.
type ActiveSnapshot struct {
	DeviceID string           `json:"deviceId"`
	State    feed.ActiveState `json:"state"`
}

// SnapshotStore persists the active-feed snapshot as a JSON file with the
// same tolerate-corrupt contract as the other stores: a bad file is logged
// and treated as "no active feed", never a crash.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store persisting to path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Load reads the persisted snapshot. Returns false when none exists or the
// file cannot be decoded.
func (s *SnapshotStore) Load() (ActiveSnapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("Could not read active-feed snapshot")
		}
		return ActiveSnapshot{}, false
	}
	var snap ActiveSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Corrupt active-feed snapshot, ignoring")
		return ActiveSnapshot{}, false
	}
	return snap, true
}

// Save persists the snapshot, replacing the previous file only after a
// successful encode and write.
func (s *SnapshotStore) Save(snap ActiveSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode active-feed snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write active-feed snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename active-feed snapshot: %w", err)
	}
	return nil
}

// Clear removes the persisted snapshot; missing files are fine.
func (s *SnapshotStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove active-feed snapshot: %w", err)
	}
	return nil
}
