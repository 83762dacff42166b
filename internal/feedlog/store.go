package feedlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"feedlog-mcp/internal/feed"
)

// Store provides thread-safe, chronological storage for feed entries,
// persisted as one JSON object per line.
type Store struct {
	mu      sync.RWMutex
	entries []feed.Entry
	path    string
}

// NewStore creates an empty store persisting to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Upsert inserts new entries and replaces existing ones by id, keeping the
// record with the newest lastUpdatedAt. The log stays sorted by start time.
func (s *Store) Upsert(entries ...feed.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(entries)
}

func (s *Store) upsertLocked(entries []feed.Entry) {
	byID := make(map[uuid.UUID]int, len(s.entries))
	for i, e := range s.entries {
		byID[e.ID] = i
	}

	changed := false
	for _, e := range entries {
		if i, ok := byID[e.ID]; ok {
			if !e.UpdatedAt.Before(s.entries[i].UpdatedAt) {
				s.entries[i] = e
				changed = true
			}
			continue
		}
		byID[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
		changed = true
	}

	if !changed {
		return
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Start.Before(s.entries[j].Start)
	})
}

// Remove deletes the entry with the given id, reporting whether it existed.
func (s *Store) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a chronological copy of the log.
func (s *Store) Entries() []feed.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]feed.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns the entry with the given id.
func (s *Store) Get(id uuid.UUID) (feed.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return feed.Entry{}, false
}

// Latest returns the most recently started completed entry.
func (s *Store) Latest() (feed.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Completed() {
			return s.entries[i], true
		}
	}
	return feed.Entry{}, false
}

// Count returns the number of stored entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// EntriesInRange returns entries whose start lies in [start, end]. A zero
// end means no upper bound.
func (s *Store) EntriesInRange(start, end time.Time) []feed.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []feed.Entry
	for _, e := range s.entries {
		if e.Start.Before(start) {
			continue
		}
		if !end.IsZero() && e.Start.After(end) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Load reads the JSONL log from disk. A missing file is not an error;
// corrupt lines are skipped and logged so one bad record never takes the
// whole history down.
func (s *Store) Load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open feed log: %w", err)
	}
	defer file.Close()

	var entries []feed.Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e feed.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("Skipping invalid JSON line in feed log")
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading feed log: %w", err)
	}

	s.mu.Lock()
	s.upsertLocked(entries)
	s.mu.Unlock()

	log.Info().Str("path", s.path).Int("count", len(entries)).Msg("Loaded feed log")
	return nil
}

// Save persists the log to disk via a temp file and atomic rename, so a
// failed write never clobbers the previous good file.
func (s *Store) Save() error {
	s.mu.RLock()
	entries := make([]feed.Entry, len(s.entries))
	copy(entries, s.entries)
	s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create feed log dir: %w", err)
	}

	tmpPath := s.path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp feed log: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, e := range entries {
		if err := encoder.Encode(e); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode feed entry: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush feed log: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close feed log: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename feed log: %w", err)
	}

	log.Info().Str("path", s.path).Int("count", len(entries)).Msg("Feed log saved")
	return nil
}
