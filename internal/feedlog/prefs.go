package feedlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Preferences are the persisted scalar settings.
type Preferences struct {
	BabyName          string     `json:"babyName,omitempty"`
	BabyBirthDate     *time.Time `json:"babyBirthDate,omitempty"`
	DeviceName        string     `json:"deviceName,omitempty"`
	AllowBroadcasting bool       `json:"allowBroadcasting,omitempty"`
	RecencyHalfLife   float64    `json:"recencyHalfLifeHours,omitempty"`
	HistoryDaysBack   int        `json:"historyDaysBack,omitempty"`
}

// DefaultPreferences returns the values used when nothing is persisted.
func DefaultPreferences() Preferences {
	return Preferences{HistoryDaysBack: 7}
}

// AgeDays derives the baby's age in whole days at the given instant.
// Returns nil when the birth date is unknown or in the future.
func (p Preferences) AgeDays(now time.Time) *int {
	if p.BabyBirthDate == nil {
		return nil
	}
	days := int(now.Sub(*p.BabyBirthDate).Hours() / 24)
	if days < 0 {
		return nil
	}
	return &days
}

// PrefsStore persists preferences as a single JSON file with write-through
// on change and observer notification. A failed encode keeps the previous
// file intact.
type PrefsStore struct {
	mu        sync.RWMutex
	path      string
	prefs     Preferences
	observers []func(Preferences)
}

// NewPrefsStore creates a store persisting to path, seeded with defaults.
func NewPrefsStore(path string) *PrefsStore {
	return &PrefsStore{path: path, prefs: DefaultPreferences()}
}

// Load reads the preferences file, falling back to defaults when it is
// missing or unreadable. Decode failures are logged and tolerated.
func (s *PrefsStore) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("Could not read preferences, using defaults")
		}
		return
	}
	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Corrupt preferences file, using defaults")
		return
	}
	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()
}

// Seed applies fn to the in-memory preferences without persisting or
// notifying. Used to fill unset values from the environment at startup.
func (s *PrefsStore) Seed(fn func(*Preferences)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.prefs)
}

// Get returns the current preferences.
func (s *PrefsStore) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Update applies fn to the current preferences, persists the result, and
// notifies observers. The in-memory value changes even when persisting
// fails; the on-disk file is only replaced after a successful encode.
func (s *PrefsStore) Update(fn func(*Preferences)) error {
	s.mu.Lock()
	fn(&s.prefs)
	prefs := s.prefs
	observers := make([]func(Preferences), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, notify := range observers {
		notify(prefs)
	}
	return s.persist(prefs)
}

// Observe registers a callback invoked after every change.
func (s *PrefsStore) Observe(fn func(Preferences)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *PrefsStore) persist(p Preferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename preferences: %w", err)
	}
	return nil
}
