package feedlog

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"feedlog-mcp/internal/feed"
)

var (
	// ErrAlreadyActive is returned when starting while a session is running.
	ErrAlreadyActive = errors.New("a feed is already in progress")
	// ErrNoActiveFeed is returned by transitions that need a running session.
	ErrNoActiveFeed = errors.New("no feed is in progress")
	// ErrNotFeeding is returned when pausing a session that is not feeding.
	ErrNotFeeding = errors.New("the active feed is not running")
	// ErrNotPaused is returned when resuming a session that is not paused.
	ErrNotPaused = errors.New("the active feed is not paused")
)

// Tracker owns the active-feed state machine and keeps the session log and
// the on-disk snapshot in sync with every transition. All methods are safe
// for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	store    *Store
	snapshot *SnapshotStore
	deviceID string
	clock    feed.Clock
	state    feed.ActiveState
}

// NewTracker wires a tracker to its stores. The zero-phase state means no
// session is active.
func NewTracker(store *Store, snapshot *SnapshotStore, deviceID string, clock feed.Clock) *Tracker {
	return &Tracker{store: store, snapshot: snapshot, deviceID: deviceID, clock: clock}
}

// Restore adopts a previously persisted active session, if any. An in-flight
// feed survives a server restart this way.
func (t *Tracker) Restore() {
	snap, ok := t.snapshot.Load()
	if !ok || !snap.State.Phase.IsActive() {
		return
	}
	t.mu.Lock()
	t.state = snap.State
	t.mu.Unlock()
	log.Info().
		Str("device", snap.DeviceID).
		Stringer("phase", snap.State.Phase).
		Msg("Restored active feed from snapshot")
}

// Active returns the current state and whether a session is in progress.
func (t *Tracker) Active() (feed.ActiveState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.state.Phase.IsActive()
}

// Start begins a new session on the given side. The previous completed
// session is captured so gap calculations have their baseline.
func (t *Tracker) Start(side feed.Breast) (feed.ActiveState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Phase.IsActive() {
		return t.state, ErrAlreadyActive
	}

	entry := feed.StartEntry(side, t.clock)
	history := feed.History{Current: entry}
	if last, ok := t.store.Latest(); ok {
		history.Last = &last
	}
	t.state = feed.NewFeedingState(feed.BreastInfo{Current: side}, history, entry.Start)
	return t.state, t.persistLocked()
}

// Pause suspends the running session, closing the current breast unit.
func (t *Tracker) Pause() (feed.ActiveState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Phase.IsActive() {
		return t.state, ErrNoActiveFeed
	}
	if t.state.Phase != feed.PhaseFeeding {
		return t.state, ErrNotFeeding
	}

	t.state = t.state.PausedState(t.clock)
	return t.state, t.persistLocked()
}

// Resume continues a paused session on the same side.
func (t *Tracker) Resume() (feed.ActiveState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Phase.IsActive() {
		return t.state, ErrNoActiveFeed
	}
	if t.state.Phase != feed.PhasePaused {
		return t.state, ErrNotPaused
	}

	t.state = t.state.ResumedState(t.state.BreastInfo.Current, t.clock)
	return t.state, t.persistLocked()
}

// Switch moves the session to the given side. A running session has its
// current unit closed first; a paused session simply resumes on the new side.
func (t *Tracker) Switch(side feed.Breast) (feed.ActiveState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Phase.IsActive() {
		return t.state, ErrNoActiveFeed
	}

	if t.state.Phase == feed.PhaseFeeding {
		t.state = t.state.PausedState(t.clock)
	}
	t.state = t.state.ResumedState(side, t.clock)
	return t.state, t.persistLocked()
}

// AddCue records a hunger cue on the active session. Recording the same cue
// twice is a no-op.
func (t *Tracker) AddCue(c feed.Cue) (feed.ActiveState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Phase.IsActive() {
		return t.state, ErrNoActiveFeed
	}
	if t.state.History.Current.HasCue(c) {
		return t.state, nil
	}
	t.state.History.Current.Cues = append(t.state.History.Current.Cues, c)
	return t.state, t.persistLocked()
}

// Stop completes the session, appends it to the log, and clears the
// snapshot. The finished entry is returned.
func (t *Tracker) Stop() (feed.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Phase.IsActive() {
		return feed.Entry{}, ErrNoActiveFeed
	}

	completed := t.state.CompletedState(t.clock)
	done := completed.History.Current
	t.state = feed.ActiveState{}

	t.store.Upsert(done)
	if err := t.store.Save(); err != nil {
		return done, err
	}
	if err := t.snapshot.Clear(); err != nil {
		return done, err
	}
	return done, nil
}

// EntriesWithActive returns the full log plus the in-progress entry, when
// one exists, so "today" views can include the running session.
func (t *Tracker) EntriesWithActive() []feed.Entry {
	entries := t.store.Entries()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Phase.IsActive() && t.state.History != nil {
		entries = append(entries, t.state.History.Current)
	}
	return entries
}

func (t *Tracker) persistLocked() error {
	return t.snapshot.Save(ActiveSnapshot{DeviceID: t.deviceID, State: t.state})
}
