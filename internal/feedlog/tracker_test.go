package feedlog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"feedlog-mcp/internal/feed"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker(t *testing.T) (*Tracker, *Store, *stepClock) {
	t.Helper()
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "log.jsonl"))
	snapshot := NewSnapshotStore(filepath.Join(dir, "active.json"))
	clock := &stepClock{now: logEpoch}
	return NewTracker(store, snapshot, "test-device", clock), store, clock
}

func TestTrackerFullSession(t *testing.T) {
	tr, store, clock := newTestTracker(t)

	state, err := tr.Start(feed.Left)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if state.Phase != feed.PhaseFeeding {
		t.Fatalf("Phase = %v, want feeding", state.Phase)
	}

	clock.advance(2 * time.Minute)
	if _, err := tr.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	clock.advance(time.Minute)
	if _, err := tr.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	clock.advance(2 * time.Minute)

	done, err := tr.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if len(done.Units) != 2 {
		t.Fatalf("Units = %d, want 2", len(done.Units))
	}
	if got := done.EffectiveDuration(); got != 240*time.Second {
		t.Errorf("EffectiveDuration = %v, want 240s across two units", got)
	}
	if store.Count() != 1 {
		t.Errorf("store holds %d entries after stop, want 1", store.Count())
	}
	if _, active := tr.Active(); active {
		t.Error("still active after stop")
	}
}

func TestTrackerStartWhileActive(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	if _, err := tr.Start(feed.Left); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := tr.Start(feed.Right); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("second Start = %v, want ErrAlreadyActive", err)
	}
}

func TestTrackerTransitionGuards(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	if _, err := tr.Pause(); !errors.Is(err, ErrNoActiveFeed) {
		t.Errorf("Pause idle = %v, want ErrNoActiveFeed", err)
	}
	if _, err := tr.Stop(); !errors.Is(err, ErrNoActiveFeed) {
		t.Errorf("Stop idle = %v, want ErrNoActiveFeed", err)
	}

	if _, err := tr.Start(feed.Left); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Errorf("Resume while feeding = %v, want ErrNotPaused", err)
	}
	if _, err := tr.Pause(); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Pause(); !errors.Is(err, ErrNotFeeding) {
		t.Errorf("double Pause = %v, want ErrNotFeeding", err)
	}
}

func TestTrackerSwitchClosesUnitAndChangesSide(t *testing.T) {
	tr, _, clock := newTestTracker(t)
	if _, err := tr.Start(feed.Left); err != nil {
		t.Fatal(err)
	}
	clock.advance(3 * time.Minute)

	state, err := tr.Switch(feed.Right)
	if err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if state.Phase != feed.PhaseFeeding {
		t.Errorf("Phase = %v, want feeding after switch", state.Phase)
	}
	if state.BreastInfo.Current != feed.Right {
		t.Errorf("Current = %v, want right", state.BreastInfo.Current)
	}
	if state.BreastInfo.Last == nil || *state.BreastInfo.Last != feed.Left {
		t.Errorf("Last = %v, want left", state.BreastInfo.Last)
	}
	units := state.History.Current.Units
	if len(units) != 1 || units[0].Breast != feed.Left {
		t.Errorf("units = %+v, want one closed left unit", units)
	}
}

func TestTrackerHistoryCapturesPreviousFeed(t *testing.T) {
	tr, _, clock := newTestTracker(t)
	if _, err := tr.Start(feed.Left); err != nil {
		t.Fatal(err)
	}
	clock.advance(5 * time.Minute)
	first, err := tr.Stop()
	if err != nil {
		t.Fatal(err)
	}

	clock.advance(2 * time.Hour)
	state, err := tr.Start(feed.Right)
	if err != nil {
		t.Fatal(err)
	}
	if state.History.Last == nil || state.History.Last.ID != first.ID {
		t.Fatal("History.Last does not reference the previous feed")
	}
	gap, ok := state.History.GapSinceLast()
	if !ok || gap != 2*time.Hour {
		t.Errorf("GapSinceLast = %v/%v, want 2h", gap, ok)
	}
}

func TestTrackerAddCue(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	if _, err := tr.AddCue(feed.CueRooting); !errors.Is(err, ErrNoActiveFeed) {
		t.Errorf("AddCue idle = %v, want ErrNoActiveFeed", err)
	}

	if _, err := tr.Start(feed.Left); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.AddCue(feed.CueRooting); err != nil {
		t.Fatalf("AddCue: %v", err)
	}
	state, err := tr.AddCue(feed.CueRooting)
	if err != nil {
		t.Fatalf("repeated AddCue: %v", err)
	}
	if got := state.History.Current.Cues; len(got) != 1 || got[0] != feed.CueRooting {
		t.Errorf("Cues = %v, want a single rooting cue", got)
	}

	done, err := tr.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if !done.HasCue(feed.CueRooting) {
		t.Error("completed entry lost the recorded cue")
	}
}

func TestTrackerRestoreAfterRestart(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "log.jsonl"))
	snapshot := NewSnapshotStore(filepath.Join(dir, "active.json"))
	clock := &stepClock{now: logEpoch}

	tr := NewTracker(store, snapshot, "test-device", clock)
	if _, err := tr.Start(feed.Left); err != nil {
		t.Fatal(err)
	}
	clock.advance(time.Minute)

	revived := NewTracker(store, snapshot, "test-device", clock)
	revived.Restore()
	state, active := revived.Active()
	if !active {
		t.Fatal("restored tracker has no active feed")
	}
	if state.Phase != feed.PhaseFeeding || state.BreastInfo.Current != feed.Left {
		t.Errorf("restored state = %+v", state)
	}

	clock.advance(time.Minute)
	done, err := revived.Stop()
	if err != nil {
		t.Fatalf("Stop after restore: %v", err)
	}
	if done.EffectiveDuration() != 2*time.Minute {
		t.Errorf("EffectiveDuration = %v, want 120s", done.EffectiveDuration())
	}
}

func TestTrackerEntriesWithActive(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.Upsert(completedEntry(uuid.New(), logEpoch.Add(-3*time.Hour), 5*time.Minute))

	if got := len(tr.EntriesWithActive()); got != 1 {
		t.Fatalf("idle entries = %d, want 1", got)
	}
	if _, err := tr.Start(feed.Right); err != nil {
		t.Fatal(err)
	}
	if got := len(tr.EntriesWithActive()); got != 2 {
		t.Errorf("active entries = %d, want the log plus the running feed", got)
	}
}
