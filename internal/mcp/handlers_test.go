package mcp

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"feedlog-mcp/internal/feed"
	"feedlog-mcp/internal/feedlog"
	"feedlog-mcp/internal/stats"
)

var testEpoch = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestServer(t *testing.T) (*Server, *feedlog.Store, *testClock) {
	t.Helper()
	dir := t.TempDir()
	store := feedlog.NewStore(filepath.Join(dir, "log.jsonl"))
	prefs := feedlog.NewPrefsStore(filepath.Join(dir, "prefs.json"))
	snapshot := feedlog.NewSnapshotStore(filepath.Join(dir, "active.json"))
	clock := &testClock{now: testEpoch}
	tracker := feedlog.NewTracker(store, snapshot, "test", clock)

	s := NewServer(store, prefs, tracker, clock, "test")
	s.cal = stats.NewCalendar(time.UTC)
	return s, store, clock
}

func seedFeed(t *testing.T, store *feedlog.Store, start time.Time, side feed.Breast, dur time.Duration) {
	t.Helper()
	end := start.Add(dur)
	store.Upsert(feed.Entry{
		ID:     uuid.New(),
		Breast: side,
		Start:  start,
		End:    &end,
		Units: []feed.Unit{
			{Breast: side, Duration: dur, Start: start, End: end},
		},
		UpdatedAt: end,
		CreatedAt: start,
	})
}

func TestSessionLifecycleViaHandlers(t *testing.T) {
	s, store, clock := newTestServer(t)
	ctx := context.Background()

	_, state, err := s.handleStartFeed(ctx, nil, sideArgs{Side: "left"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !state.Active || state.Phase != "feeding" || state.Breast != feed.Left {
		t.Fatalf("state after start = %+v", state)
	}

	clock.now = clock.now.Add(4 * time.Minute)
	_, state, err = s.handleSwitchBreast(ctx, nil, optionalSideArgs{})
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if state.Breast != feed.Right || state.ClosedUnits != 1 {
		t.Errorf("state after switch = %+v, want right with one closed unit", state)
	}

	clock.now = clock.now.Add(3 * time.Minute)
	_, done, err := s.handleStopFeed(ctx, nil, struct{}{})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if done.Duration != (7 * time.Minute).Seconds() {
		t.Errorf("Duration = %v, want 420s", done.Duration)
	}
	if done.Units != 2 {
		t.Errorf("Units = %d, want 2", done.Units)
	}
	if store.Count() != 1 {
		t.Errorf("store holds %d entries, want 1", store.Count())
	}
}

func TestStartFeedRejectsBadSide(t *testing.T) {
	s, _, _ := newTestServer(t)
	if _, _, err := s.handleStartFeed(context.Background(), nil, sideArgs{Side: "middle"}); err == nil {
		t.Error("start accepted an invalid side")
	}
}

func TestPauseWithoutActiveFeed(t *testing.T) {
	s, _, _ := newTestServer(t)
	if _, _, err := s.handlePauseFeed(context.Background(), nil, struct{}{}); err == nil {
		t.Error("pause without a session did not error")
	}
}

func TestGetActiveFeedReportsElapsedAndGap(t *testing.T) {
	s, store, clock := newTestServer(t)
	ctx := context.Background()
	seedFeed(t, store, testEpoch.Add(-2*time.Hour), feed.Left, 10*time.Minute)

	if _, _, err := s.handleStartFeed(ctx, nil, sideArgs{Side: "right"}); err != nil {
		t.Fatal(err)
	}
	clock.now = clock.now.Add(90 * time.Second)

	_, state, err := s.handleGetActiveFeed(ctx, nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if state.Elapsed != 90 {
		t.Errorf("Elapsed = %v, want 90s for the running segment", state.Elapsed)
	}
	if state.GapSinceLast == nil {
		t.Fatal("GapSinceLast missing despite a prior feed")
	}
	// Prior feed ended 1h50m before the new start.
	if want := (110 * time.Minute).Seconds(); *state.GapSinceLast != want {
		t.Errorf("GapSinceLast = %v, want %v", *state.GapSinceLast, want)
	}
}

func TestLogCueHandler(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx := context.Background()

	if _, _, err := s.handleLogCue(ctx, nil, cueArgs{Cue: "rooting"}); err == nil {
		t.Error("cue accepted without an active feed")
	}

	if _, _, err := s.handleStartFeed(ctx, nil, sideArgs{Side: "left"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.handleLogCue(ctx, nil, cueArgs{Cue: "yawning"}); err == nil {
		t.Error("unknown cue accepted")
	}
	_, state, err := s.handleLogCue(ctx, nil, cueArgs{Cue: "crying"})
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Cues) != 1 || state.Cues[0] != feed.CueCrying {
		t.Errorf("Cues = %v, want crying", state.Cues)
	}
}

func TestGetActiveFeedIdle(t *testing.T) {
	s, _, _ := newTestServer(t)
	_, state, err := s.handleGetActiveFeed(context.Background(), nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if state.Active || state.Phase != "none" {
		t.Errorf("idle state = %+v", state)
	}
}

func TestAverageDurationsHandler(t *testing.T) {
	s, store, _ := newTestServer(t)
	seedFeed(t, store, testEpoch.Add(-3*time.Hour), feed.Left, 4*time.Minute)
	seedFeed(t, store, testEpoch.Add(-6*time.Hour), feed.Right, 8*time.Minute)

	_, out, err := s.handleAverageDurations(context.Background(), nil, averageDurationsArgs{
		WindowArgs: WindowArgs{Days: 7},
		GroupBy:    "breast",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Overall != 360 {
		t.Errorf("Overall = %v, want 360", out.Overall)
	}
	if out.SampleCount != 2 {
		t.Errorf("SampleCount = %v, want 2", out.SampleCount)
	}
	if len(out.Groups) != 2 {
		t.Errorf("Groups = %+v, want left and right", out.Groups)
	}
}

func TestAverageDurationsRejectsBadScenario(t *testing.T) {
	s, _, _ := newTestServer(t)
	_, _, err := s.handleAverageDurations(context.Background(), nil, averageDurationsArgs{
		WindowArgs: WindowArgs{Scenario: "dusk"},
	})
	if err == nil {
		t.Error("bad scenario accepted")
	}
}

func TestTodaySummaryIncludesActiveFeed(t *testing.T) {
	s, store, clock := newTestServer(t)
	ctx := context.Background()
	seedFeed(t, store, testEpoch.Add(-2*time.Hour), feed.Left, 10*time.Minute)

	if _, _, err := s.handleStartFeed(ctx, nil, sideArgs{Side: "right"}); err != nil {
		t.Fatal(err)
	}
	clock.now = clock.now.Add(5 * time.Minute)

	_, out, err := s.handleTodaySummary(ctx, nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Summary.HasActive {
		t.Error("HasActive = false with a running feed")
	}
	if out.Summary.ActiveElapsed != 300 {
		t.Errorf("ActiveElapsed = %v, want 300", out.Summary.ActiveElapsed)
	}
	if out.Summary.CompletedCount != 1 {
		t.Errorf("CompletedCount = %d, want 1", out.Summary.CompletedCount)
	}
}

func TestTotalsSeriesGranularities(t *testing.T) {
	s, store, _ := newTestServer(t)
	seedFeed(t, store, testEpoch.Add(-26*time.Hour), feed.Left, 10*time.Minute)
	seedFeed(t, store, testEpoch.Add(-2*time.Hour), feed.Right, 20*time.Minute)
	ctx := context.Background()

	_, daily, err := s.handleTotalsSeries(ctx, nil, totalsSeriesArgs{WindowArgs: WindowArgs{Days: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if len(daily.Daily) != 3 || daily.Trend == nil {
		t.Errorf("daily result = %+v", daily)
	}

	_, weekly, err := s.handleTotalsSeries(ctx, nil, totalsSeriesArgs{Granularity: "weekly"})
	if err != nil {
		t.Fatal(err)
	}
	if len(weekly.Weekly) != 4 {
		t.Errorf("weekly buckets = %d, want default 4", len(weekly.Weekly))
	}
	if weekly.Trend == nil {
		t.Error("weekly series missing its trend vs. the preceding weeks")
	}

	if _, _, err := s.handleTotalsSeries(ctx, nil, totalsSeriesArgs{Granularity: "hourly"}); err == nil {
		t.Error("bad granularity accepted")
	}
}

func TestEstimateNextFeedHandler(t *testing.T) {
	s, store, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleEstimateNextFeed(ctx, nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if out.HasEstimate {
		t.Error("estimate produced from an empty log")
	}

	seedFeed(t, store, testEpoch.Add(-6*time.Hour), feed.Left, 5*time.Minute)
	seedFeed(t, store, testEpoch.Add(-3*time.Hour), feed.Right, 5*time.Minute)
	_, out, err = s.handleEstimateNextFeed(ctx, nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if !out.HasEstimate {
		t.Fatal("no estimate despite two completed feeds")
	}
	want := testEpoch.Add(-3 * time.Hour).Add(3 * time.Hour)
	if !out.NextFeedTime.Equal(want) {
		t.Errorf("NextFeedTime = %v, want %v", out.NextFeedTime, want)
	}
}
