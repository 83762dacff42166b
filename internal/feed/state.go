package feed

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Phase is the tagged state of the active-feed state machine.
type Phase int

const (
	// PhaseNone means no active session exists.
	PhaseNone Phase = iota
	PhaseReady
	PhaseFeeding
	PhasePaused
	PhaseCompleted
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseReady:
		return "ready"
	case PhaseFeeding:
		return "feeding"
	case PhasePaused:
		return "paused"
	case PhaseCompleted:
		return "completed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// IsActive reports whether a session is in progress.
func (p Phase) IsActive() bool {
	return p == PhaseFeeding || p == PhasePaused
}

// BreastInfo carries the side currently in use and the one used before it.
type BreastInfo struct {
	Last    *Breast `json:"last,omitempty"`
	Current Breast  `json:"current"`
}

// History pairs the session being mutated with the immediately preceding
// completed session, which gap calculations need.
type History struct {
	Current Entry  `json:"current"`
	Last    *Entry `json:"last,omitempty"`
}

// GapSinceLast returns the gap between the previous session's end and the
// current session's start, clamped to zero. Returns false when no previous
// completed session is known.
func (h History) GapSinceLast() (time.Duration, bool) {
	if h.Last == nil || h.Last.End == nil {
		return 0, false
	}
	gap := h.Current.Start.Sub(*h.Last.End)
	if gap < 0 {
		gap = 0
	}
	return gap, true
}

// ActiveState is the state machine for an in-progress feed. UpdatedAt records
// the most recent transition and doubles as the start time of the next unit
// to be closed by pause or stop.
//
// Invariant: every phase except ready and none carries a non-nil History.
type ActiveState struct {
	Phase      Phase      `json:"phase"`
	BreastInfo BreastInfo `json:"breastInfo"`
	History    *History   `json:"history,omitempty"`
	UpdatedAt  time.Time  `json:"lastUpdatedAt"`
}

// NewFeedingState constructs a feeding-phase state. Panics without history.
func NewFeedingState(info BreastInfo, history History, at time.Time) ActiveState {
	return newStateWithHistory(PhaseFeeding, info, history, at)
}

// NewPausedState constructs a paused-phase state. Panics without history.
func NewPausedState(info BreastInfo, history History, at time.Time) ActiveState {
	return newStateWithHistory(PhasePaused, info, history, at)
}

// NewCompletedState constructs a completed-phase state. Panics without history.
func NewCompletedState(info BreastInfo, history History, at time.Time) ActiveState {
	return newStateWithHistory(PhaseCompleted, info, history, at)
}

func newStateWithHistory(p Phase, info BreastInfo, history History, at time.Time) ActiveState {
	return ActiveState{
		Phase:      p,
		BreastInfo: info,
		History:    &history,
		UpdatedAt:  at,
	}
}

// ReadyState constructs the ready phase, which carries no history.
func ReadyState(side Breast, at time.Time) ActiveState {
	return ActiveState{
		Phase:      PhaseReady,
		BreastInfo: BreastInfo{Current: side},
		UpdatedAt:  at,
	}
}

// mustHistory asserts the construction invariant at use sites. A nil history
// outside the ready phase is a programming error, not recoverable input.
func (s ActiveState) mustHistory() History {
	if s.History == nil {
		panic(fmt.Sprintf("feed: %s state requires history", s.Phase))
	}
	return *s.History
}

// requireCurrent asserts that the state is mutating the given entry.
func (s ActiveState) requireCurrent(e Entry) History {
	h := s.mustHistory()
	if h.Current.ID != e.ID {
		panic(fmt.Sprintf("feed: state history %s does not match entry %s", h.Current.ID, e.ID))
	}
	return h
}

// StartEntry creates a fresh session entry at the clock's now.
func StartEntry(side Breast, clock Clock) Entry {
	now := clock.Now()
	return Entry{
		ID:        uuid.New(),
		Start:     now,
		Cues:      []Cue{},
		Breast:    side,
		CreatedAt: now,
		UpdatedAt: now,
		Units:     []Unit{},
	}
}

// Pause closes the running segment as a new breast unit spanning from the
// state's UpdatedAt to now and provisionally ends the session. Panics when
// the state's history does not refer to this entry.
func (e Entry) Pause(s ActiveState, clock Clock) Entry {
	s.requireCurrent(e)

	now := clock.Now()
	unitStart := s.UpdatedAt

	next := e
	next.Units = append(append([]Unit(nil), e.Units...), Unit{
		Breast:   s.BreastInfo.Current,
		Duration: now.Sub(unitStart),
		Start:    unitStart,
		End:      now,
	})
	next.End = &now
	next.UpdatedAt = now
	return next
}

// Resume reopens a paused session. It clears the provisional end time and
// advances UpdatedAt; no unit is appended — the resumed state's UpdatedAt
// marks where the next unit will start.
func (e Entry) Resume(s ActiveState, clock Clock) Entry {
	if s.Phase != PhasePaused {
		panic(fmt.Sprintf("feed: resume from %s state", s.Phase))
	}
	s.requireCurrent(e)

	now := clock.Now()
	next := e
	next.End = nil
	next.UpdatedAt = now
	return next
}

// Restart switches the session to the given side without closing a unit.
// It reopens a provisionally ended session while preserving identity, start
// time, accumulated units, and cues.
func (e Entry) Restart(side Breast, clock Clock) Entry {
	now := clock.Now()
	next := e
	next.End = nil
	next.Breast = side
	next.UpdatedAt = now
	return next
}

// Stop closes the final segment as a breast unit spanning from the state's
// UpdatedAt to now and completes the session. Panics when the state's history
// does not refer to this entry.
func (e Entry) Stop(s ActiveState, clock Clock) Entry {
	s.requireCurrent(e)

	now := clock.Now()
	unitStart := s.UpdatedAt

	next := e
	next.Units = append(append([]Unit(nil), e.Units...), Unit{
		Breast:   s.BreastInfo.Current,
		Duration: now.Sub(unitStart),
		Start:    unitStart,
		End:      now,
	})
	next.End = &now
	next.UpdatedAt = now
	return next
}

// PausedState derives the paused successor of a feeding state, with the
// paused entry recorded in history.
func (s ActiveState) PausedState(clock Clock) ActiveState {
	h := s.mustHistory()
	now := clock.Now()
	paused := h.Current.Pause(s, FixedClock{Time: now})
	return NewPausedState(s.BreastInfo, History{Current: paused, Last: h.Last}, now)
}

// ResumedState derives the feeding successor of a paused state, switching
// the current side to the one supplied. The previous side is preserved in
// BreastInfo.Last only when it actually changes.
func (s ActiveState) ResumedState(side Breast, clock Clock) ActiveState {
	h := s.mustHistory()
	now := clock.Now()
	resumed := h.Current.Resume(s, FixedClock{Time: now})

	info := BreastInfo{Last: s.BreastInfo.Last, Current: side}
	if side != s.BreastInfo.Current {
		prev := s.BreastInfo.Current
		info.Last = &prev
	}
	return NewFeedingState(info, History{Current: resumed, Last: h.Last}, now)
}

// CompletedState derives the completed successor, closing the final unit.
func (s ActiveState) CompletedState(clock Clock) ActiveState {
	h := s.mustHistory()
	now := clock.Now()
	stopped := h.Current.Stop(s, FixedClock{Time: now})
	return NewCompletedState(s.BreastInfo, History{Current: stopped, Last: h.Last}, now)
}
