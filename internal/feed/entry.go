package feed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Breast identifies the side of a feeding segment.
type Breast string

const (
	Left  Breast = "left"
	Right Breast = "right"
)

// Opposite returns the other side.
func (b Breast) Opposite() Breast {
	if b == Left {
		return Right
	}
	return Left
}

// ParseBreast converts a raw string into a Breast value, case-insensitively.
func ParseBreast(raw string) (Breast, error) {
	switch strings.ToLower(raw) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return "", fmt.Errorf("invalid breast value: %q", raw)
}

// Cue is a qualitative observation attached to a session (not statistically significant).
type Cue string

const (
	CueRooting      Cue = "rooting"
	CueSuckingFists Cue = "sucking_fists"
	CueCrying       Cue = "crying"
	CueHeadTurning  Cue = "head_turning"
	CueHandToMouth  Cue = "hand_to_mouth"
)

// ParseCue converts a raw string into a known Cue value, case-insensitively.
func ParseCue(raw string) (Cue, error) {
	switch c := Cue(strings.ToLower(raw)); c {
	case CueRooting, CueSuckingFists, CueCrying, CueHeadTurning, CueHandToMouth:
		return c, nil
	}
	return "", fmt.Errorf("invalid cue value: %q", raw)
}

// Unit is one contiguous feeding segment on a single side.
// Units within an entry are chronologically ordered and non-overlapping.
type Unit struct {
	Breast   Breast        `json:"breast"`
	Duration time.Duration `json:"duration"`
	Start    time.Time     `json:"startTime"`
	End      time.Time     `json:"endTime"`
}

// Entry is one logged breastfeeding session. Entries are immutable by
// convention once completed; transitions produce new copies.
type Entry struct {
	ID        uuid.UUID  `json:"id"`
	Start     time.Time  `json:"startTime"`
	End       *time.Time `json:"endTime,omitempty"`
	Cues      []Cue      `json:"cues"`
	Breast    Breast     `json:"breast"` // chosen/primary side; superseded by Units for timing
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"lastUpdatedAt"`
	Units     []Unit     `json:"breastUnits"`
}

// Completed reports whether the session has an end time.
func (e Entry) Completed() bool {
	return e.End != nil
}

// EffectiveDuration returns the total feeding time for this entry.
// Units win when present; otherwise the envelope (end - start) is used for
// completed sessions. Active sessions without units report 0 — live elapsed
// time is only knowable through the state machine's clock.
func (e Entry) EffectiveDuration() time.Duration {
	if len(e.Units) > 0 {
		var total time.Duration
		for _, u := range e.Units {
			total += u.Duration
		}
		return total
	}
	if e.End == nil {
		return 0
	}
	d := e.End.Sub(e.Start)
	if d < 0 {
		return 0
	}
	return d
}

// HasCue reports whether the entry carries the given cue.
func (e Entry) HasCue(c Cue) bool {
	for _, have := range e.Cues {
		if have == c {
			return true
		}
	}
	return false
}

// entryRecord is the raw wire shape used for versioned decoding. Older
// records lack breastUnits, lastUpdatedAt, createdAt, or cues entirely.
type entryRecord struct {
	ID        uuid.UUID  `json:"id"`
	Start     time.Time  `json:"startTime"`
	End       *time.Time `json:"endTime"`
	Cues      []Cue      `json:"cues"`
	Breast    Breast     `json:"breast"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"lastUpdatedAt"`
	Units     *[]Unit    `json:"breastUnits"`
}

// UnmarshalJSON decodes an entry with fallbacks for legacy records:
// missing createdAt -> startTime; missing lastUpdatedAt -> endTime, then
// startTime; missing breastUnits -> a single unit synthesized from the
// envelope when the session is completed.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var rec entryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	e.ID = rec.ID
	e.Start = rec.Start
	e.End = rec.End
	e.Breast = rec.Breast

	e.Cues = rec.Cues
	if e.Cues == nil {
		e.Cues = []Cue{}
	}

	if rec.CreatedAt != nil {
		e.CreatedAt = *rec.CreatedAt
	} else {
		e.CreatedAt = rec.Start
	}

	switch {
	case rec.UpdatedAt != nil:
		e.UpdatedAt = *rec.UpdatedAt
	case rec.End != nil:
		e.UpdatedAt = *rec.End
	default:
		e.UpdatedAt = rec.Start
	}

	switch {
	case rec.Units != nil:
		e.Units = *rec.Units
	case rec.End != nil:
		e.Units = []Unit{{
			Breast:   rec.Breast,
			Duration: rec.End.Sub(rec.Start),
			Start:    rec.Start,
			End:      *rec.End,
		}}
	default:
		e.Units = []Unit{}
	}

	return nil
}
