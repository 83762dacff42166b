package stats

import (
	"math"
	"testing"
	"time"

	"feedlog-mcp/internal/feed"
)

func TestComputeTodaySummary(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	now := today.Add(14 * time.Hour)

	entries := []feed.Entry{
		makeEntry(today.Add(8*time.Hour), seg(feed.Left, 600)),
		makeEntry(today.Add(11*time.Hour), seg(feed.Right, 300)),
		// Yesterday's feed contributes nothing.
		makeEntry(today.Add(-10*time.Hour), seg(feed.Left, 900)),
	}

	s := ComputeTodaySummary(entries, nil, utc, now)
	if math.Abs(s.Total-900) > 0.001 {
		t.Errorf("Total = %v, want 900", s.Total)
	}
	if math.Abs(s.LeftTotal-600) > 0.001 || math.Abs(s.RightTotal-300) > 0.001 {
		t.Errorf("left/right = %v/%v, want 600/300", s.LeftTotal, s.RightTotal)
	}
	if s.CompletedCount != 2 {
		t.Errorf("CompletedCount = %d, want 2", s.CompletedCount)
	}
	if s.HasActive || s.ActiveElapsed != 0 {
		t.Errorf("active fields = %v/%v, want none", s.HasActive, s.ActiveElapsed)
	}
}

func TestComputeTodaySummaryActiveEnvelope(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	now := today.Add(14 * time.Hour)

	active := feed.Entry{
		Start:  now.Add(-10 * time.Minute),
		Breast: feed.Left,
	}

	s := ComputeTodaySummary(nil, &active, utc, now)
	if math.Abs(s.ActiveElapsed-600) > 0.001 {
		t.Errorf("ActiveElapsed = %v, want 600", s.ActiveElapsed)
	}
	if math.Abs(s.Total-600) > 0.001 || math.Abs(s.LeftTotal-600) > 0.001 {
		t.Errorf("totals = %v/%v, want 600 on the left", s.Total, s.LeftTotal)
	}
	if !s.HasActive {
		t.Error("HasActive = false, want true")
	}
}

func TestComputeTodaySummaryActiveWithUnits(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	now := today.Add(14 * time.Hour)

	// Paused session: one closed 5-minute unit, no envelope end. The open
	// segment's elapsed time is unknowable here.
	active := feed.Entry{
		Start:  now.Add(-20 * time.Minute),
		Breast: feed.Left,
		Units: []feed.Unit{{
			Breast:   feed.Left,
			Duration: 5 * time.Minute,
			Start:    now.Add(-20 * time.Minute),
			End:      now.Add(-15 * time.Minute),
		}},
	}

	s := ComputeTodaySummary(nil, &active, utc, now)
	if math.Abs(s.Total-300) > 0.001 {
		t.Errorf("Total = %v, want only the closed 300s unit", s.Total)
	}
	if s.ActiveElapsed != 0 {
		t.Errorf("ActiveElapsed = %v, want 0 for unit-bearing active feed", s.ActiveElapsed)
	}
	if s.HasActive {
		t.Error("HasActive = true, want false when no live elapsed is known")
	}
}

func TestTodayTimeOfDayBreakdownSplitsSlots(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	now := today.Add(20 * time.Hour)

	entries := []feed.Entry{
		// 11:50 to 12:10: 10 minutes morning, 10 minutes afternoon.
		makeEntry(today.Add(11*time.Hour+50*time.Minute), seg(feed.Left, 1200)),
	}

	buckets := TodayTimeOfDayBreakdown(entries, nil, utc, now)
	if len(buckets) != 4 {
		t.Fatalf("buckets = %d, want all four slots", len(buckets))
	}
	bySlot := map[TimeOfDaySlot]TimeOfDayBucket{}
	for _, b := range buckets {
		bySlot[b.Slot] = b
	}
	if math.Abs(bySlot[SlotMorning].Total-600) > 0.001 {
		t.Errorf("morning = %v, want 600", bySlot[SlotMorning].Total)
	}
	if math.Abs(bySlot[SlotAfternoon].Total-600) > 0.001 {
		t.Errorf("afternoon = %v, want 600", bySlot[SlotAfternoon].Total)
	}
	if bySlot[SlotMorning].SessionCount != 1 || bySlot[SlotAfternoon].SessionCount != 1 {
		t.Error("the split session should count once in each slot it touches")
	}
	if bySlot[SlotEvening].Total != 0 || bySlot[SlotNight].Total != 0 {
		t.Error("untouched slots must stay zero")
	}
}

func TestComputePacing(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	now := today.Add(14 * time.Hour)

	var entries []feed.Entry
	// Each of the previous 3 days: 600s before the 14:00 cutoff, 600s after.
	for d := 1; d <= 3; d++ {
		day := utc.AddDays(today, -d)
		entries = append(entries,
			makeEntry(day.Add(9*time.Hour), seg(feed.Left, 600)),
			makeEntry(day.Add(16*time.Hour), seg(feed.Left, 600)),
		)
	}
	// Today so far: 900s.
	entries = append(entries, makeEntry(today.Add(10*time.Hour), seg(feed.Left, 900)))

	p := ComputePacing(entries, nil, 3, utc, now)
	if math.Abs(p.CumulativeToday-900) > 0.001 {
		t.Errorf("CumulativeToday = %v, want 900", p.CumulativeToday)
	}
	if math.Abs(p.HistoricalMean-600) > 0.001 {
		t.Errorf("HistoricalMean = %v, want 600 (after-cutoff feeds excluded)", p.HistoricalMean)
	}
	if math.Abs(p.Delta-300) > 0.001 {
		t.Errorf("Delta = %v, want 300", p.Delta)
	}
	if math.Abs(p.Percent-50) > 0.001 {
		t.Errorf("Percent = %v, want 50", p.Percent)
	}
	if p.SampleDays != 3 {
		t.Errorf("SampleDays = %d, want 3", p.SampleDays)
	}
}

func TestComputePacingZeroHistory(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	now := today.Add(10 * time.Hour)
	entries := []feed.Entry{makeEntry(today.Add(8*time.Hour), seg(feed.Left, 300))}

	p := ComputePacing(entries, nil, 7, utc, now)
	if p.Percent != 0 {
		t.Errorf("Percent = %v, want 0 when the historical mean is zero", p.Percent)
	}
	if math.Abs(p.CumulativeToday-300) > 0.001 {
		t.Errorf("CumulativeToday = %v, want 300", p.CumulativeToday)
	}
}
