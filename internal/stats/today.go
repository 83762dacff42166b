package stats

import (
	"time"

	"feedlog-mcp/internal/feed"
)

// ComputeTodaySummary accumulates today's feeding time up to now, split per
// side. Completed sessions contribute their breast units (or envelope when
// unit-less) clipped to [startOfDay, now]; an active unit-less session
// contributes its running envelope as ActiveElapsed.
func ComputeTodaySummary(entries []feed.Entry, active *feed.Entry, cal Calendar, now time.Time) TodaySummary {
	dayStart := cal.StartOfDay(now)

	var summary TodaySummary

	add := func(breast feed.Breast, d float64) {
		summary.Total += d
		if breast == feed.Left {
			summary.LeftTotal += d
		} else {
			summary.RightTotal += d
		}
	}

	for _, e := range entries {
		if !e.Completed() {
			continue
		}
		if len(e.Units) > 0 {
			contributed := false
			for _, u := range e.Units {
				if d := overlapSeconds(u.Start, u.End, dayStart, now); d > 0 {
					add(u.Breast, d)
					contributed = true
				}
			}
			if contributed {
				summary.CompletedCount++
			}
		} else if d := overlapSeconds(e.Start, *e.End, dayStart, now); d > 0 {
			add(e.Breast, d)
			summary.CompletedCount++
		}
	}

	if active != nil && !active.Completed() {
		if len(active.Units) > 0 {
			// Closed segments of the running session count; the open
			// segment's start is only knowable via the state machine.
			for _, u := range active.Units {
				if d := overlapSeconds(u.Start, u.End, dayStart, now); d > 0 {
					add(u.Breast, d)
				}
			}
		} else if d := overlapSeconds(active.Start, now, dayStart, now); d > 0 {
			add(active.Breast, d)
			summary.ActiveElapsed = d
		}
	}

	summary.HasActive = active != nil && !active.Completed() && summary.ActiveElapsed > 0
	return summary
}

// TodayTimeOfDayBreakdown splits today's feeding time across the four
// time-of-day slots, clipping segments at slot boundaries. A session
// spanning two slots contributes to both.
func TodayTimeOfDayBreakdown(entries []feed.Entry, active *feed.Entry, cal Calendar, now time.Time) []TimeOfDayBucket {
	dayStart := cal.StartOfDay(now)
	d6 := cal.AddHours(dayStart, 6)
	d12 := cal.AddHours(dayStart, 12)
	d18 := cal.AddHours(dayStart, 18)

	clampMin := func(t, floor time.Time) time.Time {
		if t.Before(floor) {
			return floor
		}
		return t
	}
	clampMax := func(t, ceil time.Time) time.Time {
		if t.After(ceil) {
			return ceil
		}
		return t
	}

	type slotRange struct {
		slot       TimeOfDaySlot
		start, end time.Time
	}
	slots := []slotRange{
		{SlotMorning, d6, clampMin(d6, clampMax(d12, now))},
		{SlotAfternoon, d12, clampMin(d12, clampMax(d18, now))},
		{SlotEvening, d18, clampMin(d18, now)},
		{SlotNight, dayStart, clampMax(d6, now)},
	}

	totals := map[TimeOfDaySlot]float64{}
	counts := map[TimeOfDaySlot]int{}

	addInterval := func(start, end time.Time) {
		if !end.After(start) {
			return
		}
		for _, s := range slots {
			if d := overlapSeconds(start, end, s.start, s.end); d > 0 {
				totals[s.slot] += d
				counts[s.slot]++
			}
		}
	}

	addEntrySegments := func(e feed.Entry, endFallback time.Time) {
		if len(e.Units) > 0 {
			for _, u := range e.Units {
				if s, t, ok := clipInterval(u.Start, u.End, dayStart, now); ok {
					addInterval(s, t)
				}
			}
		} else if s, t, ok := clipInterval(e.Start, endFallback, dayStart, now); ok {
			addInterval(s, t)
		}
	}

	for _, e := range entries {
		if e.Completed() {
			addEntrySegments(e, *e.End)
		}
	}
	if active != nil && !active.Completed() {
		addEntrySegments(*active, now)
	}

	buckets := make([]TimeOfDayBucket, 0, len(SlotOrder))
	for _, slot := range SlotOrder {
		buckets = append(buckets, TimeOfDayBucket{
			Slot:         slot,
			Total:        totals[slot],
			SessionCount: counts[slot],
		})
	}
	return buckets
}

// ComputePacing compares today's cumulative total against the mean of the
// same clock-time cutoff over each of the preceding days: for a call at
// 14:30, each prior day is measured from its midnight to its 14:30.
func ComputePacing(entries []feed.Entry, active *feed.Entry, days int, cal Calendar, now time.Time) PacingComparison {
	dayStart := cal.StartOfDay(now)
	sinceStart := now.Sub(dayStart)

	cumulativeToday := ComputeTodaySummary(entries, active, cal, now).Total

	days = max(1, days)
	totals := make([]float64, 0, days)
	for i := 1; i <= days; i++ {
		prevStart := cal.AddDays(dayStart, -i)
		prevCutoff := prevStart.Add(sinceStart)

		var total float64
		for _, e := range entries {
			if !e.Completed() {
				continue
			}
			if len(e.Units) > 0 {
				for _, u := range e.Units {
					total += overlapSeconds(u.Start, u.End, prevStart, prevCutoff)
				}
			} else {
				total += overlapSeconds(e.Start, *e.End, prevStart, prevCutoff)
			}
		}
		totals = append(totals, total)
	}

	historicalMean := mean(totals)
	delta := cumulativeToday - historicalMean
	pct := 0.0
	if historicalMean > 0 {
		pct = delta / historicalMean * 100
	}
	return PacingComparison{
		CumulativeToday: cumulativeToday,
		HistoricalMean:  historicalMean,
		Delta:           delta,
		Percent:         pct,
		SampleDays:      len(totals),
	}
}

// overlapSeconds is the overlap of [start,end] with [lo,hi], clamped >= 0.
func overlapSeconds(start, end, lo, hi time.Time) float64 {
	s := start
	if s.Before(lo) {
		s = lo
	}
	e := end
	if e.After(hi) {
		e = hi
	}
	d := e.Sub(s).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

func clipInterval(start, end, lo, hi time.Time) (time.Time, time.Time, bool) {
	s := start
	if s.Before(lo) {
		s = lo
	}
	e := end
	if e.After(hi) {
		e = hi
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, false
	}
	return s, e, true
}
