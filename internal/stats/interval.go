package stats

import (
	"sort"
	"time"

	"feedlog-mcp/internal/feed"
)

// IntervalOptions parameterizes average-interval computations.
type IntervalOptions struct {
	Window          TimeWindow
	Grouping        Grouping
	Scenario        Scenario
	ExcludeOutliers bool
}

// intervalPair is two consecutive completed sessions in start order.
type intervalPair struct {
	prev, curr feed.Entry
}

func (p intervalPair) gap() (float64, bool) {
	dt := p.curr.Start.Sub(p.prev.Start).Seconds()
	return dt, dt > 0
}

// StartToStartIntervals computes positive start-to-start gaps, in seconds,
// for a chronologically ordered session list. Non-positive gaps from
// malformed data are skipped, not errored.
func StartToStartIntervals(ordered []feed.Entry) []float64 {
	if len(ordered) < 2 {
		return nil
	}
	out := make([]float64, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		if dt := ordered[i].Start.Sub(ordered[i-1].Start).Seconds(); dt > 0 {
			out = append(out, dt)
		}
	}
	return out
}

// AverageIntervals computes the mean start-to-start gap over a window, with
// an optional per-breast or per-slot breakdown. Night-scenario overall
// averaging only pairs sessions that share a civil day and both sit in the
// night slot.
func AverageIntervals(entries []feed.Entry, opts IntervalOptions, cal Calendar, now time.Time) (overall float64, groups []GroupedAverage) {
	pairs := scopedPairs(entries, opts.Window, opts.Scenario, cal, now)
	if len(pairs) == 0 {
		return 0, nil
	}

	overall = averageForPairs(pairs, opts.Scenario, opts.ExcludeOutliers, cal)

	switch opts.Grouping {
	case GroupBreast:
		groups = breastIntervalGroups(pairs, opts.ExcludeOutliers)
	case GroupTimeOfDay:
		groups = strictSlotIntervalGroups(pairs, opts.ExcludeOutliers, cal)
	}
	return overall, groups
}

// AverageIntervalBuckets is the looser time-of-day bucket surface: pairs
// within the same civil day are attributed to the current feed's slot, with
// the night-scenario late-evening remap.
func AverageIntervalBuckets(entries []feed.Entry, opts IntervalOptions, cal Calendar, now time.Time) (overall float64, buckets []TimeOfDayBucket) {
	pairs := scopedPairs(entries, opts.Window, opts.Scenario, cal, now)
	if len(pairs) == 0 {
		return 0, nil
	}

	overall = averageForPairs(pairs, opts.Scenario, opts.ExcludeOutliers, cal)

	grouped := map[TimeOfDaySlot][]float64{}
	for _, p := range pairs {
		if !cal.SameDay(p.prev.Start, p.curr.Start) {
			continue
		}
		if dt, ok := p.gap(); ok {
			slot := scenarioSlot(cal, p.curr.Start, opts.Scenario)
			grouped[slot] = append(grouped[slot], dt)
		}
	}
	for _, slot := range SlotOrder {
		vals, ok := grouped[slot]
		if !ok {
			continue
		}
		clean := cleanedIntervals(vals, opts.ExcludeOutliers)
		if len(clean) == 0 {
			continue
		}
		buckets = append(buckets, TimeOfDayBucket{
			Slot:         slot,
			Total:        mean(clean),
			SessionCount: len(clean),
		})
	}
	return overall, buckets
}

// IntervalTrend compares the average start-to-start gap in the current
// window with the immediately preceding window of the same length.
func IntervalTrend(entries []feed.Entry, window TimeWindow, scenario Scenario, excludeOutliers bool, cal Calendar, now time.Time) Trend {
	if window.Days < 1 && window.Hours < 1 {
		return Trend{}
	}

	avgIn := func(start, end time.Time) float64 {
		var scoped []feed.Entry
		for _, e := range entries {
			if e.Completed() && !e.Start.Before(start) && !e.Start.After(end) {
				scoped = append(scoped, e)
			}
		}
		scoped = FilterScenario(scoped, scenario, cal)
		sort.Slice(scoped, func(i, j int) bool { return scoped[i].Start.Before(scoped[j].Start) })
		if len(scoped) < 2 {
			return 0
		}
		pairs := make([]intervalPair, 0, len(scoped)-1)
		for i := 1; i < len(scoped); i++ {
			pairs = append(pairs, intervalPair{prev: scoped[i-1], curr: scoped[i]})
		}
		return averageForPairs(pairs, scenario, excludeOutliers, cal)
	}

	var curStart, prevStart, prevEnd time.Time
	if window.IsRolling() {
		curStart, _ = RollingRange(now, window.Hours)
		prevStart = curStart.Add(-time.Duration(window.Hours) * time.Hour)
		prevEnd = curStart.Add(-time.Second)
	} else {
		curStart, _ = DayRange(cal, now, window.Days)
		prevStart = cal.AddDays(curStart, -window.Days)
		prevEnd = curStart.Add(-time.Second)
	}
	return Trend{
		CurrentAvg:  avgIn(curStart, now),
		PreviousAvg: avgIn(prevStart, prevEnd),
	}
}

// scopedPairs selects completed sessions inside the window, applies the
// scenario filter, sorts chronologically, and builds consecutive pairs.
func scopedPairs(entries []feed.Entry, window TimeWindow, scenario Scenario, cal Calendar, now time.Time) []intervalPair {
	start, endExclusive := window.Resolve(cal, now)

	var scoped []feed.Entry
	for _, e := range entries {
		if e.Completed() && !e.Start.Before(start) && !e.Start.After(endExclusive) {
			scoped = append(scoped, e)
		}
	}
	scoped = FilterScenario(scoped, scenario, cal)
	sort.Slice(scoped, func(i, j int) bool { return scoped[i].Start.Before(scoped[j].Start) })

	if len(scoped) < 2 {
		return nil
	}
	pairs := make([]intervalPair, 0, len(scoped)-1)
	for i := 1; i < len(scoped); i++ {
		pairs = append(pairs, intervalPair{prev: scoped[i-1], curr: scoped[i]})
	}
	return pairs
}

// averageForPairs averages pair gaps respecting scenario semantics: under
// the night scenario only same-day pairs with both starts in the night slot
// are valid.
func averageForPairs(pairs []intervalPair, scenario Scenario, excludeOutliers bool, cal Calendar) float64 {
	var vals []float64
	for _, p := range pairs {
		if scenario == ScenarioNight {
			if !cal.SameDay(p.prev.Start, p.curr.Start) ||
				cal.Slot(p.prev.Start) != SlotNight ||
				cal.Slot(p.curr.Start) != SlotNight {
				continue
			}
		}
		if dt, ok := p.gap(); ok {
			vals = append(vals, dt)
		}
	}
	return mean(cleanedIntervals(vals, excludeOutliers))
}

func cleanedIntervals(values []float64, excludeOutliers bool) []float64 {
	if excludeOutliers {
		return IQRExclude(values)
	}
	return values
}

// breastIntervalGroups attributes each gap to the current feed's side.
func breastIntervalGroups(pairs []intervalPair, excludeOutliers bool) []GroupedAverage {
	buckets := map[feed.Breast][]float64{}
	for _, p := range pairs {
		if dt, ok := p.gap(); ok {
			buckets[p.curr.Breast] = append(buckets[p.curr.Breast], dt)
		}
	}
	groups := make([]GroupedAverage, 0, len(buckets))
	for breast, vals := range buckets {
		clean := cleanedIntervals(vals, excludeOutliers)
		if len(clean) == 0 {
			continue
		}
		groups = append(groups, GroupedAverage{
			Label:   string(breast),
			Average: mean(clean),
			Count:   len(clean),
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
	return groups
}

// strictSlotIntervalGroups only pairs sessions on the same civil day whose
// starts share a time-of-day slot.
func strictSlotIntervalGroups(pairs []intervalPair, excludeOutliers bool, cal Calendar) []GroupedAverage {
	buckets := map[TimeOfDaySlot][]float64{}
	for _, p := range pairs {
		if !cal.SameDay(p.prev.Start, p.curr.Start) {
			continue
		}
		sPrev := cal.Slot(p.prev.Start)
		sCurr := cal.Slot(p.curr.Start)
		if sPrev != sCurr {
			continue
		}
		if dt, ok := p.gap(); ok {
			buckets[sCurr] = append(buckets[sCurr], dt)
		}
	}

	var groups []GroupedAverage
	for _, slot := range SlotOrder {
		vals, ok := buckets[slot]
		if !ok {
			continue
		}
		clean := cleanedIntervals(vals, excludeOutliers)
		if len(clean) == 0 {
			continue
		}
		groups = append(groups, GroupedAverage{
			Label:   string(slot),
			Average: mean(clean),
			Count:   len(clean),
		})
	}
	return groups
}
