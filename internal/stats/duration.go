package stats

import (
	"math"
	"sort"
	"time"

	"feedlog-mcp/internal/feed"
)

// DurationOptions parameterizes average-duration computations.
type DurationOptions struct {
	Window   TimeWindow
	Grouping Grouping
	Outliers OutlierPolicy
	Scenario Scenario
	// RecencyHalfLifeHours, when positive, weights each sample by
	// exp(-age/tau) with tau = halfLife*3600/ln2. Applies to the overall
	// (ungrouped) average only.
	RecencyHalfLifeHours float64
}

// AverageDurations computes the mean feeding duration over a window, with an
// optional per-breast or per-slot breakdown. Only completed sessions with at
// least one breast unit contribute: envelope-only records would pollute
// unit-based stats.
func AverageDurations(entries []feed.Entry, opts DurationOptions, cal Calendar, now time.Time) (overall float64, groups []GroupedAverage) {
	if len(entries) == 0 {
		return 0, nil
	}
	windowed := completedInWindow(entries, opts.Window, cal, now)

	samples, ages := unitDurations(windowed, now)
	overall = recencyWeightedAverage(applyOutlierPolicy(samples, opts.Outliers), ages, samples, opts.Outliers, opts.RecencyHalfLifeHours)

	switch opts.Grouping {
	case GroupBreast:
		groups = breastDurationGroups(windowed, opts.Outliers)
	case GroupTimeOfDay:
		groups = timeOfDayDurationGroups(windowed, opts.Scenario, opts.Outliers, cal)
	}
	return overall, groups
}

// AverageDurationBuckets is the time-of-day bucket surface: same overall
// average, groups reported as TimeOfDayBucket values.
func AverageDurationBuckets(entries []feed.Entry, opts DurationOptions, cal Calendar, now time.Time) (overall float64, buckets []TimeOfDayBucket) {
	opts.Grouping = GroupTimeOfDay
	overall, groups := AverageDurations(entries, opts, cal, now)
	buckets = make([]TimeOfDayBucket, 0, len(groups))
	for _, g := range groups {
		buckets = append(buckets, TimeOfDayBucket{
			Slot:         TimeOfDaySlot(g.Label),
			Total:        g.Average,
			SessionCount: g.Count,
		})
	}
	return overall, buckets
}

// DurationTrend compares the average duration in the current window with the
// immediately preceding window of the same length.
func DurationTrend(entries []feed.Entry, window TimeWindow, cal Calendar, now time.Time) Trend {
	if window.Days < 1 && window.Hours < 1 {
		return Trend{}
	}

	avgIn := func(start, end time.Time) float64 {
		var vals []float64
		for _, e := range entries {
			if !e.Completed() || e.Start.Before(start) || e.Start.After(end) {
				continue
			}
			if v, ok := unitDuration(e); ok {
				vals = append(vals, v)
			}
		}
		return mean(vals)
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

// DurationStability returns the coefficient of variation (stddev/mean, with
// sample variance) of durations in the window, or 0 when fewer than two
// samples exist or the mean is not positive.
func DurationStability(entries []feed.Entry, window TimeWindow, cal Calendar, now time.Time) float64 {
	windowed := completedInWindow(entries, window, cal, now)
	vals, _ := unitDurations(windowed, now)
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	if m <= 0 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	variance := ss / float64(len(vals)-1)
	return math.Sqrt(variance) / m
}

// LongestFeed returns the longest completed feed in the window, or false
// when the window holds none.
func LongestFeed(entries []feed.Entry, window TimeWindow, cal Calendar, now time.Time) (Milestone, bool) {
	windowed := completedInWindow(entries, window, cal, now)
	var best *feed.Entry
	var bestDur float64
	for i := range windowed {
		d := windowed[i].EffectiveDuration().Seconds()
		if best == nil || d > bestDur {
			best = &windowed[i]
			bestDur = d
		}
	}
	if best == nil {
		return Milestone{}, false
	}
	return Milestone{
		Title:  "Longest feed",
		Value:  bestDur,
		Date:   best.Start,
		Breast: string(best.Breast),
	}, true
}

// DurationTips derives at most two hints from trend, stability, and sample
// size. Thresholds: fewer than 3 samples, |trend| above 8%, CV above 0.35.
func DurationTips(trend Trend, stabilityCV float64, scenario Scenario, sampleCount int) []Tip {
	var tips []Tip
	if sampleCount < 3 {
		return []Tip{{ID: "few", Text: "Not enough recent feeds to show reliable patterns yet."}}
	}
	if p := trend.Percent(); p > 8 {
		tips = append(tips, Tip{ID: "up", Text: "Feeds are getting longer — babies sometimes take their time during growth phases."})
	} else if p < -8 {
		tips = append(tips, Tip{ID: "down", Text: "Slightly shorter feeds lately — many babies get more efficient as they grow."})
	}
	if stabilityCV > 0.35 {
		tips = append(tips, Tip{ID: "variable", Text: "Durations are quite variable — variability is common during routine changes."})
	}
	if scenario == ScenarioNight {
		tips = append(tips, Tip{ID: "night", Text: "Night feeds often trend shorter as settling improves."})
	}
	if len(tips) > 2 {
		tips = tips[:2]
	}
	return tips
}

// completedInWindow keeps completed sessions whose start lies in
// [windowStart, now].
func completedInWindow(entries []feed.Entry, window TimeWindow, cal Calendar, now time.Time) []feed.Entry {
	start, _ := window.Resolve(cal, now)
	out := make([]feed.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Completed() && !e.Start.Before(start) && !e.Start.After(now) {
			out = append(out, e)
		}
	}
	return out
}

// unitDuration returns the unit-sum duration in seconds for sessions that
// carry at least one breast unit.
func unitDuration(e feed.Entry) (float64, bool) {
	if len(e.Units) == 0 {
		return 0, false
	}
	return e.EffectiveDuration().Seconds(), true
}

// unitDurations collects unit-backed durations plus each sample's age
// relative to now (for recency weighting).
func unitDurations(entries []feed.Entry, now time.Time) (vals, ages []float64) {
	for _, e := range entries {
		if v, ok := unitDuration(e); ok {
			vals = append(vals, v)
			ages = append(ages, now.Sub(e.Start).Seconds())
		}
	}
	return vals, ages
}

func applyOutlierPolicy(values []float64, policy OutlierPolicy) []float64 {
	if policy == ExcludeIQR {
		return IQRExclude(values)
	}
	return values
}

// recencyWeightedAverage averages the filtered sample. With a positive
// half-life, each raw sample is weighted by exp(-age/tau); the outlier
// filter then determines which samples participate.
func recencyWeightedAverage(filtered, ages, raw []float64, policy OutlierPolicy, halfLifeHours float64) float64 {
	if len(filtered) == 0 {
		return 0
	}
	if halfLifeHours <= 0 {
		return mean(filtered)
	}

	// Map kept values back to their ages. Filtering preserves order, so a
	// single forward scan pairs each kept value with its origin.
	tau := halfLifeHours * 3600 / math.Ln2
	var wSum, vSum float64
	j := 0
	for i, v := range raw {
		if j < len(filtered) && filtered[j] == v {
			w := math.Exp(-ages[i] / tau)
			wSum += w
			vSum += w * v
			j++
		}
	}
	if wSum <= 0 {
		return mean(filtered)
	}
	return vSum / wSum
}

func breastDurationGroups(entries []feed.Entry, policy OutlierPolicy) []GroupedAverage {
	buckets := map[feed.Breast][]float64{}
	for _, e := range entries {
		if v, ok := unitDuration(e); ok {
			buckets[e.Breast] = append(buckets[e.Breast], v)
		}
	}
	groups := make([]GroupedAverage, 0, len(buckets))
	for breast, vals := range buckets {
		clean := applyOutlierPolicy(vals, policy)
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

// timeOfDayDurationGroups buckets sessions by start slot. Under the night
// scenario, evening starts at or after 22:00 count as night.
func timeOfDayDurationGroups(entries []feed.Entry, scenario Scenario, policy OutlierPolicy, cal Calendar) []GroupedAverage {
	buckets := map[TimeOfDaySlot][]float64{}
	for _, e := range entries {
		v, ok := unitDuration(e)
		if !ok {
			continue
		}
		slot := scenarioSlot(cal, e.Start, scenario)
		buckets[slot] = append(buckets[slot], v)
	}

	var groups []GroupedAverage
	for _, slot := range SlotOrder {
		vals, ok := buckets[slot]
		if !ok {
			continue
		}
		clean := applyOutlierPolicy(vals, policy)
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

// scenarioSlot maps a start time to its slot, remapping late evening
// (>= 22:00) into night under the night scenario.
func scenarioSlot(cal Calendar, t time.Time, scenario Scenario) TimeOfDaySlot {
	slot := cal.Slot(t)
	if scenario == ScenarioNight && slot == SlotEvening && cal.HourOfDay(t) >= 22 {
		return SlotNight
	}
	return slot
}
