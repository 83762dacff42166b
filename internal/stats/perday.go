package stats

import (
	"time"

	"feedlog-mcp/internal/feed"
)

// FeedsPerDaySeries builds a contiguous per-day count series over the
// window: every civil day appears, zero-filled when no sessions fall on it.
// With breast grouping, left and right series are returned alongside the
// overall one.
func FeedsPerDaySeries(entries []feed.Entry, window TimeWindow, scenario Scenario, byBreast bool, cal Calendar, now time.Time) (overall, left, right []DayPoint) {
	resolvedStart, endExclusive := window.Resolve(cal, now)
	start := cal.StartOfDay(resolvedStart)
	dayCount := cal.DaysBetween(start, cal.StartOfDay(endExclusive))
	if dayCount < 0 {
		dayCount = 0
	}

	var scoped []feed.Entry
	for _, e := range entries {
		if e.Completed() && !e.Start.Before(start) && e.Start.Before(endExclusive) {
			scoped = append(scoped, e)
		}
	}
	scoped = FilterScenario(scoped, scenario, cal)

	series := func(subset []feed.Entry) []DayPoint {
		countsByDay := map[time.Time]int{}
		for _, e := range subset {
			countsByDay[cal.StartOfDay(e.Start)]++
		}
		points := make([]DayPoint, dayCount)
		for i := 0; i < dayCount; i++ {
			day := cal.AddDays(start, i)
			points[i] = DayPoint{Date: day, Count: countsByDay[day]}
		}
		return points
	}

	if !byBreast {
		return series(scoped), nil, nil
	}

	var lefts, rights []feed.Entry
	for _, e := range scoped {
		if e.Breast == feed.Left {
			lefts = append(lefts, e)
		} else {
			rights = append(rights, e)
		}
	}
	left = series(lefts)
	right = series(rights)
	overall = make([]DayPoint, dayCount)
	for i := 0; i < dayCount; i++ {
		overall[i] = DayPoint{Date: left[i].Date, Count: left[i].Count + right[i].Count}
	}
	return overall, left, right
}

// FeedsPerDaySummary reduces a per-day series to mean/median/min/max.
func FeedsPerDaySummary(points []DayPoint) PerDaySummary {
	if len(points) == 0 {
		return PerDaySummary{}
	}
	counts := make([]int, len(points))
	total := 0
	minC, maxC := points[0].Count, points[0].Count
	for i, p := range points {
		counts[i] = p.Count
		total += p.Count
		if p.Count < minC {
			minC = p.Count
		}
		if p.Count > maxC {
			maxC = p.Count
		}
	}
	return PerDaySummary{
		Average: float64(total) / float64(len(counts)),
		Median:  medianInts(counts),
		Min:     minC,
		Max:     maxC,
		Samples: len(counts),
	}
}

// FeedsPerDayTrend compares the average daily count in the current window
// with the immediately preceding span of equal length in days.
func FeedsPerDayTrend(entries []feed.Entry, window TimeWindow, scenario Scenario, cal Calendar, now time.Time) Trend {
	resolvedStart, endExclusive := window.Resolve(cal, now)
	curStart := cal.StartOfDay(resolvedStart)
	dayCount := cal.DaysBetween(curStart, cal.StartOfDay(endExclusive))
	if dayCount < 0 {
		dayCount = 0
	}
	prevStart := cal.AddDays(curStart, -dayCount)

	avgIn := func(start, endExcl time.Time) float64 {
		var scoped []feed.Entry
		for _, e := range entries {
			if e.Completed() && !e.Start.Before(start) && e.Start.Before(endExcl) {
				scoped = append(scoped, e)
			}
		}
		scoped = FilterScenario(scoped, scenario, cal)

		days := cal.DaysBetween(cal.StartOfDay(start), cal.StartOfDay(endExcl))
		if days <= 0 {
			return 0
		}
		return float64(len(scoped)) / float64(days)
	}

	return Trend{
		CurrentAvg:  avgIn(curStart, endExclusive),
		PreviousAvg: avgIn(prevStart, curStart),
	}
}
