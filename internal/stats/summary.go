package stats

import (
	"sort"
	"time"

	"feedlog-mcp/internal/feed"
)

// ComputeStats reduces the whole log to totals and averages. Durations come
// from completed sessions; intervals are start-to-start. Fewer than 4
// intervals take a plain mean with no outlier handling; 4 or more are
// winsorized with the age-aware cap, falling back to the raw mean if
// winsorization drops everything.
func ComputeStats(entries []feed.Entry, ageDays *int) FeedingStats {
	if len(entries) == 0 {
		return FeedingStats{}
	}

	var completed []feed.Entry
	for _, e := range entries {
		if e.Completed() {
			completed = append(completed, e)
		}
	}

	var totalDuration float64
	for _, e := range completed {
		totalDuration += e.EffectiveDuration().Seconds()
	}
	averageDuration := 0.0
	if len(completed) > 0 {
		averageDuration = totalDuration / float64(len(completed))
	}

	sorted := make([]feed.Entry, len(completed))
	copy(sorted, completed)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	rawIntervals := make([]float64, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		dt := sorted[i].Start.Sub(sorted[i-1].Start).Seconds()
		if dt < 0 {
			dt = 0
		}
		rawIntervals = append(rawIntervals, dt)
	}

	if len(rawIntervals) == 0 {
		return FeedingStats{
			TotalDuration:   totalDuration,
			AverageDuration: averageDuration,
		}
	}

	if len(rawIntervals) < 4 {
		return FeedingStats{
			TotalDuration:   totalDuration,
			AverageDuration: averageDuration,
			AverageInterval: mean(rawIntervals),
			IntervalCount:   len(rawIntervals),
		}
	}

	processed, capped := WinsorizeIntervals(rawIntervals, ageDays)
	averageInterval := mean(processed)
	if len(processed) == 0 {
		averageInterval = mean(rawIntervals)
	}

	return FeedingStats{
		TotalDuration:   totalDuration,
		AverageDuration: averageDuration,
		AverageInterval: averageInterval,
		IntervalCount:   len(rawIntervals),
		OutlierCount:    capped,
	}
}

// EstimateNextFeed projects the next feed time: the latest completed
// session's start plus the average interval. Returns false when there is no
// completed session or no positive average interval.
func EstimateNextFeed(entries []feed.Entry, ageDays *int, now time.Time) (NextFeedEstimate, bool) {
	var last *feed.Entry
	for i := range entries {
		if !entries[i].Completed() {
			continue
		}
		if last == nil || entries[i].Start.After(last.Start) {
			last = &entries[i]
		}
	}
	if last == nil {
		return NextFeedEstimate{}, false
	}

	stats := ComputeStats(entries, ageDays)
	if stats.AverageInterval <= 0 {
		return NextFeedEstimate{}, false
	}

	return NextFeedEstimate{
		NextFeedTime: last.Start.Add(time.Duration(stats.AverageInterval * float64(time.Second))),
		Interval:     stats.AverageInterval,
	}, true
}
