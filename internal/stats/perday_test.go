package stats

import (
	"testing"
	"time"

	"feedlog-mcp/internal/feed"
)

func TestFeedsPerDaySeriesContiguous(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	entries := []feed.Entry{
		makeEntry(today.Add(-2*24*time.Hour).Add(9*time.Hour), seg(feed.Left, 60)),
		makeEntry(today.Add(-2*24*time.Hour).Add(15*time.Hour), seg(feed.Right, 60)),
		makeEntry(today.Add(10*time.Hour), seg(feed.Left, 60)),
	}

	overall, left, right := FeedsPerDaySeries(entries, Days(4), ScenarioAll, false, utc, statsNow)
	if left != nil || right != nil {
		t.Errorf("breast series = %v/%v, want nil without grouping", left, right)
	}
	if len(overall) != 4 {
		t.Fatalf("series length = %d, want 4 contiguous days", len(overall))
	}
	wantCounts := []int{0, 2, 0, 1}
	for i, p := range overall {
		if p.Count != wantCounts[i] {
			t.Errorf("day %d count = %d, want %d", i, p.Count, wantCounts[i])
		}
		wantDate := utc.AddDays(today, i-3)
		if !p.Date.Equal(wantDate) {
			t.Errorf("day %d date = %v, want %v", i, p.Date, wantDate)
		}
	}
}

func TestFeedsPerDaySeriesEmptyInputStillContiguous(t *testing.T) {
	overall, _, _ := FeedsPerDaySeries(nil, Days(7), ScenarioAll, false, utc, statsNow)
	if len(overall) != 7 {
		t.Fatalf("series length = %d, want 7", len(overall))
	}
	for i, p := range overall {
		if p.Count != 0 {
			t.Errorf("day %d count = %d, want 0", i, p.Count)
		}
	}
}

func TestFeedsPerDaySeriesBreastGrouping(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	entries := []feed.Entry{
		makeEntry(today.Add(8*time.Hour), seg(feed.Left, 60)),
		makeEntry(today.Add(10*time.Hour), seg(feed.Left, 60)),
		makeEntry(today.Add(12*time.Hour), seg(feed.Right, 60)),
	}

	overall, left, right := FeedsPerDaySeries(entries, Days(1), ScenarioAll, true, utc, statsNow)
	if len(overall) != 1 || len(left) != 1 || len(right) != 1 {
		t.Fatalf("lengths = %d/%d/%d, want 1 each", len(overall), len(left), len(right))
	}
	if left[0].Count != 2 || right[0].Count != 1 || overall[0].Count != 3 {
		t.Errorf("counts = %d/%d/%d, want left 2, right 1, overall 3",
			left[0].Count, right[0].Count, overall[0].Count)
	}
}

func TestFeedsPerDaySummary(t *testing.T) {
	points := []DayPoint{
		{Count: 8}, {Count: 10}, {Count: 6}, {Count: 12},
	}
	s := FeedsPerDaySummary(points)
	if s.Average != 9 {
		t.Errorf("Average = %v, want 9", s.Average)
	}
	if s.Median != 9 {
		t.Errorf("Median = %v, want 9", s.Median)
	}
	if s.Min != 6 || s.Max != 12 || s.Samples != 4 {
		t.Errorf("min/max/samples = %d/%d/%d, want 6/12/4", s.Min, s.Max, s.Samples)
	}

	if got := FeedsPerDaySummary(nil); got != (PerDaySummary{}) {
		t.Errorf("empty summary = %+v, want zero value", got)
	}
}

func TestFeedsPerDayTrend(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	var entries []feed.Entry
	// Current 2-day window: 3 feeds/day. Previous 2 days: 1 feed/day.
	for d := 0; d < 2; d++ {
		day := utc.AddDays(today, -d)
		for i := 0; i < 3; i++ {
			entries = append(entries, makeEntry(day.Add(time.Duration(8+3*i)*time.Hour), seg(feed.Left, 60)))
		}
	}
	for d := 2; d < 4; d++ {
		day := utc.AddDays(today, -d)
		entries = append(entries, makeEntry(day.Add(9*time.Hour), seg(feed.Left, 60)))
	}

	tr := FeedsPerDayTrend(entries, Days(2), ScenarioAll, utc, statsNow)
	if tr.CurrentAvg != 3 {
		t.Errorf("CurrentAvg = %v, want 3", tr.CurrentAvg)
	}
	if tr.PreviousAvg != 1 {
		t.Errorf("PreviousAvg = %v, want 1", tr.PreviousAvg)
	}
}
