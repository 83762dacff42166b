package stats

import (
	"math"
	"testing"
	"time"

	"feedlog-mcp/internal/feed"
)

func TestDailyTotalSeriesSplitsAcrossMidnight(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	// A feed from 23:40 yesterday to 00:20 today: 20 minutes on each day.
	entries := []feed.Entry{
		makeEntry(today.Add(-20*time.Minute), seg(feed.Left, 40*60)),
	}

	series := DailyTotalSeries(entries, Days(2), ScenarioAll, utc, statsNow)
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}
	if math.Abs(series[0].Total-20*60) > 0.001 {
		t.Errorf("yesterday total = %v, want 1200", series[0].Total)
	}
	if math.Abs(series[1].Total-20*60) > 0.001 {
		t.Errorf("today total = %v, want 1200", series[1].Total)
	}
}

func TestDailyTotalSeriesSegmentAware(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	// Two units with a gap between them: only unit time counts.
	e := feed.Entry{
		Start:  today.Add(9 * time.Hour),
		Breast: feed.Left,
	}
	end := today.Add(9*time.Hour + 10*time.Minute)
	e.End = &end
	e.Units = []feed.Unit{
		{Breast: feed.Left, Duration: 2 * time.Minute, Start: today.Add(9 * time.Hour), End: today.Add(9*time.Hour + 2*time.Minute)},
		{Breast: feed.Right, Duration: 3 * time.Minute, Start: today.Add(9*time.Hour + 5*time.Minute), End: today.Add(9*time.Hour + 8*time.Minute)},
	}

	series := DailyTotalSeries([]feed.Entry{e}, Days(1), ScenarioAll, utc, statsNow)
	if len(series) != 1 {
		t.Fatalf("series length = %d, want 1", len(series))
	}
	if math.Abs(series[0].Total-5*60) > 0.001 {
		t.Errorf("total = %v, want 300 (unit time, not envelope)", series[0].Total)
	}
}

func TestDailyTotalTrendAnchorsAtYesterday(t *testing.T) {
	today := utc.StartOfDay(statsNow)
	entries := []feed.Entry{
		makeEntry(today.Add(9*time.Hour), seg(feed.Left, 600)),
		makeEntry(today.Add(-15*time.Hour), seg(feed.Left, 300)), // yesterday 09:00
	}

	tr := DailyTotalTrend(entries, Days(1), ScenarioAll, utc, statsNow)
	if math.Abs(tr.CurrentAvg-600) > 0.001 {
		t.Errorf("CurrentAvg = %v, want 600", tr.CurrentAvg)
	}
	if math.Abs(tr.PreviousAvg-300) > 0.001 {
		t.Errorf("PreviousAvg = %v, want 300", tr.PreviousAvg)
	}
}

func TestWeeklyTotalSeries(t *testing.T) {
	// Anchor mid-week: Wednesday 2025-03-12.
	weekStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entries := []feed.Entry{
		makeEntry(weekStart.Add(34*time.Hour), seg(feed.Left, 900)),  // this week (Tue)
		makeEntry(weekStart.Add(-5*24*time.Hour), seg(feed.Left, 600)), // previous week (Wed)
	}

	series := WeeklyTotalSeries(entries, 2, ScenarioAll, utc, statsNow)
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}
	if !series[0].WeekStart.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first week start = %v, want 2025-03-03", series[0].WeekStart)
	}
	if math.Abs(series[0].Total-600) > 0.001 {
		t.Errorf("previous week total = %v, want 600", series[0].Total)
	}
	if math.Abs(series[1].Total-900) > 0.001 {
		t.Errorf("current week total = %v, want 900", series[1].Total)
	}
}

func TestMonthlyTotalSeries(t *testing.T) {
	entries := []feed.Entry{
		makeEntry(time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), seg(feed.Left, 1200)),
		makeEntry(time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC), seg(feed.Left, 800)),
	}

	series := MonthlyTotalSeries(entries, 2, ScenarioAll, utc, statsNow)
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}
	if !series[0].MonthStart.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first month = %v, want 2025-02-01", series[0].MonthStart)
	}
	if math.Abs(series[0].Total-800) > 0.001 {
		t.Errorf("February total = %v, want 800", series[0].Total)
	}
	if math.Abs(series[1].Total-1200) > 0.001 {
		t.Errorf("March total = %v, want 1200", series[1].Total)
	}
}

func TestWindowTrend(t *testing.T) {
	tr := WindowTrend([]float64{10, 20}, []float64{5, 15})
	if tr.CurrentAvg != 15 || tr.PreviousAvg != 10 {
		t.Errorf("trend = %+v, want 15/10", tr)
	}
	if tr.Percent() != 50 {
		t.Errorf("Percent = %v, want 50", tr.Percent())
	}

	empty := WindowTrend(nil, nil)
	if empty.CurrentAvg != 0 || empty.PreviousAvg != 0 || empty.Percent() != 0 {
		t.Errorf("empty trend = %+v, want zeros", empty)
	}
}
