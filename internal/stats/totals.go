package stats

import (
	"time"

	"feedlog-mcp/internal/feed"
)

// DailyTotalSeries builds a contiguous daily total-duration series over the
// window. Totals are segment-aware: breast units (or the envelope for
// unit-less completed sessions) are split across civil-day boundaries and
// clipped to the window.
func DailyTotalSeries(entries []feed.Entry, window TimeWindow, scenario Scenario, cal Calendar, now time.Time) []DayPoint {
	resolvedStart, endExclusive := window.Resolve(cal, now)
	start := cal.StartOfDay(resolvedStart)

	var scoped []feed.Entry
	for _, e := range entries {
		if !e.Completed() || !e.Start.Before(endExclusive) {
			continue
		}
		end := e.Start
		if e.End != nil {
			end = *e.End
		}
		if end.Before(start) {
			continue
		}
		scoped = append(scoped, e)
	}
	scoped = FilterScenario(scoped, scenario, cal)

	totalsByDay := map[time.Time]float64{}
	accumulate := func(s, e time.Time) {
		cur := s
		if cur.Before(start) {
			cur = start
		}
		hardEnd := e
		if hardEnd.After(endExclusive) {
			hardEnd = endExclusive
		}
		for cur.Before(hardEnd) {
			day := cal.StartOfDay(cur)
			nextDay := cal.AddDays(day, 1)
			chunkEnd := hardEnd
			if nextDay.Before(chunkEnd) {
				chunkEnd = nextDay
			}
			if dt := chunkEnd.Sub(cur).Seconds(); dt > 0 {
				totalsByDay[day] += dt
			}
			cur = chunkEnd
		}
	}

	for _, e := range scoped {
		if len(e.Units) > 0 {
			for _, u := range e.Units {
				accumulate(u.Start, u.End)
			}
		} else if e.End != nil {
			accumulate(e.Start, *e.End)
		}
	}

	dayCount := cal.DaysBetween(start, cal.StartOfDay(endExclusive))
	if dayCount < 0 {
		dayCount = 0
	}
	points := make([]DayPoint, dayCount)
	for i := 0; i < dayCount; i++ {
		day := cal.AddDays(start, i)
		points[i] = DayPoint{Date: day, Total: totalsByDay[day]}
	}
	return points
}

// DailyTotalTrend compares the average daily total against the same series
// anchored at yesterday.
func DailyTotalTrend(entries []feed.Entry, window TimeWindow, scenario Scenario, cal Calendar, now time.Time) Trend {
	avgOf := func(points []DayPoint) float64 {
		if len(points) == 0 {
			return 0
		}
		var sum float64
		for _, p := range points {
			sum += p.Total
		}
		return sum / float64(len(points))
	}

	current := DailyTotalSeries(entries, window, scenario, cal, now)
	prevNow := cal.AddDays(cal.StartOfDay(now), -1)
	previous := DailyTotalSeries(entries, window, scenario, cal, prevNow)

	return Trend{CurrentAvg: avgOf(current), PreviousAvg: avgOf(previous)}
}

// WeeklyTotalSeries folds the daily series into Monday-aligned weeks.
// weeksBack is clamped to at least 1.
func WeeklyTotalSeries(entries []feed.Entry, weeksBack int, scenario Scenario, cal Calendar, now time.Time) []WeekPoint {
	weeksBack = max(1, weeksBack)
	start, endExclusive := WeekRange(cal, now, weeksBack)

	daily := dailySeriesSpanning(entries, start, endExclusive, scenario, cal)

	totalsByWeek := map[time.Time]float64{}
	for _, p := range daily {
		totalsByWeek[cal.StartOfWeek(p.Date)] += p.Total
	}

	points := make([]WeekPoint, weeksBack)
	for i := 0; i < weeksBack; i++ {
		ws := cal.AddWeeks(start, i)
		points[i] = WeekPoint{WeekStart: ws, Total: totalsByWeek[ws]}
	}
	return points
}

// MonthlyTotalSeries folds the daily series into calendar months.
// monthsBack is clamped to at least 1.
func MonthlyTotalSeries(entries []feed.Entry, monthsBack int, scenario Scenario, cal Calendar, now time.Time) []MonthPoint {
	monthsBack = max(1, monthsBack)
	start, endExclusive := MonthRange(cal, now, monthsBack)

	daily := dailySeriesSpanning(entries, start, endExclusive, scenario, cal)

	totalsByMonth := map[time.Time]float64{}
	for _, p := range daily {
		totalsByMonth[cal.StartOfMonth(p.Date)] += p.Total
	}

	points := make([]MonthPoint, monthsBack)
	for i := 0; i < monthsBack; i++ {
		ms := cal.AddMonths(start, i)
		points[i] = MonthPoint{MonthStart: ms, Total: totalsByMonth[ms]}
	}
	return points
}

// dailySeriesSpanning covers [start, endExclusive) with a day window
// anchored at the span's end.
func dailySeriesSpanning(entries []feed.Entry, start, endExclusive time.Time, scenario Scenario, cal Calendar) []DayPoint {
	days := cal.DaysBetween(start, endExclusive)
	if days < 1 {
		days = 1
	}
	return DailyTotalSeries(entries, Days(days), scenario, cal, endExclusive)
}

// WindowTrend compares two arbitrary sample windows by mean.
func WindowTrend(current, previous []float64) Trend {
	return Trend{CurrentAvg: mean(current), PreviousAvg: mean(previous)}
}
