package stats

import "time"

// TimeWindow selects the span of history a computation looks at: either the
// last N civil days (inclusive of today) or a rolling N-hour window ending
// at the reference time.
type TimeWindow struct {
	Days  int `json:"days,omitempty"`
	Hours int `json:"hours,omitempty"`
}

// Days selects the last n civil days; n=1 means "today only".
func Days(n int) TimeWindow { return TimeWindow{Days: n} }

// Hours selects a rolling n-hour window ending at the reference time.
func Hours(n int) TimeWindow { return TimeWindow{Hours: n} }

// IsRolling reports whether the window is hour-based.
func (w TimeWindow) IsRolling() bool { return w.Hours > 0 }

// Resolve turns the window into concrete (start, endExclusive) bounds.
// Inputs are clamped, never rejected: non-positive counts collapse to the
// smallest valid window. Invariant: start is never after endExclusive.
func (w TimeWindow) Resolve(cal Calendar, now time.Time) (start, endExclusive time.Time) {
	if w.IsRolling() {
		return RollingRange(now, w.Hours)
	}
	return DayRange(cal, now, w.Days)
}

// DayRange covers the last daysBack civil days: start is midnight of the
// earliest day, endExclusive is midnight of the day after now.
func DayRange(cal Calendar, now time.Time, daysBack int) (start, endExclusive time.Time) {
	day0 := cal.StartOfDay(now)
	start = cal.AddDays(day0, -max(0, daysBack-1))
	endExclusive = cal.AddDays(day0, 1)
	return start, endExclusive
}

// RollingRange covers the last hoursBack hours ending exactly at now.
func RollingRange(now time.Time, hoursBack int) (start, endExclusive time.Time) {
	return now.Add(-time.Duration(max(0, hoursBack)) * time.Hour), now
}

// WeekRange covers the last weeksBack Monday-aligned weeks; weeksBack=1
// means the week containing now.
func WeekRange(cal Calendar, now time.Time, weeksBack int) (start, endExclusive time.Time) {
	weekStart := cal.StartOfWeek(now)
	start = cal.AddWeeks(weekStart, -max(0, weeksBack-1))
	endExclusive = cal.AddWeeks(weekStart, 1)
	return start, endExclusive
}

// MonthRange covers the last monthsBack calendar months; monthsBack=1 means
// the month containing now.
func MonthRange(cal Calendar, now time.Time, monthsBack int) (start, endExclusive time.Time) {
	monthStart := cal.StartOfMonth(now)
	start = cal.AddMonths(monthStart, -max(0, monthsBack-1))
	endExclusive = cal.AddMonths(monthStart, 1)
	return start, endExclusive
}
