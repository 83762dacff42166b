package stats

import "time"

// Calendar performs civil date arithmetic in a fixed location. The week
// starts on Monday.
type Calendar struct {
	Location *time.Location
}

// NewCalendar returns a calendar in the given location, defaulting to UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc}
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// StartOfDay returns midnight of t's civil day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
}

// StartOfWeek returns midnight of the Monday of t's week.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return c.AddDays(day, -(weekday - 1))
}

// StartOfMonth returns midnight of the first day of t's month.
func (c Calendar) StartOfMonth(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc())
}

// AddDays adds n civil days. Normalization through time.Date keeps the
// clock time stable across DST transitions where possible.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day()+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), c.loc())
}

// AddWeeks adds n civil weeks.
func (c Calendar) AddWeeks(t time.Time, n int) time.Time {
	return c.AddDays(t, n*7)
}

// AddMonths adds n civil months.
func (c Calendar) AddMonths(t time.Time, n int) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), time.Month(int(t.Month())+n), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), c.loc())
}

// AddHours adds n elapsed hours (not civil arithmetic).
func (c Calendar) AddHours(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * time.Hour)
}

// HourOfDay returns t's hour in the calendar's location.
func (c Calendar) HourOfDay(t time.Time) int {
	return t.In(c.loc()).Hour()
}

// SameDay reports whether a and b fall on the same civil day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return c.StartOfDay(a).Equal(c.StartOfDay(b))
}

// DaysBetween returns the number of whole civil days from a's day to b's day.
func (c Calendar) DaysBetween(a, b time.Time) int {
	start := c.StartOfDay(a)
	end := c.StartOfDay(b)
	days := 0
	for cur := start; cur.Before(end); cur = c.AddDays(cur, 1) {
		days++
	}
	for cur := start; cur.After(end); cur = c.AddDays(cur, -1) {
		days--
	}
	return days
}

// TimeOfDaySlot is a quarter-day bucket keyed off the hour of day.
type TimeOfDaySlot string

const (
	SlotNight     TimeOfDaySlot = "night"     // [0,6)
	SlotMorning   TimeOfDaySlot = "morning"   // [6,12)
	SlotAfternoon TimeOfDaySlot = "afternoon" // [12,18)
	SlotEvening   TimeOfDaySlot = "evening"   // [18,24)
)

// SlotOrder is the canonical display order for time-of-day breakdowns.
var SlotOrder = []TimeOfDaySlot{SlotMorning, SlotAfternoon, SlotEvening, SlotNight}

// Slot maps t's hour to its time-of-day slot.
func (c Calendar) Slot(t time.Time) TimeOfDaySlot {
	switch h := c.HourOfDay(t); {
	case h < 6:
		return SlotNight
	case h < 12:
		return SlotMorning
	case h < 18:
		return SlotAfternoon
	default:
		return SlotEvening
	}
}
