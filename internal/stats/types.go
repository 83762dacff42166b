package stats

import "time"

// Scenario restricts computations to day feeds, night feeds, or everything.
type Scenario string

const (
	ScenarioAll   Scenario = "all"
	ScenarioDay   Scenario = "day"   // start hour in [6,21]
	ScenarioNight Scenario = "night" // complement of day
)

// Grouping selects the breakdown attached to an average.
type Grouping string

const (
	GroupNone      Grouping = "none"
	GroupBreast    Grouping = "breast"
	GroupTimeOfDay Grouping = "timeOfDay"
)

// OutlierPolicy controls whether IQR outliers are dropped before averaging.
type OutlierPolicy string

const (
	IncludeAll OutlierPolicy = "includeAll"
	ExcludeIQR OutlierPolicy = "excludeIQR"
)

// GroupedAverage is one bucket of a grouped average. Averages are seconds.
type GroupedAverage struct {
	Label   string  `json:"label"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Trend compares the mean of the current window against the mean of the
// immediately preceding window of identical length.
type Trend struct {
	CurrentAvg  float64 `json:"currentAvg"`
	PreviousAvg float64 `json:"previousAvg"`
}

// Percent is the relative change from the previous window, defined as 0
// when the previous average is not positive.
func (t Trend) Percent() float64 {
	if t.PreviousAvg <= 0 {
		return 0
	}
	return (t.CurrentAvg - t.PreviousAvg) / t.PreviousAvg * 100
}

// DayPoint is one day of a contiguous series.
type DayPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count,omitempty"`
	Total float64   `json:"total,omitempty"` // seconds
}

// WeekPoint is one Monday-aligned week of a totals series.
type WeekPoint struct {
	WeekStart time.Time `json:"weekStart"`
	Total     float64   `json:"total"`
}

// MonthPoint is one calendar month of a totals series.
type MonthPoint struct {
	MonthStart time.Time `json:"monthStart"`
	Total      float64   `json:"total"`
}

// PerDaySummary summarizes a per-day count series.
type PerDaySummary struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Samples int     `json:"samples"`
}

// TimeOfDayBucket is one slot of a time-of-day breakdown. Total carries
// seconds; for averaged breakdowns it is the bucket's average.
type TimeOfDayBucket struct {
	Slot         TimeOfDaySlot `json:"slot"`
	Total        float64       `json:"total"`
	SessionCount int           `json:"sessionCount"`
}

// TodaySummary is today's cumulative feeding time up to "now".
type TodaySummary struct {
	Total          float64 `json:"total"`
	LeftTotal      float64 `json:"leftTotal"`
	RightTotal     float64 `json:"rightTotal"`
	CompletedCount int     `json:"completedCount"`
	ActiveElapsed  float64 `json:"activeElapsed"`
	HasActive      bool    `json:"hasActive"`
}

// PacingComparison compares today's cumulative total against the mean of
// the same clock-time cutoff over the preceding days.
type PacingComparison struct {
	CumulativeToday float64 `json:"cumulativeToday"`
	HistoricalMean  float64 `json:"historicalMean"`
	Delta           float64 `json:"delta"`
	Percent         float64 `json:"percent"`
	SampleDays      int     `json:"sampleDays"`
}

// FeedingStats is the overall summary over the whole log.
type FeedingStats struct {
	TotalDuration   float64 `json:"totalDuration"`
	AverageDuration float64 `json:"averageDuration"`
	AverageInterval float64 `json:"averageInterval"`
	IntervalCount   int     `json:"intervalCount"`
	OutlierCount    int     `json:"outlierCount"`
}

// NextFeedEstimate projects the next feed from the latest completed start
// plus the average start-to-start interval.
type NextFeedEstimate struct {
	NextFeedTime time.Time `json:"nextFeedTime"`
	Interval     float64   `json:"interval"`
}

// Milestone marks a notable feed, such as the longest in a window.
type Milestone struct {
	Title  string    `json:"title"`
	Value  float64   `json:"value"`
	Date   time.Time `json:"date"`
	Breast string    `json:"breast"`
}

// Tip is a rule-derived hint with a stable identifier.
type Tip struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FeedStyle classifies one session's character.
type FeedStyle string

const (
	StyleSnack   FeedStyle = "snack"
	StyleCluster FeedStyle = "cluster"
	StyleNormal  FeedStyle = "normal"
)
