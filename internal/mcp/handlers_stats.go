package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"feedlog-mcp/internal/feed"
	"feedlog-mcp/internal/stats"
)

// WindowArgs select the analysis window shared by the statistics tools. A
// positive Hours takes precedence over Days; both zero falls back to the
// configured history window (seven days out of the box).
type WindowArgs struct {
	Days     int    `json:"days,omitempty"`
	Hours    int    `json:"hours,omitempty"`
	Scenario string `json:"scenario,omitempty"`
}

func (a WindowArgs) scenario() (stats.Scenario, error) {
	switch a.Scenario {
	case "", "all":
		return stats.ScenarioAll, nil
	case "day":
		return stats.ScenarioDay, nil
	case "night":
		return stats.ScenarioNight, nil
	}
	return "", fmt.Errorf("unknown scenario %q (want all, day, or night)", a.Scenario)
}

func parseGrouping(raw string) (stats.Grouping, error) {
	switch raw {
	case "", "none":
		return stats.GroupNone, nil
	case "breast":
		return stats.GroupBreast, nil
	case "timeOfDay", "time_of_day":
		return stats.GroupTimeOfDay, nil
	}
	return "", fmt.Errorf("unknown group_by %q (want none, breast, or time_of_day)", raw)
}

type trendResult struct {
	CurrentAvg  float64 `json:"currentAvg"`
	PreviousAvg float64 `json:"previousAvg"`
	Percent     float64 `json:"percent"`
}

func toTrendResult(t stats.Trend) trendResult {
	return trendResult{CurrentAvg: t.CurrentAvg, PreviousAvg: t.PreviousAvg, Percent: t.Percent()}
}

// --- get_average_durations ---

type averageDurationsArgs struct {
	WindowArgs
	GroupBy         string  `json:"group_by,omitempty"`
	ExcludeOutliers bool    `json:"exclude_outliers,omitempty"`
	HalfLifeHours   float64 `json:"half_life_hours,omitempty"`
}

type averageDurationsResult struct {
	Overall     float64                `json:"overall"`
	SampleCount int                    `json:"sampleCount"`
	Groups      []stats.GroupedAverage `json:"groups,omitempty"`
	Trend       trendResult            `json:"trend"`
	StabilityCV float64                `json:"stabilityCv"`
	Longest     *stats.Milestone       `json:"longest,omitempty"`
	Tips        []stats.Tip            `json:"tips,omitempty"`
}

func (s *Server) handleAverageDurations(ctx context.Context, req *mcp.CallToolRequest, args averageDurationsArgs) (*mcp.CallToolResult, averageDurationsResult, error) {
	var out averageDurationsResult
	scenario, err := args.scenario()
	if err != nil {
		return nil, out, err
	}
	grouping, err := parseGrouping(args.GroupBy)
	if err != nil {
		return nil, out, err
	}

	now := s.clock.Now()
	entries := s.store.Entries()
	window := s.windowFor(args.WindowArgs)

	halfLife := args.HalfLifeHours
	if halfLife == 0 {
		halfLife = s.prefs.Get().RecencyHalfLife
	}
	opts := stats.DurationOptions{
		Window:               window,
		Grouping:             grouping,
		Scenario:             scenario,
		RecencyHalfLifeHours: halfLife,
	}
	if args.ExcludeOutliers {
		opts.Outliers = stats.ExcludeIQR
	} else {
		opts.Outliers = stats.IncludeAll
	}

	out.Overall, out.Groups = stats.AverageDurations(entries, opts, s.cal, now)

	// The per-breast breakdown counts every session exactly once, which
	// gives the window's sample size without re-filtering here.
	countOpts := opts
	countOpts.Grouping = stats.GroupBreast
	_, sides := stats.AverageDurations(entries, countOpts, s.cal, now)
	for _, g := range sides {
		out.SampleCount += g.Count
	}

	trend := stats.DurationTrend(entries, window, s.cal, now)
	out.Trend = toTrendResult(trend)
	out.StabilityCV = stats.DurationStability(entries, window, s.cal, now)
	if longest, ok := stats.LongestFeed(entries, window, s.cal, now); ok {
		out.Longest = &longest
	}
	out.Tips = stats.DurationTips(trend, out.StabilityCV, scenario, out.SampleCount)
	return nil, out, nil
}

// --- get_average_intervals ---

type averageIntervalsArgs struct {
	WindowArgs
	GroupBy         string `json:"group_by,omitempty"`
	ExcludeOutliers bool   `json:"exclude_outliers,omitempty"`
}

type averageIntervalsResult struct {
	Overall float64                `json:"overall"`
	Groups  []stats.GroupedAverage `json:"groups,omitempty"`
	Trend   trendResult            `json:"trend"`
}

func (s *Server) handleAverageIntervals(ctx context.Context, req *mcp.CallToolRequest, args averageIntervalsArgs) (*mcp.CallToolResult, averageIntervalsResult, error) {
	var out averageIntervalsResult
	scenario, err := args.scenario()
	if err != nil {
		return nil, out, err
	}
	grouping, err := parseGrouping(args.GroupBy)
	if err != nil {
		return nil, out, err
	}

	now := s.clock.Now()
	entries := s.store.Entries()
	window := s.windowFor(args.WindowArgs)

	opts := stats.IntervalOptions{
		Window:          window,
		Grouping:        grouping,
		Scenario:        scenario,
		ExcludeOutliers: args.ExcludeOutliers,
	}
	out.Overall, out.Groups = stats.AverageIntervals(entries, opts, s.cal, now)
	out.Trend = toTrendResult(stats.IntervalTrend(entries, window, scenario, args.ExcludeOutliers, s.cal, now))
	return nil, out, nil
}

// --- get_feeds_per_day ---

type feedsPerDayArgs struct {
	WindowArgs
	ByBreast bool `json:"by_breast,omitempty"`
}

type feedsPerDayResult struct {
	Series  []stats.DayPoint    `json:"series"`
	Left    []stats.DayPoint    `json:"left,omitempty"`
	Right   []stats.DayPoint    `json:"right,omitempty"`
	Summary stats.PerDaySummary `json:"summary"`
	Trend   trendResult         `json:"trend"`
}

func (s *Server) handleFeedsPerDay(ctx context.Context, req *mcp.CallToolRequest, args feedsPerDayArgs) (*mcp.CallToolResult, feedsPerDayResult, error) {
	var out feedsPerDayResult
	scenario, err := args.scenario()
	if err != nil {
		return nil, out, err
	}

	now := s.clock.Now()
	entries := s.store.Entries()
	window := s.windowFor(args.WindowArgs)

	out.Series, out.Left, out.Right = stats.FeedsPerDaySeries(entries, window, scenario, args.ByBreast, s.cal, now)
	out.Summary = stats.FeedsPerDaySummary(out.Series)
	out.Trend = toTrendResult(stats.FeedsPerDayTrend(entries, window, scenario, s.cal, now))
	return nil, out, nil
}

// --- get_totals_series ---

type totalsSeriesArgs struct {
	WindowArgs
	Granularity string `json:"granularity,omitempty"`
	Weeks       int    `json:"weeks,omitempty"`
	Months      int    `json:"months,omitempty"`
}

type totalsSeriesResult struct {
	Daily   []stats.DayPoint   `json:"daily,omitempty"`
	Weekly  []stats.WeekPoint  `json:"weekly,omitempty"`
	Monthly []stats.MonthPoint `json:"monthly,omitempty"`
	Trend   *trendResult       `json:"trend,omitempty"`
}

func (s *Server) handleTotalsSeries(ctx context.Context, req *mcp.CallToolRequest, args totalsSeriesArgs) (*mcp.CallToolResult, totalsSeriesResult, error) {
	var out totalsSeriesResult
	scenario, err := args.scenario()
	if err != nil {
		return nil, out, err
	}

	now := s.clock.Now()
	entries := s.store.Entries()

	switch args.Granularity {
	case "", "daily":
		window := s.windowFor(args.WindowArgs)
		out.Daily = stats.DailyTotalSeries(entries, window, scenario, s.cal, now)
		trend := toTrendResult(stats.DailyTotalTrend(entries, window, scenario, s.cal, now))
		out.Trend = &trend
	case "weekly":
		weeks := args.Weeks
		if weeks <= 0 {
			weeks = 4
		}
		out.Weekly = stats.WeeklyTotalSeries(entries, weeks, scenario, s.cal, now)
		span := stats.WeeklyTotalSeries(entries, weeks*2, scenario, s.cal, now)
		trend := toTrendResult(stats.WindowTrend(weekTotals(span[weeks:]), weekTotals(span[:weeks])))
		out.Trend = &trend
	case "monthly":
		months := args.Months
		if months <= 0 {
			months = 6
		}
		out.Monthly = stats.MonthlyTotalSeries(entries, months, scenario, s.cal, now)
		span := stats.MonthlyTotalSeries(entries, months*2, scenario, s.cal, now)
		trend := toTrendResult(stats.WindowTrend(monthTotals(span[months:]), monthTotals(span[:months])))
		out.Trend = &trend
	default:
		return nil, out, fmt.Errorf("unknown granularity %q (want daily, weekly, or monthly)", args.Granularity)
	}
	return nil, out, nil
}

func weekTotals(points []stats.WeekPoint) []float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Total
	}
	return vals
}

func monthTotals(points []stats.MonthPoint) []float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Total
	}
	return vals
}

// --- get_today_summary ---

type todaySummaryResult struct {
	Summary stats.TodaySummary      `json:"summary"`
	Slots   []stats.TimeOfDayBucket `json:"slots"`
}

func (s *Server) handleTodaySummary(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, todaySummaryResult, error) {
	now := s.clock.Now()
	entries := s.store.Entries()
	active := s.activeEntry()

	out := todaySummaryResult{
		Summary: stats.ComputeTodaySummary(entries, active, s.cal, now),
		Slots:   stats.TodayTimeOfDayBreakdown(entries, active, s.cal, now),
	}
	return nil, out, nil
}

// --- get_pacing_comparison ---

type pacingArgs struct {
	Days int `json:"days,omitempty"`
}

func (s *Server) handlePacing(ctx context.Context, req *mcp.CallToolRequest, args pacingArgs) (*mcp.CallToolResult, stats.PacingComparison, error) {
	days := args.Days
	if days <= 0 {
		days = 7
	}
	now := s.clock.Now()
	out := stats.ComputePacing(s.store.Entries(), s.activeEntry(), days, s.cal, now)
	return nil, out, nil
}

// --- estimate_next_feed ---

type nextFeedResult struct {
	HasEstimate  bool      `json:"hasEstimate"`
	NextFeedTime time.Time `json:"nextFeedTime,omitzero"`
	Interval     float64   `json:"interval,omitempty"`
}

func (s *Server) handleEstimateNextFeed(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, nextFeedResult, error) {
	now := s.clock.Now()
	est, ok := stats.EstimateNextFeed(s.store.Entries(), s.ageDays(now), now)
	if !ok {
		return nil, nextFeedResult{}, nil
	}
	return nil, nextFeedResult{HasEstimate: true, NextFeedTime: est.NextFeedTime, Interval: est.Interval}, nil
}

// --- get_summary_stats ---

func (s *Server) handleSummaryStats(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, stats.FeedingStats, error) {
	now := s.clock.Now()
	return nil, stats.ComputeStats(s.store.Entries(), s.ageDays(now)), nil
}

// --- classify_feeds ---

type classifyFeedsArgs struct {
	Days int `json:"days,omitempty"`
}

type classifiedFeedResult struct {
	ID       string          `json:"id"`
	Start    time.Time       `json:"start"`
	Duration float64         `json:"duration"`
	Breast   feed.Breast     `json:"breast"`
	Style    stats.FeedStyle `json:"style"`
}

type classifyFeedsResult struct {
	Feeds []classifiedFeedResult `json:"feeds"`
}

func (s *Server) handleClassifyFeeds(ctx context.Context, req *mcp.CallToolRequest, args classifyFeedsArgs) (*mcp.CallToolResult, classifyFeedsResult, error) {
	now := s.clock.Now()
	entries := s.store.Entries()
	if args.Days > 0 {
		start, end := stats.DayRange(s.cal, now, args.Days)
		entries = s.store.EntriesInRange(start, end.Add(-time.Nanosecond))
	}

	var out classifyFeedsResult
	for _, cf := range stats.ClassifyFeeds(entries) {
		out.Feeds = append(out.Feeds, classifiedFeedResult{
			ID:       cf.Entry.ID.String(),
			Start:    cf.Entry.Start,
			Duration: cf.Entry.EffectiveDuration().Seconds(),
			Breast:   cf.Entry.Breast,
			Style:    cf.Style,
		})
	}
	return nil, out, nil
}

// --- registration ---

func (s *Server) registerStatsTools(server *mcp.Server) {
	windowProps := func() map[string]*jsonschema.Schema {
		return map[string]*jsonschema.Schema{
			"days":     {Type: "integer", Description: "Calendar-day window size (default 7)."},
			"hours":    {Type: "integer", Description: "Rolling window in hours; overrides days."},
			"scenario": {Type: "string", Enum: []any{"all", "day", "night"}, Description: "Restrict to day feeds (start hour 6-21), night feeds, or everything."},
		}
	}

	durationProps := windowProps()
	durationProps["group_by"] = &jsonschema.Schema{Type: "string", Enum: []any{"none", "breast", "time_of_day"}, Description: "Attach a per-breast or per-slot breakdown."}
	durationProps["exclude_outliers"] = &jsonschema.Schema{Type: "boolean", Description: "Drop IQR outliers before averaging."}
	durationProps["half_life_hours"] = &jsonschema.Schema{Type: "number", Description: "If positive, weight recent feeds more using this half-life."}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_average_durations",
		Description: "Average feed duration in the window, with trend vs. the preceding window, a stability coefficient, the longest feed, and rule-based tips. Durations are seconds.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: durationProps},
	}, s.handleAverageDurations)

	intervalProps := windowProps()
	intervalProps["group_by"] = &jsonschema.Schema{Type: "string", Enum: []any{"none", "breast", "time_of_day"}, Description: "Attach a per-breast or per-slot breakdown."}
	intervalProps["exclude_outliers"] = &jsonschema.Schema{Type: "boolean", Description: "Drop IQR outliers before averaging."}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_average_intervals",
		Description: "Average start-to-start interval between feeds in the window, with trend vs. the preceding window. Intervals are seconds.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: intervalProps},
	}, s.handleAverageIntervals)

	perDayProps := windowProps()
	perDayProps["by_breast"] = &jsonschema.Schema{Type: "boolean", Description: "Also return per-breast daily series."}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_feeds_per_day",
		Description: "Contiguous per-day feed counts (zero-filled), with summary statistics and trend.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: perDayProps},
	}, s.handleFeedsPerDay)

	totalsProps := windowProps()
	totalsProps["granularity"] = &jsonschema.Schema{Type: "string", Enum: []any{"daily", "weekly", "monthly"}, Description: "Series granularity (default daily)."}
	totalsProps["weeks"] = &jsonschema.Schema{Type: "integer", Description: "Weeks back for the weekly series (default 4)."}
	totalsProps["months"] = &jsonschema.Schema{Type: "integer", Description: "Months back for the monthly series (default 6)."}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_totals_series",
		Description: "Total feeding time per day, week, or month. Sessions crossing midnight are split at the day boundary. Totals are seconds.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: totalsProps},
	}, s.handleTotalsSeries)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_today_summary",
		Description: "Today's cumulative feeding time up to now, split by breast and by time-of-day slot, including the in-progress feed.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleTodaySummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_pacing_comparison",
		Description: "Compare today's cumulative feeding time against the mean at the same clock time over the preceding days.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{
			"days": {Type: "integer", Description: "Historical days to average (default 7)."},
		}},
	}, s.handlePacing)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "estimate_next_feed",
		Description: "Project the next feed time from the latest completed feed's start plus the average start-to-start interval.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleEstimateNextFeed)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_summary_stats",
		Description: "Whole-log summary: total and average duration, average interval with age-aware outlier capping, and outlier counts.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleSummaryStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_feeds",
		Description: "Classify each feed as snack, cluster, or normal based on duration and gap percentiles over the log.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{
			"days": {Type: "integer", Description: "Restrict classification input to the last N days."},
		}},
	}, s.handleClassifyFeeds)
}
