package report

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"feedlog-mcp/internal/feed"
	"feedlog-mcp/internal/stats"
)

// Data carries everything the HTML report renders.
type Data struct {
	BabyName    string
	GeneratedAt time.Time
	WindowDays  int

	Today stats.TodaySummary
	Slots []stats.TimeOfDayBucket

	AvgDuration   float64
	DurationTrend stats.Trend
	StabilityCV   float64
	SlotAverages  []stats.TimeOfDayBucket
	Longest       *stats.Milestone
	Tips          []stats.Tip

	AvgInterval   float64
	IntervalTrend stats.Trend

	PerDay        []stats.DayPoint
	PerDaySummary stats.PerDaySummary
	DailyTotals   []stats.DayPoint

	Overall  stats.FeedingStats
	NextFeed *stats.NextFeedEstimate

	StyleCounts map[stats.FeedStyle]int

	Charts ChartSet
}

// ChartSet holds the rendered Mermaid chart bodies.
type ChartSet struct {
	DailyTotals string
	FeedsPerDay string
	Slots       string
}

// Options configure a report build.
type Options struct {
	BabyName   string
	AgeDays    *int
	WindowDays int
}

// Build computes all report sections. The sections are independent, so they
// run concurrently.
func Build(ctx context.Context, entries []feed.Entry, active *feed.Entry, opts Options, cal stats.Calendar, now time.Time) (*Data, error) {
	days := opts.WindowDays
	if days <= 0 {
		days = 7
	}
	window := stats.Days(days)

	data := &Data{
		BabyName:    opts.BabyName,
		GeneratedAt: now,
		WindowDays:  days,
	}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		data.Today = stats.ComputeTodaySummary(entries, active, cal, now)
		data.Slots = stats.TodayTimeOfDayBreakdown(entries, active, cal, now)
		return nil
	})

	g.Go(func() error {
		durOpts := stats.DurationOptions{Window: window, Grouping: stats.GroupNone, Outliers: stats.IncludeAll, Scenario: stats.ScenarioAll}
		data.AvgDuration, _ = stats.AverageDurations(entries, durOpts, cal, now)
		_, data.SlotAverages = stats.AverageDurationBuckets(entries, durOpts, cal, now)
		data.DurationTrend = stats.DurationTrend(entries, window, cal, now)
		data.StabilityCV = stats.DurationStability(entries, window, cal, now)
		if longest, ok := stats.LongestFeed(entries, window, cal, now); ok {
			data.Longest = &longest
		}
		return nil
	})

	g.Go(func() error {
		intOpts := stats.IntervalOptions{Window: window, Grouping: stats.GroupNone, Scenario: stats.ScenarioAll}
		data.AvgInterval, _ = stats.AverageIntervals(entries, intOpts, cal, now)
		data.IntervalTrend = stats.IntervalTrend(entries, window, stats.ScenarioAll, false, cal, now)
		return nil
	})

	g.Go(func() error {
		data.PerDay, _, _ = stats.FeedsPerDaySeries(entries, window, stats.ScenarioAll, false, cal, now)
		data.PerDaySummary = stats.FeedsPerDaySummary(data.PerDay)
		data.DailyTotals = stats.DailyTotalSeries(entries, window, stats.ScenarioAll, cal, now)
		return nil
	})

	g.Go(func() error {
		data.Overall = stats.ComputeStats(entries, opts.AgeDays)
		if est, ok := stats.EstimateNextFeed(entries, opts.AgeDays, now); ok {
			data.NextFeed = &est
		}
		return nil
	})

	g.Go(func() error {
		counts := make(map[stats.FeedStyle]int)
		for _, cf := range stats.ClassifyFeeds(entries) {
			counts[cf.Style]++
		}
		data.StyleCounts = counts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	feedCount := 0
	for _, p := range data.PerDay {
		feedCount += p.Count
	}
	data.Tips = stats.DurationTips(data.DurationTrend, data.StabilityCV, stats.ScenarioAll, feedCount)
	data.Charts = ChartSet{
		DailyTotals: GenerateDailyTotalsChart(data.DailyTotals),
		FeedsPerDay: GenerateFeedsPerDayChart(data.PerDay, data.PerDaySummary),
		Slots:       GenerateSlotChart(data.Slots),
	}
	return data, nil
}

// Render writes the report as a standalone HTML page.
func Render(w io.Writer, data *Data) error {
	return pageTemplate.Execute(w, data)
}

// Write renders the report to path and optionally opens it in the default
// browser.
func Write(path string, data *Data, open bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := Render(f, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("Report written")
	if open {
		if err := browser.OpenFile(path); err != nil {
			log.Warn().Err(err).Msg("Could not open report in browser")
		}
	}
	return nil
}

func fmtDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

func fmtPercent(t stats.Trend) string {
	return fmt.Sprintf("%+.0f%%", t.Percent())
}

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"dur": fmtDuration,
	"pct": fmtPercent,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Feeding Report{{if .BabyName}} — {{.BabyName}}{{end}}</title>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #222; }
h1 { font-size: 1.6rem; }
h2 { font-size: 1.1rem; margin-top: 2rem; border-bottom: 1px solid #ddd; padding-bottom: .3rem; }
table { border-collapse: collapse; }
td, th { padding: .25rem .8rem .25rem 0; text-align: left; }
.muted { color: #777; font-size: .85rem; }
.tip { background: #f6f8e8; border-left: 3px solid #aac24b; padding: .4rem .8rem; margin: .4rem 0; }
</style>
</head>
<body>
<h1>Feeding Report{{if .BabyName}} — {{.BabyName}}{{end}}</h1>
<p class="muted">Generated {{.GeneratedAt.Format "Mon, 2 Jan 2006 15:04"}} · last {{.WindowDays}} days</p>

<h2>Today</h2>
<table>
<tr><td>Total feeding time</td><td>{{dur .Today.Total}}</td></tr>
<tr><td>Left / Right</td><td>{{dur .Today.LeftTotal}} / {{dur .Today.RightTotal}}</td></tr>
<tr><td>Completed feeds</td><td>{{.Today.CompletedCount}}</td></tr>
{{if .Today.HasActive}}<tr><td>Feed in progress</td><td>{{dur .Today.ActiveElapsed}} so far</td></tr>{{end}}
</table>
{{if .Charts.Slots}}<pre class="mermaid">{{.Charts.Slots}}</pre>{{end}}

<h2>Durations</h2>
<table>
<tr><td>Average feed</td><td>{{dur .AvgDuration}}</td><td class="muted">{{pct .DurationTrend}} vs. previous {{.WindowDays}} days</td></tr>
<tr><td>Variability (CV)</td><td>{{printf "%.2f" .StabilityCV}}</td></tr>
{{if .Longest}}<tr><td>Longest feed</td><td>{{dur .Longest.Value}}</td><td class="muted">{{.Longest.Date.Format "Jan 2 15:04"}} ({{.Longest.Breast}})</td></tr>{{end}}
</table>
{{if .SlotAverages}}
<table>
{{range .SlotAverages}}<tr><td>{{.Slot}}</td><td>{{dur .Total}}</td><td class="muted">{{.SessionCount}} feeds</td></tr>
{{end}}</table>
{{end}}

<h2>Intervals</h2>
<table>
<tr><td>Average gap between feeds</td><td>{{dur .AvgInterval}}</td><td class="muted">{{pct .IntervalTrend}} vs. previous {{.WindowDays}} days</td></tr>
{{if .NextFeed}}<tr><td>Next feed expected</td><td>{{.NextFeed.NextFeedTime.Format "15:04"}}</td></tr>{{end}}
</table>

<h2>Feeds per day</h2>
<table>
<tr><td>Average</td><td>{{printf "%.1f" .PerDaySummary.Average}}</td></tr>
<tr><td>Median</td><td>{{printf "%.1f" .PerDaySummary.Median}}</td></tr>
<tr><td>Range</td><td>{{.PerDaySummary.Min}} – {{.PerDaySummary.Max}}</td></tr>
</table>
{{if .Charts.FeedsPerDay}}<pre class="mermaid">{{.Charts.FeedsPerDay}}</pre>{{end}}

<h2>Totals</h2>
{{if .Charts.DailyTotals}}<pre class="mermaid">{{.Charts.DailyTotals}}</pre>{{end}}
<table>
<tr><td>All-time feeding</td><td>{{dur .Overall.TotalDuration}}</td></tr>
<tr><td>Average feed (all time)</td><td>{{dur .Overall.AverageDuration}}</td></tr>
<tr><td>Average interval (all time)</td><td>{{dur .Overall.AverageInterval}}</td></tr>
</table>

{{if .StyleCounts}}
<h2>Feed styles</h2>
<table>
{{range $style, $count := .StyleCounts}}<tr><td>{{$style}}</td><td>{{$count}}</td></tr>
{{end}}</table>
{{end}}

{{if .Tips}}
<h2>Observations</h2>
{{range .Tips}}<div class="tip">{{.Text}}</div>
{{end}}{{end}}

</body>
</html>
`))
