package report

import (
	"fmt"
	"math"
	"strings"

	"feedlog-mcp/internal/stats"
)

// GenerateDailyTotalsChart creates a Mermaid xychart-beta bar chart of total
// feeding minutes per day.
func GenerateDailyTotalsChart(series []stats.DayPoint) string {
	if len(series) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0
	for _, p := range series {
		minutes := p.Total / 60
		labels = append(labels, fmt.Sprintf("\"%s\"", p.Date.Format("Jan 2")))
		values = append(values, fmt.Sprintf("%.1f", minutes))
		if minutes > maxVal {
			maxVal = minutes
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Feeding Time per Day\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Minutes\" 0 --> %d\n", yCeiling(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return sb.String()
}

// GenerateFeedsPerDayChart creates a Mermaid line chart of daily feed counts
// with the window average overlaid.
func GenerateFeedsPerDayChart(series []stats.DayPoint, summary stats.PerDaySummary) string {
	if len(series) == 0 {
		return ""
	}

	var labels []string
	var values []string
	var averages []string
	maxVal := 0.0
	for _, p := range series {
		labels = append(labels, fmt.Sprintf("\"%s\"", p.Date.Format("Jan 2")))
		values = append(values, fmt.Sprintf("%d", p.Count))
		averages = append(averages, fmt.Sprintf("%.1f", summary.Average))
		if float64(p.Count) > maxVal {
			maxVal = float64(p.Count)
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Feeds per Day\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Feeds\" 0 --> %d\n", yCeiling(maxVal)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(averages, ", ")))
	return sb.String()
}

// GenerateSlotChart creates a Mermaid bar chart of today's feeding minutes
// per time-of-day slot.
func GenerateSlotChart(slots []stats.TimeOfDayBucket) string {
	if len(slots) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0
	for _, b := range slots {
		minutes := b.Total / 60
		labels = append(labels, fmt.Sprintf("\"%s\"", b.Slot))
		values = append(values, fmt.Sprintf("%.1f", minutes))
		if minutes > maxVal {
			maxVal = minutes
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Today by Time of Day\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Minutes\" 0 --> %d\n", yCeiling(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return sb.String()
}

// yCeiling scales the axis to leave breathing room above the tallest value.
func yCeiling(maxVal float64) int {
	if maxVal <= 0 {
		return 1
	}
	return int(math.Ceil(maxVal * 1.2))
}
