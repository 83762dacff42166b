package stats

import "feedlog-mcp/internal/feed"

// FilterScenario keeps the sessions whose start hour matches the scenario:
// day is [6,21], night is the complement, all passes everything through.
func FilterScenario(entries []feed.Entry, scenario Scenario, cal Calendar) []feed.Entry {
	if scenario == ScenarioAll {
		return entries
	}
	out := make([]feed.Entry, 0, len(entries))
	for _, e := range entries {
		h := cal.HourOfDay(e.Start)
		day := h >= 6 && h <= 21
		if (scenario == ScenarioDay) == day {
			out = append(out, e)
		}
	}
	return out
}
