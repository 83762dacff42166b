package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"feedlog-mcp/internal/feed"
	"feedlog-mcp/internal/feedlog"
)

// GeneratorConfig controls the synthetic feed log.
type GeneratorConfig struct {
	Scenario string // "steady", "cluster", or "erratic"
	Days     int
	Seed     int64
	Now      time.Time
}

// Generate produces a plausible feed history ending at cfg.Now. The steady
// scenario mimics a newborn on a regular rhythm, cluster adds evening runs
// of short, tightly spaced feeds, and erratic has high variance in both
// gaps and durations.
func Generate(cfg GeneratorConfig) []feed.Entry {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Days <= 0 {
		cfg.Days = 14
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var entries []feed.Entry
	cursor := cfg.Now.AddDate(0, 0, -cfg.Days)
	side := feed.Left

	for cursor.Before(cfg.Now) {
		gap, dur := sampleFeed(cfg.Scenario, rng, cursor)
		cursor = cursor.Add(gap)
		if !cursor.Before(cfg.Now) {
			break
		}

		entries = append(entries, buildSession(cursor, side, dur, rng))
		side = side.Opposite()
		cursor = cursor.Add(dur)
	}

	return entries
}

// sampleFeed returns the gap to the next feed and its duration.
func sampleFeed(scenario string, rng *rand.Rand, at time.Time) (gap, dur time.Duration) {
	hour := at.Hour()
	evening := hour >= 18 && hour < 23
	night := hour >= 23 || hour < 5

	switch scenario {
	case "cluster":
		if evening {
			// Cluster runs: short feeds stacked 20-45 minutes apart.
			gap = jitter(rng, 20*time.Minute, 25*time.Minute)
			dur = jitter(rng, 5*time.Minute, 4*time.Minute)
			return gap, dur
		}
		gap = jitter(rng, 150*time.Minute, 60*time.Minute)
		dur = jitter(rng, 14*time.Minute, 8*time.Minute)
	case "erratic":
		gap = jitter(rng, 60*time.Minute, 240*time.Minute)
		dur = jitter(rng, 4*time.Minute, 30*time.Minute)
	default: // steady
		gap = jitter(rng, 160*time.Minute, 40*time.Minute)
		dur = jitter(rng, 16*time.Minute, 6*time.Minute)
	}

	if night {
		// Longer stretches at night regardless of scenario.
		gap += time.Duration(rng.Intn(90)) * time.Minute
	}
	return gap, dur
}

// buildSession produces a completed entry, occasionally split across both
// sides the way a real paused-and-switched feed would be.
func buildSession(start time.Time, side feed.Breast, dur time.Duration, rng *rand.Rand) feed.Entry {
	end := start.Add(dur)
	units := []feed.Unit{
		{Breast: side, Duration: dur, Start: start, End: end},
	}

	if dur > 8*time.Minute && rng.Float64() < 0.35 {
		split := time.Duration(float64(dur) * (0.3 + rng.Float64()*0.4))
		units = []feed.Unit{
			{Breast: side, Duration: split, Start: start, End: start.Add(split)},
			{Breast: side.Opposite(), Duration: dur - split, Start: start.Add(split), End: end},
		}
	}

	return feed.Entry{
		ID:        uuid.New(),
		Breast:    units[len(units)-1].Breast,
		Start:     start,
		End:       &end,
		Units:     units,
		Cues:      []feed.Cue{},
		CreatedAt: start,
		UpdatedAt: end,
	}
}

// jitter samples mean ± spread, floored at one minute.
func jitter(rng *rand.Rand, mean, spread time.Duration) time.Duration {
	d := mean + time.Duration((rng.Float64()*2-1)*float64(spread))
	if d < time.Minute {
		d = time.Minute
	}
	return d
}

// Save writes the generated history as a feed log at path.
func Save(path string, entries []feed.Entry) error {
	store := feedlog.NewStore(path)
	store.Upsert(entries...)
	return store.Save()
}
