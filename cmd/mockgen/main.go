package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"feedlog-mcp/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "steady", "Scenario to generate: steady, cluster, erratic")
	days := flag.Int("days", 14, "Number of days of history to generate")
	out := flag.String("out", "./.cache/feedlog.jsonl", "Output path for the generated feed log")
	seed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Days:     *days,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (%d days) to %s...\n", cfg.Scenario, cfg.Days, *out)

	entries := engine.Generate(cfg)
	if err := engine.Save(*out, entries); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. %d feeds written.\n", len(entries))
}
