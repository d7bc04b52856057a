package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"clinic-funnel/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "steady", "Scenario to generate: steady, campaign, messy")
	outDir := flag.String("out", "./.cache", "Output directory for mock files")
	count := flag.Int("count", 500, "Number of encounters to generate")
	from := flag.String("from", fmt.Sprintf("%d-01", time.Now().Year()), "First month covered, YYYY-MM")
	months := flag.Int("months", 12, "Number of months covered")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	start, err := time.Parse("2006-01", *from)
	if err != nil {
		fmt.Printf("Invalid -from %q: %v\n", *from, err)
		os.Exit(1)
	}

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Start:    start,
		Months:   *months,
		Seed:     *seed,
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Months: %d from %s) to %s...\n", cfg.Scenario, cfg.Count, cfg.Months, *from, *outDir)

	grid := engine.Generate(cfg)
	path, err := engine.Save(*outDir, "encounters_"+cfg.Scenario, grid)
	if err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %s\n", path)
}
