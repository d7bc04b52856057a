package engine

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"clinic-funnel/internal/report"
	"clinic-funnel/internal/sheet"
)

var year2024 = report.DateRange{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 12}

func generate(scenario string, seed int64) sheet.Grid {
	return Generate(GeneratorConfig{
		Scenario: scenario,
		Count:    200,
		Start:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Months:   12,
		Seed:     seed,
	})
}

func TestGenerate_Deterministic(t *testing.T) {
	if !reflect.DeepEqual(generate("messy", 7), generate("messy", 7)) {
		t.Error("same seed should produce the same grid")
	}
	if reflect.DeepEqual(generate("messy", 7), generate("messy", 8)) {
		t.Error("different seeds should produce different grids")
	}
}

func TestGenerate_SteadyIsFullyAnalyzable(t *testing.T) {
	grid := generate("steady", 1)
	if len(grid) != 201 {
		t.Fatalf("expected header plus 200 rows, got %d", len(grid))
	}

	a, err := report.Analyze(grid, report.Params{Window: year2024, PTAThreshold: report.DefaultPTAThreshold})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if a.RecordCount != 200 {
		t.Errorf("every steady row should land in the window, got %d", a.RecordCount)
	}
	if a.TotalPotential == 0 || a.TotalConverted == 0 || a.TotalAmount <= 0 {
		t.Errorf("expected a live funnel, got %+v", a.Totals)
	}
	if len(a.Monthly) != 12 {
		t.Errorf("expected 12 months, got %d", len(a.Monthly))
	}
}

func TestGenerate_CampaignFeedsSourceMonths(t *testing.T) {
	a, err := report.Analyze(generate("campaign", 3), report.Params{Window: year2024, PTAThreshold: report.DefaultPTAThreshold})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	screened := 0
	for _, e := range a.BySourceMonth {
		screened += e.Total
	}
	if screened < 60 {
		t.Errorf("campaign should route many rows through hearing screenings, got %d", screened)
	}
}

func TestGenerate_MessyDropsUnparsableDates(t *testing.T) {
	a, err := report.Analyze(generate("messy", 5), report.Params{Window: year2024, PTAThreshold: report.DefaultPTAThreshold})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if a.RecordCount >= 200 || a.RecordCount < 150 {
		t.Errorf("expected a few N/A dates to fall out, got %d in window", a.RecordCount)
	}
}

func TestSave_RoundTripsThroughFileSource(t *testing.T) {
	grid := generate("steady", 2)
	path, err := Save(t.TempDir(), "encounters", grid)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "encounters.csv" {
		t.Errorf("unexpected file name %s", path)
	}

	got, err := sheet.FileSource{Path: path}.Fetch(t.Context())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !reflect.DeepEqual(got.Header(), Header) {
		t.Errorf("header mismatch: %q", got.Header())
	}
	if len(got.Rows()) != 200 {
		t.Errorf("expected 200 rows, got %d", len(got.Rows()))
	}
}
