package report_test

import (
	"context"
	"errors"
	"testing"

	"clinic-funnel/internal/report"
	"clinic-funnel/internal/sheet"
)

func TestDefaultThresholds(t *testing.T) {
	th := report.DefaultThresholds()
	if len(th) != 14 || th[0] != 25 || th[len(th)-1] != 90 {
		t.Errorf("expected 25..90 step 5, got %v", th)
	}
}

func TestSweep_MatchesSingleRuns(t *testing.T) {
	grid := loadGolden(t)
	window := report.DateRange{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 3}
	thresholds := []float64{90, 25, 40, 55}

	points, err := report.Sweep(t.Context(), grid, window, thresholds)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(points) != len(thresholds) {
		t.Fatalf("expected %d points, got %d", len(thresholds), len(points))
	}

	for i, th := range thresholds {
		if points[i].PTAThreshold != th {
			t.Errorf("point %d: expected threshold %v, got %v", i, th, points[i].PTAThreshold)
		}
		single, err := report.Analyze(grid, report.Params{Window: window, PTAThreshold: th})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if points[i].Totals != single.Totals {
			t.Errorf("threshold %v: sweep %+v differs from single run %+v", th, points[i].Totals, single.Totals)
		}
	}

	// Raising the threshold can only shrink the potential pool.
	if points[0].TotalPotential > points[1].TotalPotential {
		t.Errorf("potential at 90 (%d) exceeds potential at 25 (%d)", points[0].TotalPotential, points[1].TotalPotential)
	}
}

func TestSweep_SchemaError(t *testing.T) {
	grid := sheet.Grid{{"姓名"}}
	_, err := report.Sweep(t.Context(), grid, report.WholeYear(2024), report.DefaultThresholds())
	if !errors.Is(err, report.ErrNoDateColumn) {
		t.Errorf("expected ErrNoDateColumn, got %v", err)
	}
}

func TestSweep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := report.Sweep(ctx, loadGolden(t), report.WholeYear(2024), report.DefaultThresholds())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
