package report

import (
	"context"
	"runtime"

	"clinic-funnel/internal/sheet"

	"golang.org/x/sync/errgroup"
)

// SweepPoint is the global outcome of one threshold.
type SweepPoint struct {
	PTAThreshold float64 `json:"ptaThreshold"`
	Totals
}

// DefaultThresholds mirrors the selectable thresholds of the dashboard: 25 to 90 in steps of 5.
func DefaultThresholds() []float64 {
	var out []float64
	for th := 25.0; th <= 90; th += 5 {
		out = append(out, th)
	}
	return out
}

// Sweep analyzes the same grid and window once per threshold, concurrently.
// Results are returned in the order of thresholds. The grid is shared read-only.
// Cancellation is checked before each analysis starts.
func Sweep(ctx context.Context, grid sheet.Grid, window DateRange, thresholds []float64) ([]SweepPoint, error) {
	if _, err := ResolveFields(grid.Header()); err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(thresholds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, th := range thresholds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := Analyze(grid, Params{Window: window, PTAThreshold: th})
			if err != nil {
				return err
			}
			points[i] = SweepPoint{PTAThreshold: th, Totals: a.Totals}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
