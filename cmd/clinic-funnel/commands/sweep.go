package commands

import (
	"clinic-funnel/internal/report"
	"clinic-funnel/internal/visuals"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	sweepFlags      sourceFlags
	sweepThresholds []float64
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare funnel totals across PTA thresholds",
	Example: `  clinic-funnel sweep -f encounters.csv --from 2024-01 --to 2024-12
  clinic-funnel sweep -f encounters.csv --from 2024-01 --to 2024-12 --thresholds 30,35,40,45`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sweepFlags.validate(); err != nil {
			return err
		}
		window, err := sweepFlags.window()
		if err != nil {
			return err
		}
		thresholds := sweepThresholds
		if len(thresholds) == 0 {
			thresholds = report.DefaultThresholds()
		}

		src, grid, err := sweepFlags.load(cmd.Context())
		if err != nil {
			return err
		}
		points, err := report.Sweep(cmd.Context(), grid, window, thresholds)
		if err != nil {
			return err
		}
		log.Info().Str("source", src.ID()).Int("thresholds", len(points)).Msg("Threshold sweep complete")

		charts := sweepFlags.charts || cfg.EnableMermaidCharts
		return sweepFlags.emit(cmd.OutOrStdout(), points, func() string {
			return visuals.RenderSweepMarkdown(points, charts)
		})
	},
}

func init() {
	sweepFlags.register(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepThresholds, "thresholds", nil, "comma separated PTA thresholds (default 25 to 90 in steps of 5)")
	rootCmd.AddCommand(sweepCmd)
}
