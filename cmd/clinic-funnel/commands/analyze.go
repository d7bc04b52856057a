package commands

import (
	"clinic-funnel/internal/report"
	"clinic-funnel/internal/visuals"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	analyzeFlags   sourceFlags
	threshold      float64
	includeRecords bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one month window of an encounter sheet",
	Example: `  clinic-funnel analyze -f encounters.csv --from 2024-01 --to 2024-03
  clinic-funnel analyze --sheet-id 1AbC... --from 2024-01 --to 2024-12 --format markdown --charts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := analyzeFlags.validate(); err != nil {
			return err
		}
		window, err := analyzeFlags.window()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("threshold") {
			threshold = cfg.PTAThreshold
		}

		src, grid, err := analyzeFlags.load(cmd.Context())
		if err != nil {
			return err
		}
		analysis, err := report.Analyze(grid, report.Params{
			Window:         window,
			PTAThreshold:   threshold,
			IncludeRecords: includeRecords,
		})
		if err != nil {
			return err
		}
		log.Info().Str("source", src.ID()).Int("in_window", analysis.RecordCount).Msg("Funnel analysis complete")

		charts := analyzeFlags.charts || cfg.EnableMermaidCharts
		return analyzeFlags.emit(cmd.OutOrStdout(), analysis, func() string {
			return visuals.RenderMarkdown(analysis, charts)
		})
	},
}

func init() {
	analyzeFlags.register(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", report.DefaultPTAThreshold, "PTA dB above which a visit counts as potential (defaults to PTA_THRESHOLD)")
	analyzeCmd.Flags().BoolVar(&includeRecords, "rows", false, "include the classified rows in JSON output")
	rootCmd.AddCommand(analyzeCmd)
}
