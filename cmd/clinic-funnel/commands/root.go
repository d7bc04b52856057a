package commands

import (
	"os"
	"os/signal"
	"syscall"

	"clinic-funnel/internal/config"
	"clinic-funnel/internal/logging"
	"clinic-funnel/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "clinic-funnel",
	Short: "Clinic-Funnel turns hearing clinic encounter sheets into conversion reports",
	Long: `Reads an encounter spreadsheet (CSV, XLSX, Google Sheets or a published CSV export),
classifies every visit as potential and converted, and aggregates the funnel by month,
specialist, referring clinic, referring store and hearing screening campaign.

Without a subcommand it serves the analytics as an MCP server on stdio.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("Clinic-Funnel starting")
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the funnel tools over MCP stdio",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("MCP Server starting Stdio loop")
	return mcp.NewServer(cfg, Version).Serve(ctx)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(serveCmd)
}
