package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"clinic-funnel/internal/report"
	"clinic-funnel/internal/sheet"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// sourceFlags are shared by every command reading a grid.
type sourceFlags struct {
	file          string
	sheetName     string
	spreadsheetID string
	sheetRange    string
	csvURL        string

	from string
	to   string

	format string
	charts bool
	open   bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "local CSV or XLSX encounter sheet")
	fs.StringVar(&f.sheetName, "sheet", "", "worksheet name inside an XLSX file")
	fs.StringVar(&f.spreadsheetID, "sheet-id", "", "Google spreadsheet ID (overrides GOOGLE_SHEET_ID)")
	fs.StringVar(&f.sheetRange, "range", "", "A1 range of the Google sheet (overrides GOOGLE_SHEET_RANGE)")
	fs.StringVar(&f.csvURL, "csv-url", "", "published CSV export URL (overrides SHEET_CSV_URL)")
	fs.StringVar(&f.from, "from", "", "first month of the window, YYYY-MM")
	fs.StringVar(&f.to, "to", "", "last month of the window, YYYY-MM")
	fs.StringVar(&f.format, "format", "json", "output format: json or markdown")
	fs.BoolVar(&f.charts, "charts", false, "append Mermaid charts to markdown output")
	fs.BoolVar(&f.open, "open", false, "write the markdown report to the cache folder and open it")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func (f *sourceFlags) validate() error {
	if f.format != "json" && f.format != "markdown" {
		return fmt.Errorf("unknown format %q: use json or markdown", f.format)
	}
	return nil
}

func (f *sourceFlags) window() (report.DateRange, error) {
	r, err := report.ParseDateRange(f.from, f.to)
	if err != nil {
		return report.DateRange{}, err
	}
	if err := r.Validate(); err != nil {
		return report.DateRange{}, err
	}
	return r, nil
}

func (f *sourceFlags) load(ctx context.Context) (sheet.Source, sheet.Grid, error) {
	src, err := sheet.Resolve(sheet.Ref{
		File:          f.file,
		SheetName:     f.sheetName,
		SpreadsheetID: f.spreadsheetID,
		Range:         f.sheetRange,
		CSVURL:        f.csvURL,
	}, cfg.Sheet, sheet.NewSnapshotStore(cfg.CacheDir))
	if err != nil {
		return nil, nil, err
	}
	grid, err := src.Fetch(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", src.ID(), err)
	}
	log.Debug().Str("source", src.ID()).Int("rows", len(grid.Rows())).Msg("Grid loaded")
	return src, grid, nil
}

// emit writes data as indented JSON, or markdown as rendered by md.
func (f *sourceFlags) emit(w io.Writer, data any, md func() string) error {
	if f.open {
		return openReport(md())
	}
	if f.format == "markdown" {
		_, err := io.WriteString(w, md())
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

func openReport(markdown string) error {
	path := filepath.Join(cfg.CacheDir, "report-"+uuid.NewString()+".md")
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Info().Str("path", path).Msg("Opening report")
	browser.Stdout = os.Stderr
	return browser.OpenFile(path)
}
