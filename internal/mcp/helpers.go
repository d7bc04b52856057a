package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clinic-funnel/internal/report"
	"clinic-funnel/internal/sheet"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// SourceArgs selects the grid to read. Empty fields fall back to the environment.
type SourceArgs struct {
	File          string `json:"file,omitempty"`
	SheetName     string `json:"sheet_name,omitempty"`
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	Range         string `json:"range,omitempty"`
	CSVURL        string `json:"csv_url,omitempty" validate:"omitempty,url"`
}

func (a SourceArgs) ref() sheet.Ref {
	return sheet.Ref{
		File:          a.File,
		SheetName:     a.SheetName,
		SpreadsheetID: a.SpreadsheetID,
		Range:         a.Range,
		CSVURL:        a.CSVURL,
	}
}

// WindowArgs is the month window of a request.
type WindowArgs struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

func (a WindowArgs) window() (report.DateRange, error) {
	r, err := report.ParseDateRange(a.From, a.To)
	if err != nil {
		return report.DateRange{}, err
	}
	if err := r.Validate(); err != nil {
		return report.DateRange{}, err
	}
	return r, nil
}

// loadGrid resolves and fetches the requested grid.
func (s *Server) loadGrid(ctx context.Context, args SourceArgs) (sheet.Source, sheet.Grid, error) {
	src, err := s.sources.Source(args.ref())
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

// checkArgs runs struct validation and flattens the messages.
func (s *Server) checkArgs(args any) error {
	if err := s.validate.Struct(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) chartsEnabled(requested *bool) bool {
	if requested != nil {
		return *requested
	}
	return s.cfg.EnableMermaidCharts
}

func (s *Server) formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

// textResult builds a tool result from the JSON payload plus optional extra blocks (charts).
func (s *Server) textResult(data any, extra ...string) *mcpsdk.CallToolResult {
	content := []mcpsdk.Content{&mcpsdk.TextContent{Text: s.formatResult(data)}}
	for _, e := range extra {
		if strings.TrimSpace(e) == "" {
			continue
		}
		content = append(content, &mcpsdk.TextContent{Text: e})
	}
	return &mcpsdk.CallToolResult{Content: content}
}
