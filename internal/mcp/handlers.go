package mcp

import (
	"context"
	"strings"

	"clinic-funnel/internal/report"
	"clinic-funnel/internal/visuals"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// AnalyzeArgs are the arguments of analyze_funnel.
type AnalyzeArgs struct {
	SourceArgs
	WindowArgs
	PTAThreshold   *float64 `json:"pta_threshold,omitempty"`
	IncludeRecords bool     `json:"include_records,omitempty"`
	IncludeCharts  *bool    `json:"include_charts,omitempty"`
}

// AnalysisResponse wraps one analysis with the run metadata.
type AnalysisResponse struct {
	RunID    string           `json:"run_id"`
	Source   string           `json:"source"`
	Rows     int              `json:"rows"`
	Analysis *report.Analysis `json:"analysis"`
}

func (s *Server) handleAnalyzeFunnel(ctx context.Context, _ *mcpsdk.CallToolRequest, args AnalyzeArgs) (*mcpsdk.CallToolResult, any, error) {
	if err := s.checkArgs(args); err != nil {
		return nil, nil, err
	}
	window, err := args.window()
	if err != nil {
		return nil, nil, err
	}

	threshold := s.cfg.PTAThreshold
	if args.PTAThreshold != nil {
		threshold = *args.PTAThreshold
	}

	src, grid, err := s.loadGrid(ctx, args.SourceArgs)
	if err != nil {
		return nil, nil, err
	}

	runID := uuid.NewString()
	analysis, err := report.Analyze(grid, report.Params{
		Window:         window,
		PTAThreshold:   threshold,
		IncludeRecords: args.IncludeRecords,
	})
	if err != nil {
		log.Warn().Err(err).Str("run", runID).Str("source", src.ID()).Msg("Analysis rejected")
		return nil, nil, err
	}

	log.Info().
		Str("run", runID).
		Str("source", src.ID()).
		Int("rows", len(grid.Rows())).
		Int("in_window", analysis.RecordCount).
		Float64("threshold", threshold).
		Msg("Funnel analysis complete")

	resp := AnalysisResponse{RunID: runID, Source: src.ID(), Rows: len(grid.Rows()), Analysis: analysis}
	if !s.chartsEnabled(args.IncludeCharts) {
		return s.textResult(resp), nil, nil
	}
	return s.textResult(resp,
		visuals.GenerateMonthlyTrendChart(analysis.Monthly),
		visuals.GenerateSpecialistChart(analysis.BySpecialist),
		visuals.GenerateSourceMonthChart(analysis.BySourceMonth),
	), nil, nil
}

// SweepArgs are the arguments of sweep_thresholds.
type SweepArgs struct {
	SourceArgs
	WindowArgs
	Thresholds    []float64 `json:"thresholds,omitempty" validate:"max=64"`
	IncludeCharts *bool     `json:"include_charts,omitempty"`
}

// SweepResponse lists the totals per threshold in request order.
type SweepResponse struct {
	RunID  string              `json:"run_id"`
	Source string              `json:"source"`
	Window report.DateRange    `json:"window"`
	Points []report.SweepPoint `json:"points"`
}

func (s *Server) handleSweepThresholds(ctx context.Context, _ *mcpsdk.CallToolRequest, args SweepArgs) (*mcpsdk.CallToolResult, any, error) {
	if err := s.checkArgs(args); err != nil {
		return nil, nil, err
	}
	window, err := args.window()
	if err != nil {
		return nil, nil, err
	}

	thresholds := args.Thresholds
	if len(thresholds) == 0 {
		thresholds = report.DefaultThresholds()
	}

	src, grid, err := s.loadGrid(ctx, args.SourceArgs)
	if err != nil {
		return nil, nil, err
	}

	runID := uuid.NewString()
	points, err := report.Sweep(ctx, grid, window, thresholds)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("run", runID).Str("source", src.ID()).Int("thresholds", len(points)).Msg("Threshold sweep complete")

	resp := SweepResponse{RunID: runID, Source: src.ID(), Window: window, Points: points}
	if !s.chartsEnabled(args.IncludeCharts) {
		return s.textResult(resp), nil, nil
	}
	return s.textResult(resp, visuals.GenerateSweepChart(points)), nil, nil
}

// DescribeResponse shows how a header row was understood.
type DescribeResponse struct {
	Source     string          `json:"source"`
	Header     []string        `json:"header"`
	Rows       int             `json:"rows"`
	Fields     report.FieldMap `json:"fields"`
	Missing    []report.Field  `json:"missing,omitempty"`
	Analyzable bool            `json:"analyzable"`
	Guidance   string          `json:"guidance,omitempty"`
}

var describedFields = []report.Field{
	report.FieldDate,
	report.FieldStatus,
	report.FieldAmount,
	report.FieldLeftEar,
	report.FieldRightEar,
	report.FieldSpecialist,
	report.FieldClinic,
	report.FieldStore,
	report.FieldSource,
	report.FieldServiceDate,
}

func (s *Server) handleDescribeSheet(ctx context.Context, _ *mcpsdk.CallToolRequest, args SourceArgs) (*mcpsdk.CallToolResult, any, error) {
	if err := s.checkArgs(args); err != nil {
		return nil, nil, err
	}
	src, grid, err := s.loadGrid(ctx, args)
	if err != nil {
		return nil, nil, err
	}

	fields, ok := report.DescribeHeader(grid.Header())
	resp := DescribeResponse{
		Source:     src.ID(),
		Header:     grid.Header(),
		Rows:       len(grid.Rows()),
		Fields:     fields,
		Analyzable: ok,
	}
	for _, f := range describedFields {
		if _, found := fields.Label(f); !found {
			resp.Missing = append(resp.Missing, f)
		}
	}
	if !ok {
		resp.Guidance = "No header contains 初次到店, 日期 or Date. Rename the first-visit column or pick another tab/range."
	} else if len(resp.Missing) > 0 {
		names := make([]string, len(resp.Missing))
		for i, f := range resp.Missing {
			names[i] = string(f)
		}
		resp.Guidance = "Dimensions relying on " + strings.Join(names, ", ") + " will be empty or degrade to defaults."
	}
	return s.textResult(resp), nil, nil
}
