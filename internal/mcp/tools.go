package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names.
const (
	ToolAnalyzeFunnel   = "analyze_funnel"
	ToolSweepThresholds = "sweep_thresholds"
	ToolDescribeSheet   = "describe_sheet"
)

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name: ToolAnalyzeFunnel,
		Description: "Analyze the clinic encounter sheet for a month window: monthly potential vs. completed deals, " +
			"per-specialist performance, referring clinic and store funnels, and the hearing-screening campaign by month.\n\n" +
			"A row is a potential customer when either ear's PTA exceeds pta_threshold or the row is already a deal. " +
			"Rows without a parseable first-visit date, or outside the window, are excluded from every figure.\n" +
			"Rates are percentages; a rate of 0 with a zero denominator means 'not applicable', not 'no conversions'.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"from":            monthProperty("First month of the window (YYYY-MM)."),
			"to":              monthProperty("Last month of the window (YYYY-MM), inclusive."),
			"pta_threshold":   {Type: "number", Description: "PTA cutoff in dB. Default: PTA_THRESHOLD from the environment (40)."},
			"include_records": {Type: "boolean", Description: "Also return every row in the window with its classification."},
			"include_charts":  {Type: "boolean", Description: "Append Mermaid charts. Default: ENABLE_MERMAID_CHARTS."},
		}, "from", "to"),
	}, s.handleAnalyzeFunnel)

	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name: ToolSweepThresholds,
		Description: "Run the funnel analysis once per PTA threshold (default 25 to 90 in steps of 5) and report how the " +
			"potential pool, deals and overall conversion rate move with the threshold.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"from": monthProperty("First month of the window (YYYY-MM)."),
			"to":   monthProperty("Last month of the window (YYYY-MM), inclusive."),
			"thresholds": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "number"},
				Description: "Optional: thresholds to evaluate, in dB.",
			},
			"include_charts": {Type: "boolean", Description: "Append a Mermaid chart. Default: ENABLE_MERMAID_CHARTS."},
		}, "from", "to"),
	}, s.handleSweepThresholds)

	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name: ToolDescribeSheet,
		Description: "Show the sheet's header row and which columns were recognized (date, status, amount, ear PTA, " +
			"specialist, clinic, store, customer source, service date). Call this first when an analysis reports no date column.",
		InputSchema: objectSchema(nil),
	}, s.handleDescribeSheet)
}

// objectSchema adds the grid source properties shared by every tool.
func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	all := map[string]*jsonschema.Schema{
		"file":           {Type: "string", Description: "Optional: local .csv, .tsv or .xlsx export."},
		"sheet_name":     {Type: "string", Description: "Optional: workbook tab for .xlsx files. Default: first tab."},
		"spreadsheet_id": {Type: "string", Description: "Optional: Google Sheets ID. Default: GOOGLE_SHEET_ID."},
		"range":          {Type: "string", Description: "Optional: A1 range for Google Sheets. Default: GOOGLE_SHEET_RANGE or A:ZZ."},
		"csv_url":        {Type: "string", Description: "Optional: published CSV export URL. Default: SHEET_CSV_URL."},
	}
	for k, v := range props {
		all[k] = v
	}
	return &jsonschema.Schema{Type: "object", Properties: all, Required: required}
}

func monthProperty(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Pattern: `^\d{4}[-/]\d{1,2}$`, Description: description}
}
