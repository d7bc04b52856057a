package sheet

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSource reads a value range through the Google Sheets v4 API.
type GoogleSource struct {
	SpreadsheetID string
	Range         string

	// Exactly one of APIKey or CredentialsFile is normally set.
	APIKey          string
	CredentialsFile string

	// Endpoint overrides the API base URL (tests, proxies).
	Endpoint string
}

func (g GoogleSource) ID() string {
	return "gsheet:" + g.SpreadsheetID + "!" + g.Range
}

func (g GoogleSource) Fetch(ctx context.Context) (Grid, error) {
	if g.SpreadsheetID == "" {
		return nil, fmt.Errorf("google sheets source requires a spreadsheet ID")
	}
	rng := g.Range
	if rng == "" {
		rng = "A:ZZ"
	}

	var opts []option.ClientOption
	switch {
	case g.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(g.CredentialsFile))
	case g.APIKey != "":
		opts = append(opts, option.WithAPIKey(g.APIKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}
	if g.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.Endpoint))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	log.Info().Str("spreadsheet", g.SpreadsheetID).Str("range", rng).Msg("Requesting values from Google Sheets")
	resp, err := svc.Spreadsheets.Values.Get(g.SpreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rng, err)
	}

	return valuesToGrid(resp.Values), nil
}

// valuesToGrid stringifies the loosely typed API payload.
func valuesToGrid(values [][]interface{}) Grid {
	grid := make(Grid, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, v := range row {
			switch val := v.(type) {
			case nil:
				cells[i] = ""
			case string:
				cells[i] = val
			default:
				cells[i] = fmt.Sprint(val)
			}
		}
		grid = append(grid, cells)
	}
	return trimTrailingEmpty(grid)
}
