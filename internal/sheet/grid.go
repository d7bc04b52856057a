package sheet

import (
	"context"
	"strings"
)

// Grid is a header row followed by data rows of raw cell text.
// Rows may be ragged; missing trailing cells read as "".
type Grid [][]string

// Header returns row 0, or nil for an empty grid.
func (g Grid) Header() []string {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// Rows returns the data rows (header excluded).
func (g Grid) Rows() [][]string {
	if len(g) < 2 {
		return nil
	}
	return g[1:]
}

// Cell returns the text at (row, col) or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Clone returns a deep copy so callers can hand a grid to code that must not share backing arrays.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Source yields a Grid from somewhere (file, Google Sheets, published CSV).
type Source interface {
	ID() string
	Fetch(ctx context.Context) (Grid, error)
}

// trimTrailingEmpty drops fully empty rows from the end of the grid.
// Spreadsheet exports often pad the used range with blank rows.
func trimTrailingEmpty(g Grid) Grid {
	end := len(g)
	for end > 1 && isBlankRow(g[end-1]) {
		end--
	}
	return g[:end]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
