package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// FileSource reads a local CSV or XLSX export.
type FileSource struct {
	Path string
	// SheetName selects the worksheet of an XLSX workbook. Empty means the first sheet.
	SheetName string
}

func (f FileSource) ID() string {
	if f.SheetName != "" {
		return "file:" + f.Path + "#" + f.SheetName
	}
	return "file:" + f.Path
}

func (f FileSource) Fetch(ctx context.Context) (Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".csv", ".tsv", ".txt":
		file, err := os.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
		}
		defer file.Close()

		comma := ','
		if strings.EqualFold(filepath.Ext(f.Path), ".tsv") {
			comma = '\t'
		}
		grid, err := ReadCSV(file, comma)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
		log.Debug().Str("path", f.Path).Int("rows", len(grid)).Msg("Loaded CSV grid")
		return grid, nil
	case ".xlsx", ".xlsm", ".xltx":
		return f.readWorkbook()
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .csv, .tsv or .xlsx)", filepath.Ext(f.Path))
	}
}

func (f FileSource) readWorkbook() (Grid, error) {
	wb, err := excelize.OpenFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", f.Path, err)
	}
	defer func() { _ = wb.Close() }()

	name := f.SheetName
	if name == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", f.Path)
		}
		name = sheets[0]
	}

	// Formatted values keep dates and currency the way the sheet displays them.
	rows, err := wb.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	grid := trimTrailingEmpty(Grid(rows))
	log.Debug().Str("path", f.Path).Str("sheet", name).Int("rows", len(grid)).Msg("Loaded workbook grid")
	return grid, nil
}

// ReadCSV parses delimited text into a Grid. A UTF-8 BOM on the first cell is dropped.
func ReadCSV(r io.Reader, comma rune) (Grid, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return trimTrailingEmpty(Grid(rows)), nil
}
