package engine

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"clinic-funnel/internal/sheet"
)

// Header matches the column layout of the clinics' encounter sheet.
var Header = []string{
	"初次到店", "服務日期", "顧客\n來源", "主聽力師", "診所名稱", "門市自帶客",
	"左耳PTA", "右耳PTA", "是否成交", "是否有借機", "成交金額", "狀態",
}

const (
	colFirstVisit = iota
	colServiceDate
	colSource
	colSpecialist
	colClinic
	colStore
	colLeftPTA
	colRightPTA
	colDeal
	colLoaner
	colAmount
	colStatus
)

var (
	specialists = []string{"王小明", "李美華", "陳志強", "林怡君"}
	clinics     = []string{"仁愛診所", "安康診所", "博愛耳鼻喉科", "長青診所"}
	stores      = []string{"台北店", "板橋店", "新竹店"}
	sources     = []string{"門市來客", "網路", "轉介", "聽篩活動"}
)

type GeneratorConfig struct {
	Scenario string // "steady", "campaign" or "messy"
	Count    int
	Start    time.Time // first month covered
	Months   int
	Seed     int64
}

// Generate produces an encounter sheet. The same config always yields the same grid.
func Generate(cfg GeneratorConfig) sheet.Grid {
	if cfg.Months <= 0 {
		cfg.Months = 12
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	start := time.Date(cfg.Start.Year(), cfg.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	spanDays := int(start.AddDate(0, cfg.Months, 0).Sub(start).Hours() / 24)

	rng := rand.New(rand.NewSource(cfg.Seed))
	grid := sheet.Grid{append([]string(nil), Header...)}

	for i := 0; i < cfg.Count; i++ {
		row := make([]string, len(Header))
		visit := start.AddDate(0, 0, rng.Intn(spanDays))
		progress := float64(i) / math.Max(1, float64(cfg.Count-1))

		row[colFirstVisit] = formatDate(rng, cfg.Scenario, visit)
		if rng.Float64() < 0.6 {
			row[colServiceDate] = formatDate(rng, cfg.Scenario, visit.AddDate(0, 0, rng.Intn(14)))
		}

		row[colSource] = pick(rng, sources[:3])
		if cfg.Scenario == "campaign" && rng.Float64() < 0.3+0.4*progress {
			row[colSource] = "聽篩活動"
		} else if rng.Float64() < 0.1 {
			row[colSource] = "聽篩活動"
		}

		row[colSpecialist] = pick(rng, specialists)
		if rng.Float64() < 0.2 {
			row[colClinic] = pick(rng, clinics)
		}
		if rng.Float64() < 0.3 {
			row[colStore] = pick(rng, stores)
		}

		// Hearing loss skews mild with a long tail into the severe range.
		left := 15 + rng.ExpFloat64()*20
		right := 15 + rng.ExpFloat64()*20
		row[colLeftPTA] = fmt.Sprintf("%.0f", math.Min(left, 110))
		row[colRightPTA] = fmt.Sprintf("%.0f", math.Min(right, 110))

		closeRate := 0.05
		if left > 40 || right > 40 {
			closeRate = 0.45
			if cfg.Scenario == "campaign" && row[colSource] == "聽篩活動" {
				closeRate += 0.2 * progress
			}
		}

		converted := rng.Float64() < closeRate
		row[colDeal] = "否"
		if converted {
			row[colDeal] = "是"
			row[colAmount] = formatAmount(rng, cfg.Scenario, float64(15+rng.Intn(76))*1000)
		} else if rng.Float64() < 0.1 {
			row[colLoaner] = "是"
		}

		if cfg.Scenario == "messy" {
			mess(rng, row, converted)
		}
		grid = append(grid, row)
	}
	return grid
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func formatDate(rng *rand.Rand, scenario string, t time.Time) string {
	if scenario != "messy" {
		return t.Format("2006/01/02")
	}
	switch rng.Intn(4) {
	case 0:
		return t.Format("2006-01-02")
	case 1:
		return t.Format("01/02/2006")
	case 2:
		return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
	default:
		return t.Format("2006/1/2")
	}
}

func formatAmount(rng *rand.Rand, scenario string, v float64) string {
	if scenario != "messy" {
		return fmt.Sprintf("%.0f", v)
	}
	switch rng.Intn(3) {
	case 0:
		return fmt.Sprintf("NT$%d,%03d", int(v)/1000, int(v)%1000)
	case 1:
		return fmt.Sprintf("%.0f元", v)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// mess degrades a row the way hand-kept sheets tend to be degraded.
func mess(rng *rand.Rand, row []string, converted bool) {
	switch rng.Intn(10) {
	case 0:
		row[colFirstVisit] = "N/A"
	case 1:
		row[colSpecialist] = ""
	case 2:
		row[colStore] = "#N/A"
	case 3:
		row[colLeftPTA] = ""
	case 4:
		row[colRightPTA] = "?"
	case 5:
		if converted {
			row[colDeal] = ""
			row[colStatus] = "已成交"
		}
	case 6:
		row[colClinic] = "  " + row[colClinic] + " "
	}
}

// Save writes the grid as <outDir>/<name>.csv.
func Save(outDir, name string, grid sheet.Grid) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(outDir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(grid); err != nil {
		return "", err
	}
	return path, f.Close()
}
