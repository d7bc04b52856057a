package report_test

import (
	"encoding/json"
	"errors"
	"testing"

	"clinic-funnel/internal/report"
	"clinic-funnel/internal/sheet"
)

var scenarioHeader = []string{"初次到店", "是否成交", "成交金額", "左耳PTA", "右耳PTA", "主聽力師"}

func march2024() report.Params {
	return report.Params{
		Window:       report.DateRange{StartYear: 2024, StartMonth: 3, EndYear: 2024, EndMonth: 3},
		PTAThreshold: 40,
	}
}

func TestAnalyze_SingleConvertedRow(t *testing.T) {
	grid := sheet.Grid{scenarioHeader, {"2024/03/15", "是", "15000", "50", "20", "王小明"}}

	a, err := report.Analyze(grid, march2024())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(a.Monthly) != 1 {
		t.Fatalf("expected one monthly bucket, got %d", len(a.Monthly))
	}
	m := a.Monthly[0]
	if m.Label != "2024年3月" || m.NewCustomers != 1 || m.CompletedDeals != 1 || m.TotalAmount != 15000 || m.ConversionRate != 100 {
		t.Errorf("unexpected monthly bucket %+v", m)
	}

	if len(a.BySpecialist) != 1 {
		t.Fatalf("expected one specialist, got %d", len(a.BySpecialist))
	}
	s := a.BySpecialist[0]
	if s.Name != "王小明" || s.Orders != 1 || s.PotentialCustomers != 1 || s.Revenue != 15000 {
		t.Errorf("unexpected specialist %+v", s)
	}
}

func TestAnalyze_RowOutsideWindow(t *testing.T) {
	grid := sheet.Grid{scenarioHeader, {"2023/03/15", "是", "15000", "50", "20", "王小明"}}
	params := report.Params{Window: report.WholeYear(2024), PTAThreshold: 40}

	a, err := report.Analyze(grid, params)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if a.Totals != (report.Totals{}) {
		t.Errorf("expected zero totals, got %+v", a.Totals)
	}
	if len(a.Monthly)+len(a.BySpecialist)+len(a.ByClinic)+len(a.ByStore)+len(a.BySourceMonth) != 0 {
		t.Errorf("excluded row leaked into an aggregate: %+v", a)
	}
	if a.Earliest != "" || a.Latest != "" {
		t.Errorf("expected empty span, got %q..%q", a.Earliest, a.Latest)
	}
}

func TestAnalyze_CurrencyAmount(t *testing.T) {
	grid := sheet.Grid{scenarioHeader, {"2024/03/15", "是", "NT$152,000.00", "50", "20", "王小明"}}

	a, err := report.Analyze(grid, march2024())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.TotalAmount != 152000 {
		t.Errorf("expected 152000, got %v", a.TotalAmount)
	}
}

func TestAnalyze_LookalikeColumnsDoNotConvert(t *testing.T) {
	grid := sheet.Grid{
		{"初次到店", "訂單狀態", "總金額", "左耳PTA", "右耳PTA"},
		{"2024/03/15", "已成交", "NT$30,000", "10", "10"},
	}
	params := report.Params{Window: report.WholeYear(2024), PTAThreshold: 40}

	a, err := report.Analyze(grid, params)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.RecordCount != 1 || a.TotalPotential != 0 || a.TotalConverted != 0 || a.TotalAmount != 0 {
		t.Errorf("only the fixed marker and amount columns may convert, got %+v", a.Totals)
	}
}

func TestAnalyze_SpanReportsRawServiceDate(t *testing.T) {
	header := []string{"初次到店", "服務日期", "是否成交"}
	grid := sheet.Grid{
		header,
		{"2024/03/02", "待確認", "否"},
		{"2024/03/15", "", "否"},
		{"2024/03/20", "2024/03/25", "否"},
	}

	a, err := report.Analyze(grid, march2024())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Earliest != "待確認" {
		t.Errorf("earliest should be the first row's service-date text, got %q", a.Earliest)
	}
	if a.Latest != "2024/03/25" {
		t.Errorf("latest should be the last row's service-date text, got %q", a.Latest)
	}
}

func TestAnalyze_RowLevelOutput(t *testing.T) {
	grid := sheet.Grid{scenarioHeader, {"2024/03/15", "否", "", "30", "35", "王小明"}}
	params := march2024()
	params.IncludeRecords = true

	a, err := report.Analyze(grid, params)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if a.TotalPotential != 0 || a.TotalConverted != 0 {
		t.Errorf("row must not count as potential or converted, got %+v", a.Totals)
	}
	if a.Monthly[0].NewCustomers != 0 || a.BySpecialist[0].PotentialCustomers != 0 {
		t.Errorf("row must contribute to no potential counter")
	}
	if len(a.Records) != 1 || a.Records[0].IsPotential {
		t.Errorf("row should still be visible in row-level output, got %+v", a.Records)
	}

	params.IncludeRecords = false
	a, _ = report.Analyze(grid, params)
	if a.Records != nil {
		t.Error("row-level output is opt-in")
	}
}

func TestAnalyze_NoDateColumn(t *testing.T) {
	grid := sheet.Grid{{"姓名", "是否成交"}, {"王", "是"}}

	a, err := report.Analyze(grid, march2024())
	if !errors.Is(err, report.ErrNoDateColumn) {
		t.Fatalf("expected ErrNoDateColumn, got %v", err)
	}
	if a != nil {
		t.Error("no partial result on schema error")
	}

	if _, err := report.Analyze(nil, march2024()); !errors.Is(err, report.ErrNoDateColumn) {
		t.Errorf("empty grid should fail the same way, got %v", err)
	}
}

func TestAnalyze_HeaderOnly(t *testing.T) {
	a, err := report.Analyze(sheet.Grid{scenarioHeader}, march2024())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Records != nil || a.OverallConversionRate != 0 || len(a.Monthly) != 0 {
		t.Errorf("expected an empty analysis, got %+v", a)
	}
}

func TestAnalyze_OverallRate(t *testing.T) {
	grid := sheet.Grid{
		scenarioHeader,
		{"2024/03/01", "是", "100", "50", "50", "A"},
		{"2024/03/02", "", "", "50", "", "A"},
		{"2024/03/03", "", "", "", "60", "B"},
		{"2024/03/04", "", "", "10", "10", "B"},
	}

	a, err := report.Analyze(grid, march2024())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.TotalPotential != 3 || a.TotalConverted != 1 {
		t.Fatalf("unexpected totals %+v", a.Totals)
	}
	want := float64(a.TotalConverted) / float64(a.TotalPotential) * 100
	if a.OverallConversionRate != want {
		t.Errorf("expected overall rate %v, got %v", want, a.OverallConversionRate)
	}
}

// Every dimension must agree with the global totals once the window has filtered rows.
func TestAnalyze_CrossDimensionConsistency(t *testing.T) {
	grid := loadGolden(t)
	windows := []report.DateRange{
		{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 3},
		{StartYear: 2024, StartMonth: 2, EndYear: 2024, EndMonth: 2},
		{StartYear: 2023, StartMonth: 1, EndYear: 2024, EndMonth: 12},
		report.WholeYear(2022),
	}

	for _, w := range windows {
		a, err := report.Analyze(grid, report.Params{Window: w, PTAThreshold: 40})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}

		var total, potential, converted int
		for _, m := range a.Monthly {
			total += m.Total
			potential += m.NewCustomers
			converted += m.CompletedDeals
		}
		if total != a.RecordCount || potential != a.TotalPotential || converted != a.TotalConverted {
			t.Errorf("window %+v: monthly sums (%d,%d,%d) disagree with totals %+v", w, total, potential, converted, a.Totals)
		}

		total, potential, converted = 0, 0, 0
		var revenue float64
		for _, s := range a.BySpecialist {
			total += s.Total
			potential += s.PotentialCustomers
			converted += s.Orders
			revenue += s.Revenue
			if s.PotentialCustomers < s.Orders {
				t.Errorf("specialist %s has more orders than potential customers", s.Name)
			}
		}
		if total != a.RecordCount || potential != a.TotalPotential || converted != a.TotalConverted || revenue != a.TotalAmount {
			t.Errorf("window %+v: specialist sums disagree with totals %+v", w, a.Totals)
		}

		for _, c := range a.ByClinic {
			if c.Name == "" {
				t.Errorf("window %+v: empty clinic bucket", w)
			}
		}
		for _, s := range a.ByStore {
			if s.Name == "" || s.Name == "#N/A" {
				t.Errorf("window %+v: placeholder store bucket %q", w, s.Name)
			}
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	grid := loadGolden(t)
	params := report.Params{Window: report.WholeYear(2024), PTAThreshold: 40, IncludeRecords: true}

	first, err := report.Analyze(grid, params)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want, _ := json.Marshal(first)

	for i := 0; i < 20; i++ {
		again, err := report.Analyze(grid, params)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		got, _ := json.Marshal(again)
		if string(got) != string(want) {
			t.Fatalf("run %d differs from the first run", i)
		}
	}
}

func TestAnalyze_DoesNotMutateGrid(t *testing.T) {
	grid := loadGolden(t)
	before := grid.Clone()

	if _, err := report.Analyze(grid, report.Params{Window: report.WholeYear(2024), PTAThreshold: 40}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	got, _ := json.Marshal(grid)
	want, _ := json.Marshal(before)
	if string(got) != string(want) {
		t.Error("Analyze mutated its input grid")
	}
}
