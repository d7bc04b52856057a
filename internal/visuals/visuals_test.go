package visuals

import (
	"strings"
	"testing"

	"clinic-funnel/internal/report"
)

func sampleAnalysis() *report.Analysis {
	return &report.Analysis{
		Window:       report.DateRange{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 2},
		PTAThreshold: 40,
		Totals:       report.Totals{RecordCount: 3, TotalPotential: 2, TotalConverted: 1, TotalAmount: 15000, OverallConversionRate: 50},
		Earliest:     "2024/01/05",
		Latest:       "2024/02/10",
		Monthly: []report.MonthlyEntry{
			{Label: "2024年1月", Year: 2024, Month: 1, Total: 2, NewCustomers: 1, CompletedDeals: 1, TotalAmount: 15000, ConversionRate: 100, AverageAmount: 15000},
			{Label: "2024年2月", Year: 2024, Month: 2, Total: 1, NewCustomers: 1},
		},
		BySpecialist: []report.SpecialistEntry{
			{Name: "王小明", Total: 2, PotentialCustomers: 1, Orders: 1, Revenue: 15000, ConversionRate: 100},
			{Name: "未知業務員", Total: 1},
		},
		ByClinic: []report.ClinicEntry{{Name: "A|B 診所", Total: 1, Potential: 1}},
	}
}

func TestGenerateMonthlyTrendChart(t *testing.T) {
	got := GenerateMonthlyTrendChart(sampleAnalysis().Monthly)

	if !strings.HasPrefix(got, "```mermaid\nxychart-beta\n") || !strings.HasSuffix(got, "```") {
		t.Fatalf("expected a fenced xychart, got:\n%s", got)
	}
	for _, want := range []string{`x-axis ["2024年1月", "2024年2月"]`, "bar [1, 1]", "line [1, 0]", "0 --> 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("chart is missing %q:\n%s", want, got)
		}
	}
}

func TestCharts_EmptyInput(t *testing.T) {
	if GenerateMonthlyTrendChart(nil) != "" || GenerateRevenueChart(nil) != "" ||
		GenerateSpecialistChart(nil) != "" || GenerateSourceMonthChart(nil) != "" || GenerateSweepChart(nil) != "" {
		t.Error("empty input should produce no chart")
	}
}

func TestGenerateSpecialistChart_Limit(t *testing.T) {
	var many []report.SpecialistEntry
	for i := 0; i < 30; i++ {
		many = append(many, report.SpecialistEntry{Name: "s", PotentialCustomers: 1})
	}
	got := GenerateSpecialistChart(many)
	if n := strings.Count(got, `"s"`); n != 20 {
		t.Errorf("expected 20 labels, got %d", n)
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleAnalysis(), false)

	for _, want := range []string{
		"- Window: 2024-01 to 2024-02",
		"- Overall conversion: 50.0%",
		"| 2024年1月 | 2 | 1 | 1 | 15000 | 100.0% | 15000 |",
		"| 未知業務員 | 1 | 0 | 0 | 0 | n/a |",
		`| A\|B 診所 |`,
		"## Referring Stores\n\n_No data in window._",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown is missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "```mermaid") {
		t.Error("charts were not requested")
	}

	withCharts := RenderMarkdown(sampleAnalysis(), true)
	if strings.Count(withCharts, "```mermaid") != 3 {
		t.Errorf("expected trend, revenue and specialist charts, got:\n%s", withCharts)
	}
}

func TestRenderSweepMarkdown(t *testing.T) {
	points := []report.SweepPoint{
		{PTAThreshold: 25, Totals: report.Totals{RecordCount: 10, TotalPotential: 8, TotalConverted: 4, OverallConversionRate: 50}},
		{PTAThreshold: 90, Totals: report.Totals{RecordCount: 10}},
	}
	md := RenderSweepMarkdown(points, true)

	if !strings.Contains(md, "| 25 | 10 | 8 | 4 | 0 | 50.0% |") {
		t.Errorf("unexpected sweep table:\n%s", md)
	}
	if !strings.Contains(md, "| 90 | 10 | 0 | 0 | 0 | n/a |") {
		t.Errorf("zero potential should render n/a:\n%s", md)
	}
	if !strings.Contains(md, `x-axis "Threshold (dB)" ["25", "90"]`) {
		t.Errorf("sweep chart missing thresholds:\n%s", md)
	}
}
