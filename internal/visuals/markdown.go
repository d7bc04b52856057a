package visuals

import (
	"fmt"
	"strings"

	"clinic-funnel/internal/report"
)

// RenderMarkdown lays out an analysis as Markdown tables, one section per dimension.
// Charts are appended to the trend sections when withCharts is set.
func RenderMarkdown(a *report.Analysis, withCharts bool) string {
	var sb strings.Builder

	sb.WriteString("# Clinic Funnel Report\n\n")
	sb.WriteString(fmt.Sprintf("- Window: %04d-%02d to %04d-%02d\n",
		a.Window.StartYear, a.Window.StartMonth, a.Window.EndYear, a.Window.EndMonth))
	sb.WriteString(fmt.Sprintf("- PTA threshold: %g dB\n", a.PTAThreshold))
	if a.Earliest != "" {
		sb.WriteString(fmt.Sprintf("- Observed span: %s to %s\n", a.Earliest, a.Latest))
	}
	sb.WriteString(fmt.Sprintf("- Records in window: %d\n", a.RecordCount))
	sb.WriteString(fmt.Sprintf("- Potential customers: %d\n", a.TotalPotential))
	sb.WriteString(fmt.Sprintf("- Completed deals: %d\n", a.TotalConverted))
	sb.WriteString(fmt.Sprintf("- Revenue: %s\n", amount(a.TotalAmount)))
	sb.WriteString(fmt.Sprintf("- Overall conversion: %s\n", rate(a.OverallConversionRate, a.TotalPotential)))

	sb.WriteString("\n## Monthly Trend\n\n")
	table(&sb, []string{"Month", "Total", "Potential", "Deals", "Revenue", "Conversion", "Avg Deal"}, len(a.Monthly), func(i int) []string {
		m := a.Monthly[i]
		return []string{m.Label, itoa(m.Total), itoa(m.NewCustomers), itoa(m.CompletedDeals),
			amount(m.TotalAmount), rate(m.ConversionRate, m.NewCustomers), amount(m.AverageAmount)}
	})
	if withCharts {
		chart(&sb, GenerateMonthlyTrendChart(a.Monthly))
		chart(&sb, GenerateRevenueChart(a.Monthly))
	}

	sb.WriteString("\n## Specialists\n\n")
	table(&sb, []string{"Specialist", "Total", "潛力客戶數", "訂單數量", "當季業績累積", "Conversion"}, len(a.BySpecialist), func(i int) []string {
		s := a.BySpecialist[i]
		return []string{s.Name, itoa(s.Total), itoa(s.PotentialCustomers), itoa(s.Orders),
			amount(s.Revenue), rate(s.ConversionRate, s.PotentialCustomers)}
	})
	if withCharts {
		chart(&sb, GenerateSpecialistChart(a.BySpecialist))
	}

	sb.WriteString("\n## Referring Clinics\n\n")
	table(&sb, []string{"Clinic", "Total", "Potential", "Converted", "Revenue", "Conversion"}, len(a.ByClinic), func(i int) []string {
		c := a.ByClinic[i]
		return []string{c.Name, itoa(c.Total), itoa(c.Potential), itoa(c.Converted),
			amount(c.TotalAmount), rate(c.ConversionRate, c.Total)}
	})

	sb.WriteString("\n## Referring Stores\n\n")
	table(&sb, []string{"Store", "Total", "Potential"}, len(a.ByStore), func(i int) []string {
		s := a.ByStore[i]
		return []string{s.Name, itoa(s.Total), itoa(s.Potential)}
	})

	sb.WriteString("\n## Hearing Screening Campaign\n\n")
	table(&sb, []string{"Month", "Total", "Potential", "Converted", "Revenue", "Conversion"}, len(a.BySourceMonth), func(i int) []string {
		e := a.BySourceMonth[i]
		return []string{e.Label, itoa(e.Total), itoa(e.Potential), itoa(e.Converted),
			amount(e.TotalAmount), rate(e.ConversionRate, e.Total)}
	})
	if withCharts {
		chart(&sb, GenerateSourceMonthChart(a.BySourceMonth))
	}

	return sb.String()
}

// RenderSweepMarkdown tabulates a threshold sweep.
func RenderSweepMarkdown(points []report.SweepPoint, withCharts bool) string {
	var sb strings.Builder
	sb.WriteString("# PTA Threshold Sweep\n\n")
	table(&sb, []string{"Threshold", "Records", "Potential", "Deals", "Revenue", "Conversion"}, len(points), func(i int) []string {
		p := points[i]
		return []string{fmt.Sprintf("%g", p.PTAThreshold), itoa(p.RecordCount), itoa(p.TotalPotential),
			itoa(p.TotalConverted), amount(p.TotalAmount), rate(p.OverallConversionRate, p.TotalPotential)}
	})
	if withCharts {
		chart(&sb, GenerateSweepChart(points))
	}
	return sb.String()
}

func table(sb *strings.Builder, header []string, n int, row func(i int) []string) {
	if n == 0 {
		sb.WriteString("_No data in window._\n")
		return
	}
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for i := 0; i < n; i++ {
		cells := row(i)
		for j, c := range cells {
			cells[j] = strings.ReplaceAll(c, "|", "\\|")
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func chart(sb *strings.Builder, mermaid string) {
	if mermaid == "" {
		return
	}
	sb.WriteString("\n" + mermaid + "\n")
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

func amount(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// rate renders a percentage, or "n/a" when its denominator was zero.
func rate(v float64, denominator int) string {
	if denominator == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v)
}
