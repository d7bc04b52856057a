package visuals

import (
	"fmt"
	"math"
	"strings"

	"clinic-funnel/internal/report"
)

// GenerateMonthlyTrendChart creates a Mermaid xychart-beta with potential customers as bars
// and completed deals as a line, one point per month.
func GenerateMonthlyTrendChart(monthly []report.MonthlyEntry) string {
	if len(monthly) == 0 {
		return ""
	}

	var labels []string
	var potential []string
	var deals []string
	maxVal := 0

	for _, m := range monthly {
		labels = append(labels, fmt.Sprintf("\"%s\"", m.Label))
		potential = append(potential, fmt.Sprintf("%d", m.NewCustomers))
		deals = append(deals, fmt.Sprintf("%d", m.CompletedDeals))
		if m.NewCustomers > maxVal {
			maxVal = m.NewCustomers
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Monthly Potential vs. Completed Deals\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Customers\" 0 --> %d\n", headroom(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(potential, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(deals, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateRevenueChart creates a Mermaid bar chart of converted revenue per month.
func GenerateRevenueChart(monthly []report.MonthlyEntry) string {
	if len(monthly) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0

	for _, m := range monthly {
		labels = append(labels, fmt.Sprintf("\"%s\"", m.Label))
		values = append(values, fmt.Sprintf("%.0f", m.TotalAmount))
		maxVal = math.Max(maxVal, m.TotalAmount)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Monthly Revenue\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Amount\" 0 --> %d\n", int(math.Ceil(math.Max(1, maxVal*1.1)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateSpecialistChart creates a Mermaid bar chart of orders per specialist.
func GenerateSpecialistChart(specialists []report.SpecialistEntry) string {
	if len(specialists) == 0 {
		return ""
	}

	var labels []string
	var potential []string
	var orders []string
	maxVal := 0

	// Limit to 20 specialists to keep the chart readable
	limit := min(len(specialists), 20)

	for _, s := range specialists[:limit] {
		labels = append(labels, fmt.Sprintf("\"%s\"", s.Name))
		potential = append(potential, fmt.Sprintf("%d", s.PotentialCustomers))
		orders = append(orders, fmt.Sprintf("%d", s.Orders))
		if s.PotentialCustomers > maxVal {
			maxVal = s.PotentialCustomers
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Potential Customers and Orders by Specialist\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Customers\" 0 --> %d\n", headroom(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(potential, ", ")))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(orders, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateSourceMonthChart creates a Mermaid line chart of the screening campaign funnel.
func GenerateSourceMonthChart(entries []report.SourceMonthEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var labels []string
	var totals []string
	var converted []string
	maxVal := 0

	for _, e := range entries {
		labels = append(labels, fmt.Sprintf("\"%s\"", e.Label))
		totals = append(totals, fmt.Sprintf("%d", e.Total))
		converted = append(converted, fmt.Sprintf("%d", e.Converted))
		if e.Total > maxVal {
			maxVal = e.Total
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Hearing Screening Funnel\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Customers\" 0 --> %d\n", headroom(maxVal)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(totals, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(converted, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateSweepChart plots the overall conversion rate against the PTA threshold.
func GenerateSweepChart(points []report.SweepPoint) string {
	if len(points) == 0 {
		return ""
	}

	var labels []string
	var potential []string
	var rates []string
	maxVal := 0

	for _, p := range points {
		labels = append(labels, fmt.Sprintf("\"%g\"", p.PTAThreshold))
		potential = append(potential, fmt.Sprintf("%d", p.TotalPotential))
		rates = append(rates, fmt.Sprintf("%.1f", p.OverallConversionRate))
		if p.TotalPotential > maxVal {
			maxVal = p.TotalPotential
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Potential Pool by PTA Threshold\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis \"Threshold (dB)\" [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Customers / Rate %%\" 0 --> %d\n", max(headroom(maxVal), 110)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(potential, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(rates, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// headroom leaves about 20% above the tallest value.
func headroom(maxVal int) int {
	return maxVal + int(math.Max(1, float64(maxVal)*0.2))
}
