package report

import (
	"clinic-funnel/internal/sheet"
)

// Analyze runs the whole pipeline over a fetched grid: resolve the header,
// build and classify records, filter by window, then fold every dimension.
//
// The grid is read, never modified, so one grid may be shared by concurrent
// calls. The only error is a header without a date column.
func Analyze(grid sheet.Grid, params Params) (*Analysis, error) {
	header := grid.Header()
	fields, err := ResolveFields(header)
	if err != nil {
		return nil, err
	}

	classifier := NewClassifier(fields, params.PTAThreshold)
	records := BuildRecords(grid.Rows(), header, fields)
	classified := make([]ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		classified = append(classified, classifier.Classify(rec))
	}

	filtered := FilterRecords(classified, params.Window)

	result := &Analysis{
		Window:        params.Window,
		PTAThreshold:  params.PTAThreshold,
		Fields:        fields,
		Totals:        SumTotals(filtered),
		Monthly:       AggregateMonthly(filtered),
		BySpecialist:  AggregateSpecialists(filtered),
		ByClinic:      AggregateClinics(filtered),
		ByStore:       AggregateStores(filtered, fields),
		BySourceMonth: AggregateSourceMonths(filtered, fields),
	}

	if len(filtered) > 0 {
		result.Earliest = serviceDateText(filtered[0].Record, fields)
		result.Latest = serviceDateText(filtered[len(filtered)-1].Record, fields)
	}

	if params.IncludeRecords {
		result.Records = filtered
	}
	return result, nil
}

// SumTotals computes the global counters over already filtered records.
func SumTotals(records []ClassifiedRecord) Totals {
	var t tally
	for _, rec := range records {
		t.add(rec.IsPotential, rec.IsConverted, rec.DealAmount)
	}
	return Totals{
		RecordCount:           t.total,
		TotalPotential:        t.potential,
		TotalConverted:        t.converted,
		TotalAmount:           t.amount,
		OverallConversionRate: percent(t.converted, t.potential),
	}
}
