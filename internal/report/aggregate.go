package report

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

const (
	storePlaceholder = "#N/A"
	screeningSource  = "聽篩"
)

// tally is the fold-phase accumulator shared by every dimension.
// Only counts and sums are touched while folding.
type tally struct {
	total     int
	potential int
	converted int
	amount    float64
}

func (t *tally) add(potential, converted bool, amount Number) {
	t.total++
	if potential {
		t.potential++
	}
	if converted {
		t.converted++
	}
	if countsAmount(converted, amount) {
		t.amount += amount.Value
	}
}

// buckets keeps tallies by key in first-seen order.
type buckets[K comparable] struct {
	index map[K]int
	keys  []K
	tally []*tally
}

func newBuckets[K comparable]() *buckets[K] {
	return &buckets[K]{index: make(map[K]int)}
}

func (b *buckets[K]) get(key K) *tally {
	if i, ok := b.index[key]; ok {
		return b.tally[i]
	}
	b.index[key] = len(b.keys)
	b.keys = append(b.keys, key)
	t := &tally{}
	b.tally = append(b.tally, t)
	return t
}

// each visits buckets in first-seen order.
func (b *buckets[K]) each(fn func(key K, t *tally)) {
	for i, k := range b.keys {
		fn(k, b.tally[i])
	}
}

type monthKey struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

func (k monthKey) compare(o monthKey) int {
	if c := cmp.Compare(k.year, o.year); c != 0 {
		return c
	}
	return cmp.Compare(k.month, o.month)
}

func (k monthKey) label() string {
	return MonthLabel(k.year, k.month)
}

// percent returns num/den*100, or 0 when den is 0.
func percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// AggregateMonthly buckets records by the month of their anchor date.
// Records without a parsed date are skipped.
func AggregateMonthly(records []ClassifiedRecord) []MonthlyEntry {
	b := newBuckets[monthKey]()
	for _, rec := range records {
		if rec.ParsedDate == nil {
			continue
		}
		b.get(monthOf(*rec.ParsedDate)).add(rec.IsPotential, rec.IsConverted, rec.DealAmount)
	}

	out := make([]MonthlyEntry, 0, len(b.keys))
	b.each(func(k monthKey, t *tally) {
		out = append(out, MonthlyEntry{
			Label:          k.label(),
			Year:           k.year,
			Month:          int(k.month),
			Total:          t.total,
			NewCustomers:   t.potential,
			CompletedDeals: t.converted,
			TotalAmount:    t.amount,
			ConversionRate: percent(t.converted, t.potential),
			AverageAmount:  average(t.amount, t.converted),
		})
	})
	slices.SortStableFunc(out, func(a, b MonthlyEntry) int {
		return monthKey{a.Year, time.Month(a.Month)}.compare(monthKey{b.Year, time.Month(b.Month)})
	})
	return out
}

// specialistName reads 主聽力師, then 聽力師, then falls back to the unknown label.
func specialistName(rec Record) string {
	for _, label := range []string{labelLeadSpecialist, labelSpecialist} {
		if v := strings.TrimSpace(rec.Value(label)); v != "" {
			return v
		}
	}
	return unknownSpecialistName
}

// AggregateSpecialists keeps the order in which specialists first appear.
func AggregateSpecialists(records []ClassifiedRecord) []SpecialistEntry {
	b := newBuckets[string]()
	for _, rec := range records {
		b.get(specialistName(rec.Record)).add(rec.IsPotential, rec.IsConverted, rec.DealAmount)
	}

	out := make([]SpecialistEntry, 0, len(b.keys))
	b.each(func(name string, t *tally) {
		out = append(out, SpecialistEntry{
			Name:               name,
			Total:              t.total,
			PotentialCustomers: t.potential,
			Orders:             t.converted,
			Revenue:            t.amount,
			ConversionRate:     percent(t.converted, t.potential),
		})
	})
	return out
}

// AggregateClinics groups by referring clinic, busiest first.
// Rows with no clinic name are left out.
func AggregateClinics(records []ClassifiedRecord) []ClinicEntry {
	b := newBuckets[string]()
	for _, rec := range records {
		name := strings.TrimSpace(rec.Value(labelClinic))
		if name == "" {
			continue
		}
		b.get(name).add(rec.IsPotential, rec.ClinicConverted, rec.DealAmount)
	}

	out := make([]ClinicEntry, 0, len(b.keys))
	b.each(func(name string, t *tally) {
		out = append(out, ClinicEntry{
			Name:           name,
			Total:          t.total,
			Potential:      t.potential,
			Converted:      t.converted,
			TotalAmount:    t.amount,
			ConversionRate: percent(t.converted, t.total),
		})
	})
	slices.SortStableFunc(out, func(a, b ClinicEntry) int { return cmp.Compare(b.Total, a.Total) })
	return out
}

// AggregateStores groups by the store that brought the customer in.
// Without a store column the result is empty.
func AggregateStores(records []ClassifiedRecord, fields FieldMap) []StoreEntry {
	label, ok := fields.Label(FieldStore)
	if !ok {
		return []StoreEntry{}
	}

	b := newBuckets[string]()
	for _, rec := range records {
		name := strings.TrimSpace(rec.Value(label))
		if name == "" || name == storePlaceholder {
			continue
		}
		b.get(name).add(rec.IsPotential, rec.IsConverted, rec.DealAmount)
	}

	out := make([]StoreEntry, 0, len(b.keys))
	b.each(func(name string, t *tally) {
		out = append(out, StoreEntry{Name: name, Total: t.total, Potential: t.potential})
	})
	slices.SortStableFunc(out, func(a, b StoreEntry) int { return cmp.Compare(b.Total, a.Total) })
	return out
}

// serviceDate returns the date driving the campaign dimension.
// 服務日期 is preferred, then 初次到店, then the anchor date.
func serviceDate(rec Record) (time.Time, bool) {
	for _, label := range []string{labelServiceDate, labelFirstVisit} {
		text := strings.TrimSpace(rec.Value(label))
		if text == "" {
			continue
		}
		if t, ok := ParseDate(text); ok {
			return t, true
		}
	}
	if rec.ParsedDate != nil {
		return *rec.ParsedDate, true
	}
	return time.Time{}, false
}

// serviceDateText is the raw service-date text reported in the span: the first
// non-empty of 服務日期, 初次到店 and the anchor column, parseable or not.
func serviceDateText(rec Record, fields FieldMap) string {
	for _, label := range []string{labelServiceDate, labelFirstVisit, fields[FieldDate]} {
		if text := strings.TrimSpace(rec.Value(label)); text != "" {
			return text
		}
	}
	return ""
}

// sourceText reads the customer-source cell through the resolved label,
// which may carry a line break.
func sourceText(rec Record, fields FieldMap) string {
	if label, ok := fields.Label(FieldSource); ok {
		return rec.Value(label)
	}
	return rec.Value(labelCustomerSource)
}

// AggregateSourceMonths is the hearing-screening campaign funnel by service month.
func AggregateSourceMonths(records []ClassifiedRecord, fields FieldMap) []SourceMonthEntry {
	b := newBuckets[monthKey]()
	for _, rec := range records {
		if !strings.Contains(sourceText(rec.Record, fields), screeningSource) {
			continue
		}
		t, ok := serviceDate(rec.Record)
		if !ok {
			continue
		}
		b.get(monthOf(t)).add(rec.IsPotential, rec.IsConverted, rec.DealAmount)
	}

	out := make([]SourceMonthEntry, 0, len(b.keys))
	b.each(func(k monthKey, t *tally) {
		out = append(out, SourceMonthEntry{
			Label:          k.label(),
			Year:           k.year,
			Month:          int(k.month),
			Total:          t.total,
			Potential:      t.potential,
			Converted:      t.converted,
			TotalAmount:    t.amount,
			ConversionRate: percent(t.converted, t.total),
		})
	})
	slices.SortStableFunc(out, func(a, b SourceMonthEntry) int {
		return monthKey{a.Year, time.Month(a.Month)}.compare(monthKey{b.Year, time.Month(b.Month)})
	})
	return out
}
