package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateRange is an inclusive window of calendar months.
type DateRange struct {
	StartYear  int `json:"startYear" validate:"min=1,max=9999"`
	StartMonth int `json:"startMonth" validate:"min=1,max=12"`
	EndYear    int `json:"endYear" validate:"min=1,max=9999"`
	EndMonth   int `json:"endMonth" validate:"min=1,max=12"`
}

var validate = validator.New()

// Validate checks field ranges and ordering. Analyze does not call it: an
// inverted window simply matches nothing. Request boundaries should.
func (r DateRange) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid date window: %w", err)
	}
	if r.StartYear*12+r.StartMonth > r.EndYear*12+r.EndMonth {
		return fmt.Errorf("invalid date window: start %04d-%02d is after end %04d-%02d",
			r.StartYear, r.StartMonth, r.EndYear, r.EndMonth)
	}
	return nil
}

// Bounds returns the first instant of the start month and the last instant of the end month.
func (r DateRange) Bounds() (time.Time, time.Time) {
	start := SnapToMonthStart(time.Date(r.StartYear, time.Month(r.StartMonth), 1, 0, 0, 0, 0, time.UTC))
	end := SnapToMonthEnd(time.Date(r.EndYear, time.Month(r.EndMonth), 1, 0, 0, 0, 0, time.UTC))
	return start, end
}

// Contains reports whether t falls inside the window (inclusive).
func (r DateRange) Contains(t time.Time) bool {
	start, end := r.Bounds()
	return !t.Before(start) && !t.After(end)
}

// Months returns the start of every month in the window.
func (r DateRange) Months() []time.Time {
	var months []time.Time
	start, end := r.Bounds()
	for current := start; current.Before(end); current = current.AddDate(0, 1, 0) {
		months = append(months, current)
	}
	return months
}

// WholeYear is the window covering January through December of year.
func WholeYear(year int) DateRange {
	return DateRange{StartYear: year, StartMonth: 1, EndYear: year, EndMonth: 12}
}

// ParseMonth parses "YYYY-MM" (or "YYYY/MM").
func ParseMonth(s string) (int, int, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	return year, month, nil
}

// ParseDateRange builds a window from two "YYYY-MM" strings.
func ParseDateRange(from, to string) (DateRange, error) {
	sy, sm, err := ParseMonth(from)
	if err != nil {
		return DateRange{}, err
	}
	ey, em, err := ParseMonth(to)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{StartYear: sy, StartMonth: sm, EndYear: ey, EndMonth: em}, nil
}

// SnapToMonthStart normalizes a timestamp to 00:00 on the first of its month.
func SnapToMonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SnapToMonthEnd normalizes a timestamp to the last nanosecond of its month.
func SnapToMonthEnd(t time.Time) time.Time {
	nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return nextMonth.Add(-time.Nanosecond)
}

// MonthLabel renders the dashboard bucket key, e.g. "2024年3月".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%d年%d月", year, int(month))
}

// FilterRecords keeps records whose anchor date parsed and falls in the window.
// Input order is preserved.
func FilterRecords(records []ClassifiedRecord, window DateRange) []ClassifiedRecord {
	start, end := window.Bounds()
	out := make([]ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		if rec.ParsedDate == nil {
			continue
		}
		if rec.ParsedDate.Before(start) || rec.ParsedDate.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
