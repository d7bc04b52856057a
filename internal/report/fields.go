package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDateColumn is returned when no header can anchor the analysis in time.
var ErrNoDateColumn = errors.New("no recognizable date column")

// Field is a canonical semantic role a sheet column can play.
type Field string

const (
	FieldDate        Field = "date"
	FieldStatus      Field = "status"
	FieldAmount      Field = "amount"
	FieldLeftEar     Field = "leftEarThreshold"
	FieldRightEar    Field = "rightEarThreshold"
	FieldSpecialist  Field = "specialist"
	FieldClinic      Field = "clinic"
	FieldStore       Field = "store"
	FieldSource      Field = "source"
	FieldServiceDate Field = "serviceDate"
)

// Header labels read directly by the classification and aggregation rules.
const (
	labelFirstVisit       = "初次到店"
	labelServiceDate      = "服務日期"
	labelLeadSpecialist   = "主聽力師"
	labelSpecialist       = "聽力師"
	labelClinic           = "診所名稱"
	labelCustomerSource   = "顧客來源"
	labelStatus           = "狀態"
	unknownSpecialistName = "未知業務員"
)

// FieldMap maps a canonical field to the header label present in the sheet.
type FieldMap map[Field]string

// Label returns the header label for f and whether the field was resolved.
func (m FieldMap) Label(f Field) (string, bool) {
	label, ok := m[f]
	return label, ok
}

type fieldRule struct {
	field Field
	match func(header string) bool
	// candidates resolve by candidate priority instead of header position.
	candidates []string
}

// fieldRules is evaluated once per report. Substring rules take the first
// matching header left-to-right; candidate rules take the first candidate present.
var fieldRules = []fieldRule{
	{field: FieldDate, match: containsAny(labelFirstVisit, "日期", "Date")},
	{field: FieldStatus, match: containsAny("成交", "狀態", "Status")},
	{field: FieldAmount, match: containsAny("金額", "Amount", "價格")},
	{field: FieldLeftEar, match: earMarker("左耳")},
	{field: FieldRightEar, match: earMarker("右耳")},
	{field: FieldStore, match: containsAll("門市", "自帶")},
	{field: FieldSource, match: func(h string) bool { return stripLineBreaks(h) == labelCustomerSource }},
	{field: FieldSpecialist, candidates: []string{labelLeadSpecialist, labelSpecialist}},
	{field: FieldClinic, candidates: []string{labelClinic}},
	{field: FieldServiceDate, candidates: []string{labelServiceDate, labelFirstVisit}},
}

// ResolveFields maps the header row to canonical fields.
// The returned map is populated even when the date field is missing, in which
// case the error wraps ErrNoDateColumn.
func ResolveFields(header []string) (FieldMap, error) {
	fields := make(FieldMap)
	for _, rule := range fieldRules {
		if label, ok := rule.resolve(header); ok {
			fields[rule.field] = label
		}
	}

	if _, ok := fields[FieldDate]; !ok {
		return fields, fmt.Errorf("%w in header [%s]", ErrNoDateColumn, strings.Join(header, ", "))
	}
	return fields, nil
}

func (r fieldRule) resolve(header []string) (string, bool) {
	if r.match != nil {
		for _, h := range header {
			if r.match(h) {
				return h, true
			}
		}
		return "", false
	}
	for _, c := range r.candidates {
		for _, h := range header {
			if h == c {
				return h, true
			}
		}
	}
	return "", false
}

func containsAny(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
}

func containsAll(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if !strings.Contains(h, s) {
				return false
			}
		}
		return true
	}
}

// earMarker matches "左耳PTA", "右耳 pta (dB)" and similar.
func earMarker(ear string) func(string) bool {
	return func(h string) bool {
		return strings.Contains(h, ear) && strings.Contains(strings.ToUpper(h), "PTA")
	}
}

func stripLineBreaks(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// BuildRecords materialises data rows keyed by header label. Duplicate labels
// keep the leftmost column. Each record's anchor date is parsed once here.
func BuildRecords(rows [][]string, header []string, fields FieldMap) []Record {
	dateLabel := fields[FieldDate]
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		cells := make(map[string]string, len(header))
		for col, label := range header {
			if _, dup := cells[label]; dup {
				continue
			}
			if col < len(row) {
				cells[label] = row[col]
			} else {
				cells[label] = ""
			}
		}

		rec := Record{Row: i + 1, Cells: cells}
		if t, ok := ParseDate(cells[dateLabel]); ok {
			rec.ParsedDate = &t
		}
		records = append(records, rec)
	}
	return records
}

// DescribeHeader reports which canonical fields a header row resolves to,
// and whether the row can anchor an analysis.
func DescribeHeader(header []string) (FieldMap, bool) {
	fields, err := ResolveFields(header)
	return fields, err == nil
}
