package report

import (
	"encoding/json"
	"time"
)

// DefaultPTAThreshold is the audiometric cutoff (dB) used when a caller has no preference.
const DefaultPTAThreshold = 40.0

// Params are the caller-chosen inputs of one analysis run.
type Params struct {
	Window       DateRange `json:"window"`
	PTAThreshold float64   `json:"ptaThreshold"`
	// IncludeRecords exposes the row-level classification in the result.
	IncludeRecords bool `json:"includeRecords,omitempty"`
}

// Number is a parsed numeric cell. Valid is false when the text held no number,
// which is distinct from zero and never takes part in comparisons or sums.
type Number struct {
	Value float64
	Valid bool
}

// Valid numbers marshal as plain JSON numbers; invalid ones as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// GreaterThan reports n > threshold; an invalid number is never greater.
func (n Number) GreaterThan(threshold float64) bool {
	return n.Valid && n.Value > threshold
}

// Record is one data row keyed by the header labels actually present in the sheet.
type Record struct {
	// Row is the 1-based data row index (header excluded).
	Row   int               `json:"row"`
	Cells map[string]string `json:"cells"`
	// ParsedDate is the anchor date, nil when the text could not be parsed.
	ParsedDate *time.Time `json:"parsedDate,omitempty"`
}

// Value returns the raw text under a header label ("" when absent).
func (r Record) Value(label string) string {
	return r.Cells[label]
}

// ClassifiedRecord is a Record plus the per-row decisions every dimension reuses.
type ClassifiedRecord struct {
	Record
	LeftPTA     Number `json:"leftPta"`
	RightPTA    Number `json:"rightPta"`
	IsPotential bool   `json:"isPotential"`
	IsConverted bool   `json:"isConverted"`
	// ClinicConverted applies the referral-clinic marker set, which omits 是否有借機.
	ClinicConverted bool   `json:"clinicConverted"`
	DealAmount      Number `json:"dealAmount"`
}

// MonthlyEntry is one "{year}年{month}月" bucket of the trend.
type MonthlyEntry struct {
	Label          string  `json:"month"`
	Year           int     `json:"year"`
	Month          int     `json:"monthNumber"`
	Total          int     `json:"total"`
	NewCustomers   int     `json:"newCustomers"`
	CompletedDeals int     `json:"completedDeals"`
	TotalAmount    float64 `json:"totalAmount"`
	ConversionRate float64 `json:"conversionRate"`
	AverageAmount  float64 `json:"averageAmount"`
}

// SpecialistEntry summarises one audiologist/salesperson.
// JSON keys follow the labels used on the sales dashboard.
type SpecialistEntry struct {
	Name               string  `json:"name"`
	Total              int     `json:"total"`
	PotentialCustomers int     `json:"潛力客戶數"`
	Orders             int     `json:"訂單數量"`
	Revenue            float64 `json:"當季業績累積"`
	ConversionRate     float64 `json:"conversionRate"`
}

// ClinicEntry is the funnel of one referring clinic.
type ClinicEntry struct {
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	Potential      int     `json:"potential"`
	Converted      int     `json:"converted"`
	TotalAmount    float64 `json:"totalAmount"`
	ConversionRate float64 `json:"conversionRate"`
}

// StoreEntry counts walk-ins brought by one store.
type StoreEntry struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Potential int    `json:"potential"`
}

// SourceMonthEntry is one month of the hearing-screening campaign funnel.
type SourceMonthEntry struct {
	Label          string  `json:"month"`
	Year           int     `json:"year"`
	Month          int     `json:"monthNumber"`
	Total          int     `json:"total"`
	Potential      int     `json:"potential"`
	Converted      int     `json:"converted"`
	TotalAmount    float64 `json:"totalAmount"`
	ConversionRate float64 `json:"conversionRate"`
}

// Totals are the global counters of a run.
type Totals struct {
	RecordCount           int     `json:"records"`
	TotalPotential        int     `json:"totalPotential"`
	TotalConverted        int     `json:"totalConverted"`
	TotalAmount           float64 `json:"totalAmount"`
	OverallConversionRate float64 `json:"overallConversionRate"`
}

// Analysis is the immutable result of one run.
type Analysis struct {
	Window       DateRange `json:"window"`
	PTAThreshold float64   `json:"ptaThreshold"`
	Fields       FieldMap  `json:"fields"`

	Totals
	// Earliest and Latest are the service-date text of the first and last
	// filtered rows in sheet order, not the min/max date.
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`

	Monthly       []MonthlyEntry     `json:"monthly"`
	BySpecialist  []SpecialistEntry  `json:"bySpecialist"`
	ByClinic      []ClinicEntry      `json:"byClinic"`
	ByStore       []StoreEntry       `json:"byStore"`
	BySourceMonth []SourceMonthEntry `json:"bySourceMonth"`

	Records []ClassifiedRecord `json:"rows,omitempty"`
}
