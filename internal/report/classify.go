package report

import "strings"

// Header labels whose "是"/"TRUE" value marks a row as a closed deal.
var convertedMarkers = []string{"是否成交", "是否借機", "是否有借機", "成交"}

// The referral-clinic report never checked 是否有借機. Kept as-is rather than
// unified with convertedMarkers; see DESIGN.md.
var clinicConvertedMarkers = []string{"是否成交", "是否借機", "成交"}

var (
	yesValues        = []string{"是", "TRUE"}
	closedStatuses   = []string{"成交", "已成交"}
	dealAmountLabels = []string{"成交金額", "金額", "價格", "營業額"}
)

// Classifier applies the potential/converted rules with a fixed threshold.
type Classifier struct {
	fields    FieldMap
	threshold float64
}

// NewClassifier binds the resolved fields and PTA threshold for one run.
func NewClassifier(fields FieldMap, threshold float64) Classifier {
	return Classifier{fields: fields, threshold: threshold}
}

// Classify derives the per-row decisions. It never fails: absent or
// unparseable cells simply do not match.
func (c Classifier) Classify(rec Record) ClassifiedRecord {
	out := ClassifiedRecord{Record: rec}

	if label, ok := c.fields.Label(FieldLeftEar); ok {
		out.LeftPTA = ParseNumber(rec.Value(label))
	}
	if label, ok := c.fields.Label(FieldRightEar); ok {
		out.RightPTA = ParseNumber(rec.Value(label))
	}

	statusClosed := isOneOf(rec.Value(labelStatus), closedStatuses)
	out.IsConverted = statusClosed || anyMarkerYes(rec, convertedMarkers)
	out.ClinicConverted = statusClosed || anyMarkerYes(rec, clinicConvertedMarkers)

	out.IsPotential = out.LeftPTA.GreaterThan(c.threshold) ||
		out.RightPTA.GreaterThan(c.threshold) ||
		out.IsConverted

	out.DealAmount = ParseNumber(dealAmountText(rec))
	return out
}

// dealAmountText returns the first non-empty amount synonym.
func dealAmountText(rec Record) string {
	for _, label := range dealAmountLabels {
		if v := strings.TrimSpace(rec.Value(label)); v != "" {
			return v
		}
	}
	return ""
}

func anyMarkerYes(rec Record, markers []string) bool {
	for _, label := range markers {
		if isOneOf(rec.Value(label), yesValues) {
			return true
		}
	}
	return false
}

// isOneOf reports whether the cell text equals one of set exactly.
func isOneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

// countsAmount reports whether a row's deal amount enters monetary totals.
func countsAmount(converted bool, amount Number) bool {
	return converted && amount.GreaterThan(0)
}
