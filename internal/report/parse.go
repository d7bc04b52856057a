package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ymdPattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	mdyPattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
	cjkPattern = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日?`)
)

// fallbackLayouts are tried after the structural patterns, in order.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006.01.02",
	"2006.1.2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Mon Jan 2 2006",
	"Mon, 02 Jan 2006",
	"20060102",
}

// ParseDate parses spreadsheet date text to a UTC calendar date.
// Patterns: YYYY[-/]MM[-/]DD, MM[-/]DD[-/]YYYY, YYYY年MM月DD(日), then the fallback layouts.
// Trailing text after a structural match (e.g. a time of day) is ignored.
// Invalid calendar dates such as 2024/02/30 are rejected.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		return calendarDate(m[1], m[2], m[3])
	}
	if m := mdyPattern.FindStringSubmatch(s); m != nil {
		return calendarDate(m[3], m[1], m[2])
	}
	if m := cjkPattern.FindStringSubmatch(s); m != nil {
		return calendarDate(m[1], m[2], m[3])
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func calendarDate(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// ParseNumber strips everything but digits and '.', then parses the longest
// valid decimal prefix: "NT$152,000.00" → 152000, "1.2.3" → 1.2.
// Text with no digits yields an invalid Number.
func ParseNumber(raw string) Number {
	var sb strings.Builder
	seenDot := false
	digits := 0
scan:
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
			digits++
		case r == '.':
			if seenDot {
				// A second point ends the number.
				break scan
			}
			seenDot = true
			sb.WriteRune(r)
		}
	}
	if digits == 0 {
		return Number{}
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}
