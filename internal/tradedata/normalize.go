package tradedata

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateFormats are tried in order; the first successful parse wins.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"2006年01月02日",
}

const canonicalDateFormat = "2006-01-02"

// NormalizeDate converts a raw date cell to the canonical YYYY-MM-DD form.
// Unparseable non-empty values are passed through unchanged so the source
// literal stays visible to operators; the store's date mapping then rejects
// the document and the rejection is accounted for by the bulk loader.
func NormalizeDate(v any) *string {
	s, ok := stringifyCell(v)
	if !ok {
		return nil
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			formatted := t.Format(canonicalDateFormat)
			return &formatted
		}
	}
	return &s
}

// NormalizeNumeric converts a raw cell to a float64, treating the usual
// spreadsheet missing-value spellings as null. It never fails: any value that
// does not parse degrades to null.
func NormalizeNumeric(v any) *float64 {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(val) {
			return nil
		}
		return &val
	case float32:
		f := float64(val)
		if math.IsNaN(f) {
			return nil
		}
		return &f
	case int:
		f := float64(val)
		return &f
	case int64:
		f := float64(val)
		return &f
	}

	s, ok := stringifyCell(v)
	if !ok {
		return nil
	}
	switch s {
	case "nan", "NaN", "None":
		return nil
	}
	// Thousands separators are common in exported spreadsheets.
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// TruncateCode normalizes a classification code to its 6-character prefix.
// Shorter codes pass through unchanged.
func TruncateCode(v any) *string {
	s, ok := stringifyCell(v)
	if !ok {
		return nil
	}
	runes := []rune(s)
	if len(runes) > 6 {
		s = string(runes[:6])
	}
	return &s
}

// NormalizeString stringifies a raw cell, mapping blank cells and
// missing-value markers to null.
func NormalizeString(v any) *string {
	s, ok := stringifyCell(v)
	if !ok {
		return nil
	}
	return &s
}

// stringifyCell renders a raw cell value as a trimmed string. The second
// return is false for missing values (nil, blank string, float NaN).
func stringifyCell(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return "", false
		}
		return val, true
	case float64:
		if math.IsNaN(val) {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		f := float64(val)
		if math.IsNaN(f) {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}
