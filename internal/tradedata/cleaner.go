package tradedata

import (
	"log/slog"
)

// CleanRows maps raw spreadsheet rows to canonical records.
//
// Rows whose customs-code cell repeats the column label (exports often embed
// their header every page) are skipped. Every declared field is set on every
// emitted record: present columns go through the field-specific normalizer,
// absent columns become explicit nulls. Cell-level data problems never abort
// a row.
func CleanRows(rows []RawRow, columns []string) []CanonicalRecord {
	warnMissingColumns(columns)

	records := make([]CanonicalRecord, 0, len(rows))
	for _, row := range rows {
		if isHeaderRepeat(row) {
			continue
		}

		var record CanonicalRecord
		for _, spec := range fieldSpecs {
			raw, present := row[spec.name]
			if !present {
				continue // struct zero value is already the explicit null
			}
			switch spec.kind {
			case kindCode:
				*spec.str(&record) = TruncateCode(raw)
			case kindDate:
				*spec.str(&record) = NormalizeDate(raw)
			case kindFloat:
				*spec.num(&record) = NormalizeNumeric(raw)
			default:
				*spec.str(&record) = NormalizeString(raw)
			}
		}
		records = append(records, record)
	}
	return records
}

// isHeaderRepeat reports whether the row is a repeated header row.
func isHeaderRepeat(row RawRow) bool {
	v, ok := row[FieldCustomsCode]
	if !ok {
		return false
	}
	s, ok := v.(string)
	return ok && s == FieldCustomsCode
}

// warnMissingColumns logs once per import when required columns are entirely
// absent from the source sheet. Non-fatal: the fields are populated as nulls.
func warnMissingColumns(columns []string) {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}
	var missing []string
	for _, spec := range fieldSpecs {
		if !present[spec.name] {
			missing = append(missing, spec.name)
		}
	}
	if len(missing) > 0 {
		slog.Warn("source sheet is missing required columns", "columns", missing)
	}
}
