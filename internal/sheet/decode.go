package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/opencustoms/tradeflow/internal/tradedata"
)

// Decode reads the first sheet of an xlsx workbook into raw rows plus the
// declared column names (the first row). Cell values come back as strings;
// blank cells and cells missing from short rows are carried as nil so they
// index as nulls, with every declared column present on every row.
func Decode(r io.Reader) ([]tradedata.RawRow, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns := cells[0]
	rows := make([]tradedata.RawRow, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(tradedata.RawRow, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(line) && line[i] != "" {
				row[col] = line[i]
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows, columns, nil
}
