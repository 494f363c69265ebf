package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/moves-management/moves-upload/sheets"
)

func sheetToTSV(f io.Writer, sheet *sheets.Sheet) error {
	if len(sheet.Columns) == 0 {
		return fmt.Errorf("sheet %v has no columns", sheet.ID)
	}

	columns := make([]sheets.Column, len(sheet.Columns))
	copy(columns, sheet.Columns)

	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].Index < columns[j].Index
	})

	// ... header
	header := []string{}
	for _, c := range columns {
		header = append(header, clean(c.Title))
	}

	// ... records
	records := [][]string{}
	for _, row := range sheet.Rows {
		if row.IsBlank() {
			continue
		}

		record := []string{}
		for _, c := range columns {
			record = append(record, format(row.Cell(c.ID)))
		}

		records = append(records, record)
	}

	// ... write to file
	w := csv.NewWriter(f)
	w.Comma = '\t'

	w.Write(header)
	for _, record := range records {
		w.Write(record)
	}

	w.Flush()

	return w.Error()
}

func format(v any) string {
	switch value := v.(type) {
	case nil:
		return ""

	case string:
		return clean(value)

	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)

	default:
		return clean(fmt.Sprintf("%v", value))
	}
}
