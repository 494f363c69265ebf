// Package sheets defines the remote spreadsheet service used by the upload pipeline and implements it for
// Smartsheet (REST API 2.0) and Google Sheets (API v4).
//
// Sheets, columns and rows are identified by the service's own opaque ids. Column titles are resolved to
// column ids against a freshly fetched sheet before every write.
package sheets

import (
	"context"
	"fmt"

	"github.com/moves-management/moves-upload/records"
)

// Column types reported by the remote service. Only DATE columns get special handling.
const (
	TypeTextNumber = "TEXT_NUMBER"
	TypeDate       = "DATE"
)

// Service is the minimal remote spreadsheet API needed to clear, append and update rows.
type Service interface {
	GetSheet(ctx context.Context, sheetID string) (*Sheet, error)
	DeleteRows(ctx context.Context, sheetID string, rows []int64) error
	AddRows(ctx context.Context, sheetID string, rows []Row) error
	UpdateRows(ctx context.Context, sheetID string, rows []Row) error
}

type Sheet struct {
	ID      string
	Name    string
	Columns []Column
	Rows    []Row
}

type Column struct {
	ID      int64
	Index   int
	Title   string
	Type    string
	Primary bool
}

type Row struct {
	ID        int64
	RowNumber int
	ToBottom  bool
	Cells     []Cell
}

// Cell is a value bound to a column. Value is a string, a number, a bool or nil.
type Cell struct {
	ColumnID int64
	Value    any
}

// Index returns the sheet's column index keyed by column title.
func (s *Sheet) Index() records.Index[Column] {
	return records.NewIndex(s.Columns, func(c Column) string { return c.Title })
}

// Column returns the column with a matching title, ignoring case and whitespace.
func (s *Sheet) Column(title string) (Column, bool) {
	return s.Index().Resolve(title)
}

// Row returns the row with the row id.
func (s *Sheet) Row(id int64) (Row, bool) {
	for _, r := range s.Rows {
		if r.ID == id {
			return r, true
		}
	}

	return Row{}, false
}

// Cell returns the value of the row's cell in the column, or nil.
func (r Row) Cell(columnID int64) any {
	for _, c := range r.Cells {
		if c.ColumnID == columnID {
			return c.Value
		}
	}

	return nil
}

// IsBlank returns true if no cell in the row has a non-empty value.
func (r Row) IsBlank() bool {
	for _, c := range r.Cells {
		if !records.IsBlank(c.Value) {
			return false
		}
	}

	return true
}

func (s *Sheet) String() string {
	return fmt.Sprintf("%v (%v)", s.Name, s.ID)
}
