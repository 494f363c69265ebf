package run

import (
	"context"
	"strings"

	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/sheets"
	"github.com/moves-management/moves-upload/transform"
)

// Swap is the result of a 'last updated' timestamp swap.
type Swap struct {
	SheetID  string
	Column   string
	Today    string
	Previous any
}

// SwapTimestamp moves the current 'last updated' value to the 'previous' row and writes today's date to the
// 'last updated' row, in a single update.
func SwapTimestamp(ctx context.Context, rc *RunContext) (Swap, error) {
	if err := rc.Config.CanUpdateDate(rc.Location); err != nil {
		return Swap{}, err
	}

	u := rc.Config.DateUpdate
	sheetID := strings.TrimSpace(u.SheetID)

	sheet, err := rc.Service.GetSheet(ctx, sheetID)
	if err != nil {
		return Swap{}, errs.RemoteServiceError("date-update", err)
	}

	column, ok := sheet.Column(u.ColumnName)
	if !ok {
		return Swap{}, errs.ConfigError("date-update", "sheet %v has no '%v' column", sheetID, u.ColumnName)
	}

	target, ok := sheet.Row(u.TargetRowID)
	if !ok {
		return Swap{}, errs.ConfigError("date-update", "sheet %v has no row %v", sheetID, u.TargetRowID)
	}

	if _, ok := sheet.Row(u.OldRowID); !ok {
		return Swap{}, errs.ConfigError("date-update", "sheet %v has no row %v", sheetID, u.OldRowID)
	}

	previous := target.Cell(column.ID)
	if previous == nil {
		previous = ""
	}

	today := rc.now().Format(transform.DateFormat)
	rows := []sheets.Row{
		{ID: u.TargetRowID, Cells: []sheets.Cell{{ColumnID: column.ID, Value: today}}},
		{ID: u.OldRowID, Cells: []sheets.Cell{{ColumnID: column.ID, Value: previous}}},
	}

	if err := rc.Service.UpdateRows(ctx, sheetID, rows); err != nil {
		return Swap{}, errs.RemoteServiceError("date-update", err)
	}

	rc.progress("last updated date set to %v (previous %v)", today, previous)

	return Swap{
		SheetID:  sheetID,
		Column:   column.Title,
		Today:    today,
		Previous: previous,
	}, nil
}
