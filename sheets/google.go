package sheets

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/moves-management/moves-upload/errs"
)

// Google implements Service over Google Sheets. A sheet ID is '<spreadsheet ID>/<worksheet title>', row 1 of
// the worksheet is the header, column IDs are zero-based column indices and row IDs are 1-based row numbers.
type Google struct {
	google *gsheets.Service
}

// NewGoogle returns a Google Sheets client that uses an authorised HTTP client.
func NewGoogle(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*Google, error) {
	options := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)

	google, err := gsheets.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	return &Google{
		google: google,
	}, nil
}

// GoogleSheetID returns the sheet ID for a worksheet in a spreadsheet. The spreadsheet may be either the ID
// or the spreadsheet URL.
func GoogleSheetID(spreadsheet string, worksheet string) string {
	id := strings.TrimSpace(spreadsheet)
	if match := regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`).FindStringSubmatch(id); len(match) > 1 {
		id = match[1]
	}

	return fmt.Sprintf("%v/%v", id, strings.TrimSpace(worksheet))
}

func (g *Google) GetSheet(ctx context.Context, sheetID string) (*Sheet, error) {
	spreadsheet, worksheet, err := g.worksheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	title := worksheet.Properties.Title
	response, err := g.google.Spreadsheets.Values.Get(spreadsheet.SpreadsheetId, quote(title)).Context(ctx).Do()
	if err != nil {
		return nil, errs.RemoteServiceError("get-sheet", fmt.Errorf("unable to retrieve data from sheet (%w)", err))
	}

	sheet := Sheet{
		ID:      sheetID,
		Name:    title,
		Columns: []Column{},
		Rows:    []Row{},
	}

	if len(response.Values) == 0 {
		return &sheet, nil
	}

	for i, v := range response.Values[0] {
		sheet.Columns = append(sheet.Columns, Column{
			ID:    int64(i),
			Index: i,
			Title: clean(fmt.Sprintf("%v", v)),
			Type:  TypeTextNumber,
		})
	}

	for i, values := range response.Values[1:] {
		row := Row{
			ID:        int64(i + 2),
			RowNumber: i + 2,
			Cells:     make([]Cell, 0, len(values)),
		}

		for j, v := range values {
			row.Cells = append(row.Cells, Cell{ColumnID: int64(j), Value: v})
		}

		sheet.Rows = append(sheet.Rows, row)
	}

	return &sheet, nil
}

// DeleteRows deletes the rows as contiguous ranges, bottom first so that the remaining row numbers are not
// shifted by the preceding deletes.
func (g *Google) DeleteRows(ctx context.Context, sheetID string, rows []int64) error {
	if len(rows) == 0 {
		return nil
	}

	spreadsheet, worksheet, err := g.worksheet(ctx, sheetID)
	if err != nil {
		return err
	}

	for _, r := range rows {
		if r < 2 {
			return errs.RemoteServiceError("delete-rows", fmt.Errorf("invalid row %v", r))
		}
	}

	rq := gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{},
	}

	for _, span := range spans(rows) {
		rq.Requests = append(rq.Requests, &gsheets.Request{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    worksheet.Properties.SheetId,
					Dimension:  "ROWS",
					StartIndex: span[0] - 1,
					EndIndex:   span[1],
				},
			},
		})
	}

	if _, err := g.google.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId, &rq).Context(ctx).Do(); err != nil {
		return errs.RemoteServiceError("delete-rows", fmt.Errorf("error deleting rows from worksheet (%w)", err))
	}

	return nil
}

func (g *Google) AddRows(ctx context.Context, sheetID string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	spreadsheet, worksheet, err := g.worksheet(ctx, sheetID)
	if err != nil {
		return err
	}

	cols := 0
	for _, r := range rows {
		for _, c := range r.Cells {
			if int(c.ColumnID) >= cols {
				cols = int(c.ColumnID) + 1
			}
		}
	}

	values := gsheets.ValueRange{
		Values: [][]interface{}{},
	}

	for _, r := range rows {
		row := make([]interface{}, cols)
		for i := range row {
			row[i] = ""
		}

		for _, c := range r.Cells {
			if c.ColumnID >= 0 && c.Value != nil {
				row[c.ColumnID] = c.Value
			}
		}

		values.Values = append(values.Values, row)
	}

	if _, err := g.google.Spreadsheets.Values.Append(spreadsheet.SpreadsheetId, quote(worksheet.Properties.Title), &values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return errs.RemoteServiceError("add-rows", fmt.Errorf("error appending rows to worksheet (%w)", err))
	}

	return nil
}

func (g *Google) UpdateRows(ctx context.Context, sheetID string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	spreadsheet, worksheet, err := g.worksheet(ctx, sheetID)
	if err != nil {
		return err
	}

	title := quote(worksheet.Properties.Title)
	rq := gsheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             []*gsheets.ValueRange{},
	}

	for _, r := range rows {
		for _, c := range r.Cells {
			v := c.Value
			if v == nil {
				v = ""
			}

			rq.Data = append(rq.Data, &gsheets.ValueRange{
				Range:  fmt.Sprintf("%v!%v%v", title, columnLetter(int(c.ColumnID)), r.ID),
				Values: [][]interface{}{{v}},
			})
		}
	}

	if _, err := g.google.Spreadsheets.Values.BatchUpdate(spreadsheet.SpreadsheetId, &rq).Context(ctx).Do(); err != nil {
		return errs.RemoteServiceError("update-rows", fmt.Errorf("error updating worksheet (%w)", err))
	}

	return nil
}

func (g *Google) worksheet(ctx context.Context, sheetID string) (*gsheets.Spreadsheet, *gsheets.Sheet, error) {
	id, title, ok := strings.Cut(strings.TrimSpace(sheetID), "/")
	if !ok || strings.TrimSpace(id) == "" || strings.TrimSpace(title) == "" {
		return nil, nil, errs.RemoteServiceError("sheet-id", errs.ConfigError("sheet-id", "invalid Google sheet ID '%v' - expected '<spreadsheet>/<worksheet>'", sheetID))
	}

	spreadsheet, err := g.google.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return nil, nil, errs.RemoteServiceError("get-spreadsheet", fmt.Errorf("failed to fetch spreadsheet (%w)", err))
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && normalise(sheet.Properties.Title) == normalise(title) {
			return spreadsheet, sheet, nil
		}
	}

	return nil, nil, errs.RemoteServiceError("sheet-id", errs.ConfigError("sheet-id", "unable to identify worksheet '%v'", title))
}

// spans groups row numbers into contiguous [first,last] ranges, ordered from the bottom of the sheet up.
func spans(rows []int64) [][2]int64 {
	list := append([]int64(nil), rows...)
	sort.Slice(list, func(i, j int) bool { return list[i] > list[j] })

	spans := [][2]int64{}
	for _, r := range list {
		if n := len(spans); n > 0 && (spans[n-1][0] == r || spans[n-1][0] == r+1) {
			spans[n-1][0] = r
			continue
		}

		spans = append(spans, [2]int64{r, r})
	}

	return spans
}

// columnLetter converts a zero-based column index to the A1 column name i.e. 0 is 'A', 26 is 'AA'.
func columnLetter(index int) string {
	s := ""
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		s = string(rune('A'+(n-1)%26)) + s
	}

	return s
}

func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
