package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/moves-management/moves-upload/errs"
)

// SmartsheetAPI is the base URL of the Smartsheet REST API.
const SmartsheetAPI = "https://api.smartsheet.com/2.0"

// Smartsheet implements Service over the Smartsheet REST API. The HTTP client is expected to add the bearer
// credential to each request (e.g. an oauth2 client).
type Smartsheet struct {
	client *http.Client
	base   string
}

// APIError is the error body returned by Smartsheet for a failed request.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorCode  int    `json:"errorCode"`
	Message    string `json:"message"`
	RefID      string `json:"refId"`
}

func (e *APIError) Error() string {
	if e.RefID != "" {
		return fmt.Sprintf("%v %v (HTTP %v, ref:%v)", e.ErrorCode, e.Message, e.StatusCode, e.RefID)
	}

	return fmt.Sprintf("%v %v (HTTP %v)", e.ErrorCode, e.Message, e.StatusCode)
}

type ssSheet struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Columns []ssColumn `json:"columns"`
	Rows    []ssRow    `json:"rows"`
}

type ssColumn struct {
	ID      int64  `json:"id"`
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Primary bool   `json:"primary,omitempty"`
}

type ssRow struct {
	ID        int64    `json:"id,omitempty"`
	RowNumber int      `json:"rowNumber,omitempty"`
	ToBottom  bool     `json:"toBottom,omitempty"`
	Cells     []ssCell `json:"cells"`
}

type ssCell struct {
	ColumnID int64 `json:"columnId"`
	Value    any   `json:"value"`
}

// NewSmartsheet returns a Smartsheet client. An empty base URL defaults to the public API.
func NewSmartsheet(client *http.Client, base string) *Smartsheet {
	if client == nil {
		client = http.DefaultClient
	}

	if strings.TrimSpace(base) == "" {
		base = SmartsheetAPI
	}

	return &Smartsheet{
		client: client,
		base:   strings.TrimSuffix(strings.TrimSpace(base), "/"),
	}
}

func (s *Smartsheet) GetSheet(ctx context.Context, sheetID string) (*Sheet, error) {
	id, err := smartsheetID(sheetID)
	if err != nil {
		return nil, err
	}

	var reply ssSheet
	if err := s.do(ctx, "get-sheet", http.MethodGet, fmt.Sprintf("/sheets/%v", id), nil, nil, &reply); err != nil {
		return nil, err
	}

	sheet := Sheet{
		ID:      fmt.Sprintf("%v", reply.ID),
		Name:    reply.Name,
		Columns: make([]Column, 0, len(reply.Columns)),
		Rows:    make([]Row, 0, len(reply.Rows)),
	}

	for _, c := range reply.Columns {
		sheet.Columns = append(sheet.Columns, Column{
			ID:      c.ID,
			Index:   c.Index,
			Title:   c.Title,
			Type:    c.Type,
			Primary: c.Primary,
		})
	}

	for _, r := range reply.Rows {
		row := Row{
			ID:        r.ID,
			RowNumber: r.RowNumber,
			Cells:     make([]Cell, 0, len(r.Cells)),
		}

		for _, c := range r.Cells {
			row.Cells = append(row.Cells, Cell{ColumnID: c.ColumnID, Value: c.Value})
		}

		sheet.Rows = append(sheet.Rows, row)
	}

	return &sheet, nil
}

func (s *Smartsheet) DeleteRows(ctx context.Context, sheetID string, rows []int64) error {
	id, err := smartsheetID(sheetID)
	if err != nil {
		return err
	} else if len(rows) == 0 {
		return nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, strconv.FormatInt(r, 10))
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("ignoreRowsNotFound", "true")

	return s.do(ctx, "delete-rows", http.MethodDelete, fmt.Sprintf("/sheets/%v/rows", id), query, nil, nil)
}

func (s *Smartsheet) AddRows(ctx context.Context, sheetID string, rows []Row) error {
	id, err := smartsheetID(sheetID)
	if err != nil {
		return err
	} else if len(rows) == 0 {
		return nil
	}

	return s.do(ctx, "add-rows", http.MethodPost, fmt.Sprintf("/sheets/%v/rows", id), nil, wire(rows, false), nil)
}

func (s *Smartsheet) UpdateRows(ctx context.Context, sheetID string, rows []Row) error {
	id, err := smartsheetID(sheetID)
	if err != nil {
		return err
	} else if len(rows) == 0 {
		return nil
	}

	return s.do(ctx, "update-rows", http.MethodPut, fmt.Sprintf("/sheets/%v/rows", id), nil, wire(rows, true), nil)
}

func (s *Smartsheet) do(ctx context.Context, op, method, path string, query url.Values, body any, reply any) error {
	uri := s.base + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	var content io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errs.RemoteServiceError(op, err)
		}

		content = bytes.NewReader(b)
	}

	rq, err := http.NewRequestWithContext(ctx, method, uri, content)
	if err != nil {
		return errs.RemoteServiceError(op, err)
	}

	rq.Header.Set("Accept", "application/json")
	if body != nil {
		rq.Header.Set("Content-Type", "application/json")
	}

	response, err := s.client.Do(rq)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return errs.RemoteServiceError(op, errs.AuthError(op, err))
		}

		return errs.RemoteServiceError(op, err)
	}

	defer response.Body.Close()

	b, err := io.ReadAll(response.Body)
	if err != nil {
		return errs.RemoteServiceError(op, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apierr := APIError{
			StatusCode: response.StatusCode,
			Message:    http.StatusText(response.StatusCode),
		}

		if len(b) > 0 {
			if err := json.Unmarshal(b, &apierr); err != nil || apierr.Message == "" {
				apierr.Message = strings.TrimSpace(string(b))
			}
		}

		return errs.RemoteServiceError(op, &apierr)
	}

	if reply != nil {
		if err := json.Unmarshal(b, reply); err != nil {
			return errs.RemoteServiceError(op, fmt.Errorf("invalid response (%w)", err))
		}
	}

	return nil
}

func wire(rows []Row, withID bool) []ssRow {
	list := make([]ssRow, 0, len(rows))
	for _, r := range rows {
		row := ssRow{
			ToBottom: r.ToBottom,
			Cells:    make([]ssCell, 0, len(r.Cells)),
		}

		if withID {
			row.ID = r.ID
		}

		for _, c := range r.Cells {
			row.Cells = append(row.Cells, ssCell{ColumnID: c.ColumnID, Value: c.Value})
		}

		list = append(list, row)
	}

	return list
}

func smartsheetID(sheetID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(sheetID), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.RemoteServiceError("sheet-id", errs.ConfigError("sheet-id", "invalid Smartsheet sheet ID '%v'", sheetID))
	}

	return id, nil
}
