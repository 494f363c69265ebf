package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moves-management/moves-upload/errs"
)

const sheetJSON = `{
  "id": 4583173393803140,
  "name": "Actions",
  "columns": [
    { "id": 101, "index": 0, "title": "Action Unique ID", "type": "TEXT_NUMBER", "primary": true },
    { "id": 102, "index": 1, "title": "Action Date", "type": "DATE" },
    { "id": 103, "index": 2, "title": "Amount", "type": "TEXT_NUMBER" }
  ],
  "rows": [
    { "id": 1001, "rowNumber": 1, "cells": [ { "columnId": 101, "value": "A1 Jane Doe" }, { "columnId": 103, "value": 12.5 } ] },
    { "id": 1002, "rowNumber": 2, "cells": [ { "columnId": 101 }, { "columnId": 102, "value": "  " } ] }
  ]
}`

func TestSmartsheetGetSheet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/2.0/sheets/4583173393803140", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sheetJSON)
	}))

	defer server.Close()

	ss := NewSmartsheet(server.Client(), server.URL+"/2.0/")

	sheet, err := ss.GetSheet(context.Background(), "4583173393803140")
	require.NoError(t, err)

	assert.Equal(t, "4583173393803140", sheet.ID)
	assert.Equal(t, "Actions", sheet.Name)
	require.Len(t, sheet.Columns, 3)
	require.Len(t, sheet.Rows, 2)

	c, ok := sheet.Column(" action date ")
	require.True(t, ok)
	assert.Equal(t, int64(102), c.ID)
	assert.Equal(t, TypeDate, c.Type)

	assert.Equal(t, Column{ID: 101, Index: 0, Title: "Action Unique ID", Type: TypeTextNumber, Primary: true}, sheet.Columns[0])
	assert.Equal(t, 12.5, sheet.Rows[0].Cell(103))
	assert.False(t, sheet.Rows[0].IsBlank())
	assert.True(t, sheet.Rows[1].IsBlank())
}

func TestSmartsheetDeleteRows(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/sheets/123/rows", r.URL.Path)
		assert.Equal(t, "1,2,3", r.URL.Query().Get("ids"))
		assert.Equal(t, "true", r.URL.Query().Get("ignoreRowsNotFound"))

		io.WriteString(w, `{"message":"SUCCESS","resultCode":0,"result":[1,2,3]}`)
	}))

	defer server.Close()

	ss := NewSmartsheet(server.Client(), server.URL)

	require.NoError(t, ss.DeleteRows(context.Background(), "123", []int64{1, 2, 3}))
	require.NoError(t, ss.DeleteRows(context.Background(), "123", nil))
	assert.Equal(t, 1, calls)
}

func TestSmartsheetAddRows(t *testing.T) {
	var body []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sheets/123/rows", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		io.WriteString(w, `{"message":"SUCCESS","resultCode":0}`)
	}))

	defer server.Close()

	rows := []Row{
		{
			ToBottom: true,
			Cells: []Cell{
				{ColumnID: 101, Value: "A1 Jane Doe"},
				{ColumnID: 103, Value: 1234.5},
			},
		},
	}

	ss := NewSmartsheet(server.Client(), server.URL)

	require.NoError(t, ss.AddRows(context.Background(), "123", rows))

	expected := []map[string]any{
		{
			"toBottom": true,
			"cells": []any{
				map[string]any{"columnId": 101.0, "value": "A1 Jane Doe"},
				map[string]any{"columnId": 103.0, "value": 1234.5},
			},
		},
	}

	assert.Equal(t, expected, body)
}

func TestSmartsheetUpdateRows(t *testing.T) {
	var body []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		io.WriteString(w, `{"message":"SUCCESS","resultCode":0}`)
	}))

	defer server.Close()

	rows := []Row{
		{ID: 1001, Cells: []Cell{{ColumnID: 102, Value: "2024-06-01"}}},
		{ID: 1002, Cells: []Cell{{ColumnID: 102, Value: "2024-01-01"}}},
	}

	ss := NewSmartsheet(server.Client(), server.URL)

	require.NoError(t, ss.UpdateRows(context.Background(), "123", rows))
	require.Len(t, body, 2)

	assert.Equal(t, 1001.0, body[0]["id"])
	assert.Equal(t, 1002.0, body[1]["id"])
	assert.NotContains(t, body[0], "toBottom")
}

func TestSmartsheetError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"errorCode":1006,"message":"Not Found","refId":"abc123"}`)
	}))

	defer server.Close()

	ss := NewSmartsheet(server.Client(), server.URL)

	_, err := ss.GetSheet(context.Background(), "123")
	require.Error(t, err)
	assert.True(t, errs.IsRemote(err))

	var apierr *APIError
	require.True(t, errors.As(err, &apierr))
	assert.Equal(t, http.StatusNotFound, apierr.StatusCode)
	assert.Equal(t, 1006, apierr.ErrorCode)
	assert.Equal(t, "abc123", apierr.RefID)
}

func TestSmartsheetErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	defer server.Close()

	ss := NewSmartsheet(server.Client(), server.URL)

	err := ss.AddRows(context.Background(), "123", []Row{{Cells: []Cell{{ColumnID: 1, Value: "x"}}}})
	require.Error(t, err)
	assert.True(t, errs.IsRemote(err))
	assert.Contains(t, err.Error(), "Bad Gateway")
}

func TestSmartsheetErrorWithTextBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "upstream maintenance\n")
	}))

	defer server.Close()

	ss := NewSmartsheet(server.Client(), server.URL)

	_, err := ss.GetSheet(context.Background(), "123")
	require.Error(t, err)
	assert.True(t, errs.IsRemote(err))

	var apierr *APIError
	require.True(t, errors.As(err, &apierr))
	assert.Equal(t, http.StatusServiceUnavailable, apierr.StatusCode)
	assert.Equal(t, "upstream maintenance", apierr.Message)
}

func TestSmartsheetInvalidSheetID(t *testing.T) {
	ss := NewSmartsheet(nil, "http://127.0.0.1:1")

	for _, id := range []string{"", "abc", "-1", "spreadsheet/Actions"} {
		_, err := ss.GetSheet(context.Background(), id)
		assert.True(t, errs.IsRemote(err), "sheet ID %q - expected remote service error, got %v", id, err)
		assert.True(t, errs.IsConfig(err), "sheet ID %q - expected configuration cause, got %v", id, err)
	}
}
