// Package sheetsync replaces the contents of a remote sheet: it clears the non-blank rows and appends the
// transformed records in fixed size batches, pausing between batches to stay under the service rate limits.
//
// Batches are submitted in order and a failed batch aborts the remaining batches. Batches that have already
// been applied are not rolled back.
package sheetsync

import (
	"context"
	"fmt"
	"time"

	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/records"
	"github.com/moves-management/moves-upload/sheets"
	"github.com/moves-management/moves-upload/transform"
)

const (
	DefaultDeleteBatch = 300
	DefaultDeletePause = 1 * time.Second
	DefaultAddBatch    = 200
	DefaultAddPause    = 500 * time.Millisecond
)

const (
	OpClear  = "clear"
	OpAppend = "append"
)

// Event reports the progress of a clear or append after each batch.
type Event struct {
	Op      string
	SheetID string
	Done    int
	Total   int
}

type Options struct {
	DeleteBatch int
	DeletePause time.Duration
	AddBatch    int
	AddPause    time.Duration
	Progress    func(Event)
	Sleep       func(context.Context, time.Duration) error
}

type Synchronizer struct {
	service sheets.Service
	options Options
}

func DefaultOptions() Options {
	return Options{
		DeleteBatch: DefaultDeleteBatch,
		DeletePause: DefaultDeletePause,
		AddBatch:    DefaultAddBatch,
		AddPause:    DefaultAddPause,
	}
}

// NewSynchronizer returns a Synchronizer for the service. Zero batch sizes are replaced by the defaults.
func NewSynchronizer(service sheets.Service, options Options) *Synchronizer {
	if options.DeleteBatch <= 0 {
		options.DeleteBatch = DefaultDeleteBatch
	}

	if options.AddBatch <= 0 {
		options.AddBatch = DefaultAddBatch
	}

	if options.Sleep == nil {
		options.Sleep = sleep
	}

	return &Synchronizer{
		service: service,
		options: options,
	}
}

// ClearNonBlankRows deletes every row with at least one non-blank cell and returns the number of rows deleted.
// Rows are deleted from the bottom of the sheet up.
func (s *Synchronizer) ClearNonBlankRows(ctx context.Context, sheetID string) (int, error) {
	sheet, err := s.service.GetSheet(ctx, sheetID)
	if err != nil {
		return 0, errs.RemoteServiceError("clear", err)
	}

	ids := []int64{}
	for i := len(sheet.Rows) - 1; i >= 0; i-- {
		if row := sheet.Rows[i]; !row.IsBlank() {
			ids = append(ids, row.ID)
		}
	}

	total := len(ids)
	deleted := 0

	for i, batch := range chunk(ids, s.options.DeleteBatch) {
		if i > 0 {
			if err := s.options.Sleep(ctx, s.options.DeletePause); err != nil {
				return deleted, err
			}
		}

		if err := s.service.DeleteRows(ctx, sheetID, batch); err != nil {
			return deleted, errs.RemoteServiceError("clear", fmt.Errorf("error deleting rows %v-%v of %v (%w)", deleted+1, deleted+len(batch), total, err))
		}

		deleted += len(batch)
		s.progress(OpClear, sheetID, deleted, total)
	}

	return deleted, nil
}

// AppendRows appends the records to the bottom of the sheet and returns the number of rows added. Fields are
// matched to the sheet columns by title, ignoring case and whitespace, and fields without a matching column
// are dropped. If the primary column is set and exists in the sheet, a record without a primary value is keyed
// as 'Row N'.
func (s *Synchronizer) AppendRows(ctx context.Context, sheetID string, list []records.Record, primary string) (int, error) {
	if len(list) == 0 {
		return 0, nil
	}

	sheet, err := s.service.GetSheet(ctx, sheetID)
	if err != nil {
		return 0, errs.RemoteServiceError("append", err)
	}

	rows := BuildRows(sheet, list, primary)
	total := len(rows)
	added := 0

	for i, batch := range chunk(rows, s.options.AddBatch) {
		if i > 0 {
			if err := s.options.Sleep(ctx, s.options.AddPause); err != nil {
				return added, err
			}
		}

		if err := s.service.AddRows(ctx, sheetID, batch); err != nil {
			return added, errs.RemoteServiceError("append", fmt.Errorf("error adding rows %v-%v of %v (%w)", added+1, added+len(batch), total, err))
		}

		added += len(batch)
		s.progress(OpAppend, sheetID, added, total)
	}

	return added, nil
}

// BuildRows converts records to sheet rows against the sheet's current columns. Blank values are never
// written and rows without any cells are dropped.
func BuildRows(sheet *sheets.Sheet, list []records.Record, primary string) []sheets.Row {
	index := sheet.Index()
	key, hasPrimary := sheets.Column{}, false
	if primary != "" {
		key, hasPrimary = index.Resolve(primary)
	}

	rows := make([]sheets.Row, 0, len(list))
	for n, record := range list {
		row := sheets.Row{
			ToBottom: true,
			Cells:    []sheets.Cell{},
		}

		used := map[int64]bool{}

		if hasPrimary {
			v, _ := record.Get(primary)
			if records.IsBlank(v) {
				v = fmt.Sprintf("Row %v", n+1)
			}

			row.Cells = append(row.Cells, sheets.Cell{ColumnID: key.ID, Value: v})
			used[key.ID] = true
		}

		for _, f := range record.Fields {
			column, ok := index.Resolve(f.Name)
			if !ok || used[column.ID] {
				continue
			}

			v := f.Value
			if column.Type == sheets.TypeDate {
				v = transform.Date(v)
			}

			if records.IsBlank(v) {
				continue
			}

			row.Cells = append(row.Cells, sheets.Cell{ColumnID: column.ID, Value: v})
			used[column.ID] = true
		}

		if len(row.Cells) > 0 {
			rows = append(rows, row)
		}
	}

	return rows
}

func (s *Synchronizer) progress(op, sheetID string, done, total int) {
	if s.options.Progress != nil {
		s.options.Progress(Event{
			Op:      op,
			SheetID: sheetID,
			Done:    done,
			Total:   total,
		})
	}
}

func chunk[T any](list []T, size int) [][]T {
	batches := [][]T{}
	for len(list) > 0 {
		n := min(size, len(list))
		batches = append(batches, list[:n])
		list = list[n:]
	}

	return batches
}

func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		return nil
	}
}
