package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/records"
	"github.com/moves-management/moves-upload/transform"
)

type Options struct {
	UpdateDate bool
	Encoding   string
}

// Batch is the accumulated records for one target sheet.
type Batch struct {
	Kind    transform.Kind
	SheetID string
	Primary string
	Files   []string
	Records []records.Record
}

type SheetReport struct {
	Kind    transform.Kind
	SheetID string
	Files   []string
	Records int
	Cleared int
	Added   int
}

type Report struct {
	ID       string
	Location string
	Sheets   []SheetReport
	Skipped  []string
	Swap     *Swap
}

// Classify returns the sheet kind for an export file from its name: the first of 'action', 'proposal' and
// 'gift' found in the file name (case-insensitive).
func Classify(filename string) (transform.Kind, bool) {
	name := strings.ToLower(filepath.Base(filename))

	switch {
	case strings.Contains(name, "action"):
		return transform.KindActions, true

	case strings.Contains(name, "proposal"):
		return transform.KindProposals, true

	case strings.Contains(name, "gift"):
		return transform.KindGifts, true

	default:
		return "", false
	}
}

// Run uploads the export files. Every file is parsed and transformed before anything is written, then all three
// target sheets are cleared and the records appended to actions, proposals and gifts in that order.
//
// A remote failure ends the run. Sheets that were already cleared or partially appended are left as is.
func Run(ctx context.Context, rc *RunContext, files []string, options Options) (Report, error) {
	report := Report{
		ID:       rc.ID.String(),
		Location: rc.Location,
		Sheets:   []SheetReport{},
		Skipped:  []string{},
	}

	if options.UpdateDate {
		if err := rc.Config.CanUpdateDate(rc.Location); err != nil {
			return report, err
		}
	}

	batches, skipped, err := prepare(rc, files, options)
	if err != nil {
		return report, err
	}

	report.Skipped = skipped

	if len(files) == len(skipped) {
		return report, errs.DataError("upload", "no action, proposal or gift files to upload")
	}

	for _, b := range batches {
		report.Sheets = append(report.Sheets, SheetReport{
			Kind:    b.Kind,
			SheetID: b.SheetID,
			Files:   b.Files,
			Records: len(b.Records),
		})
	}

	for i, b := range batches {
		cleared, err := rc.Synchronizer(b.Kind).ClearNonBlankRows(ctx, b.SheetID)
		report.Sheets[i].Cleared = cleared
		if err != nil {
			return report, fmt.Errorf("error clearing %v sheet (%w)", b.Kind, err)
		}

		rc.progress("%-9v cleared %v rows", b.Kind, cleared)
	}

	for i, b := range batches {
		added, err := rc.Synchronizer(b.Kind).AppendRows(ctx, b.SheetID, b.Records, b.Primary)
		report.Sheets[i].Added = added
		if err != nil {
			return report, fmt.Errorf("error uploading %v (%w)", b.Kind, err)
		}

		rc.progress("%-9v uploaded %v rows", b.Kind, added)
	}

	if options.UpdateDate {
		swap, err := SwapTimestamp(ctx, rc)
		if err != nil {
			return report, fmt.Errorf("error updating last updated date (%w)", err)
		}

		report.Swap = &swap
	}

	return report, nil
}

// prepare resolves the target sheets and reads and transforms every file into one batch per sheet kind.
func prepare(rc *RunContext, files []string, options Options) ([]Batch, []string, error) {
	encoding := rc.Config.Input.Encoding
	if options.Encoding != "" {
		encoding = options.Encoding
	}

	batches := []Batch{}
	index := map[transform.Kind]int{}

	for _, kind := range transform.Kinds {
		sheetID, err := rc.SheetID(kind)
		if err != nil {
			return nil, nil, err
		}

		index[kind] = len(batches)
		batches = append(batches, Batch{
			Kind:    kind,
			SheetID: sheetID,
			Primary: kind.PrimaryColumn(),
			Files:   []string{},
			Records: []records.Record{},
		})
	}

	skipped := []string{}
	for _, file := range files {
		kind, ok := Classify(file)
		if !ok {
			rc.warn("skipping '%v' - file name does not include 'action', 'proposal' or 'gift'", filepath.Base(file))
			skipped = append(skipped, file)
			continue
		}

		rows, err := read(file, encoding)
		if err != nil {
			return nil, nil, err
		}

		list := kind.Transform(rows)
		b := &batches[index[kind]]
		b.Files = append(b.Files, file)
		b.Records = append(b.Records, list...)

		rc.progress("%-9v %v: %v rows, %v records", kind, filepath.Base(file), len(rows), len(list))
	}

	return batches, skipped, nil
}

func read(file string, encoding string) ([]records.Raw, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errs.DataError("read", "unable to open %v (%v)", file, err)
	}

	defer f.Close()

	_, rows, err := records.ReadCSV(f, encoding)
	if err != nil {
		return nil, errs.DataError("read", "%v: %v", filepath.Base(file), err)
	}

	return rows, nil
}
