package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder returns the text decoder for an input encoding name. UTF-8 is the default and a leading byte order
// mark is dropped. Windows-1252 covers the legacy exports.
func Decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil

	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil

	default:
		return nil, fmt.Errorf("unsupported input encoding '%v'", name)
	}
}

// ReadCSV parses a delimited text export. The first row is the header and every value is read as a string.
// Missing trailing values are read as "".
func ReadCSV(f io.Reader, encoding string) ([]string, []Raw, error) {
	decoder, err := Decoder(encoding)
	if err != nil {
		return nil, nil, err
	}

	r := csv.NewReader(transform.NewReader(f, decoder))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid CSV file (%w)", err)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}

	header := make([]string, len(rows[0]))
	for i, v := range rows[0] {
		header[i] = clean(v)
	}

	if blank(header) {
		return nil, nil, fmt.Errorf("CSV file missing header")
	}

	records := make([]Raw, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}

		records = append(records, NewRaw(header, row))
	}

	return header, records, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}
