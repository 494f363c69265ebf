// Package transform maps the raw CSV export records to the records written to each sheet.
//
// Transforms are pure: values that cannot be coerced become nil and are never reported as errors.
package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/moves-management/moves-upload/errs"
)

// DateFormat is the date layout accepted by DATE sheet columns.
const DateFormat = "2006-01-02"

// ParseCurrency parses a currency formatted amount e.g. '$1,234.50' or '($12.00)', rounded to 2 decimal places.
func ParseCurrency(s string) (float64, error) {
	v := strings.TrimSpace(s)
	negative := false

	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		negative = true
		v = strings.TrimSuffix(strings.TrimPrefix(v, "("), ")")
	}

	v = strings.NewReplacer("$", "", ",", "", " ", "").Replace(v)
	if v == "" {
		return 0, errs.DataError("currency", "blank amount")
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, errs.DataError("currency", "invalid amount %q", s)
	}

	if negative {
		d = d.Neg()
	}

	return d.Round(2).InexactFloat64(), nil
}

// Currency returns the parsed amount as a float64 or nil if the value is not a valid amount.
func Currency(s string) any {
	if v, err := ParseCurrency(s); err == nil {
		return v
	}

	return nil
}

// ParseDate parses a date in any of the common export layouts (month first for ambiguous dates) and returns
// it formatted as YYYY-MM-DD.
func ParseDate(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", errs.DataError("date", "blank date")
	}

	if _, err := strconv.ParseFloat(v, 64); err == nil && strings.ContainsAny(v, ".+-eE") {
		return "", errs.DataError("date", "invalid date %q", s)
	}

	t, err := dateparse.ParseIn(v, time.UTC)
	if err != nil {
		return "", errs.DataError("date", "invalid date %q", s)
	}

	return t.Format(DateFormat), nil
}

// Date returns a value formatted as YYYY-MM-DD or nil if it is not a valid date. Only strings and time.Time
// values are dates.
func Date(v any) any {
	switch d := v.(type) {
	case string:
		if date, err := ParseDate(d); err == nil {
			return date
		}

	case time.Time:
		return d.Format(DateFormat)
	}

	return nil
}
