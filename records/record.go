// Package records defines the raw and transformed record shapes that flow from the CSV exports to the sheets,
// along with the column name resolution rules shared by every stage.
package records

import (
	"fmt"
	"strings"
	"unicode"
)

// Raw is one row of a CSV export. Lookups are case-insensitive and ignore whitespace; the header order is kept.
type Raw struct {
	header []string
	values map[string]string
}

func NewRaw(header []string, values []string) Raw {
	r := Raw{
		header: make([]string, 0, len(header)),
		values: make(map[string]string, len(header)),
	}

	used := map[string]bool{}
	suffix := map[string]int{}
	for i, h := range header {
		v := ""
		if i < len(values) {
			v = values[i]
		}

		// duplicate column names are suffixed '.1', '.2', ... skipping any suffixed name already in the header
		name := clean(h)
		if used[Normalise(name)] {
			k := Normalise(h)
			for n := suffix[k] + 1; ; n++ {
				if candidate := fmt.Sprintf("%v.%v", name, n); !used[Normalise(candidate)] {
					name = candidate
					suffix[k] = n
					break
				}
			}
		}

		used[Normalise(name)] = true
		r.Set(name, v)
	}

	return r
}

// Header returns the column names in file order.
func (r Raw) Header() []string {
	return append([]string(nil), r.header...)
}

// Get returns the value of the named column and whether the column exists.
func (r Raw) Get(column string) (string, bool) {
	v, ok := r.values[Normalise(column)]

	return v, ok
}

// Value returns the named column's value or "" if the column does not exist.
func (r Raw) Value(column string) string {
	v, _ := r.Get(column)

	return v
}

// Set replaces the value of an existing column or appends a new column.
func (r *Raw) Set(column string, value string) {
	if r.values == nil {
		r.values = map[string]string{}
	}

	k := Normalise(column)
	if _, ok := r.values[k]; !ok {
		r.header = append(r.header, clean(column))
	}

	r.values[k] = value
}

// Field is a named, typed value in a transformed record. Value is a string, a float64 or nil.
type Field struct {
	Name  string
	Value any
}

// Record is a transformed record ready to be written to a sheet. Fields are kept in insertion order.
type Record struct {
	Fields []Field
}

// FromRaw converts every column of a raw record to a string field.
func FromRaw(r Raw) Record {
	record := Record{
		Fields: make([]Field, 0, len(r.header)),
	}

	for _, h := range r.header {
		record.Fields = append(record.Fields, Field{Name: h, Value: r.Value(h)})
	}

	return record
}

func (r Record) Get(name string) (any, bool) {
	k := Normalise(name)
	for _, f := range r.Fields {
		if Normalise(f.Name) == k {
			return f.Value, true
		}
	}

	return nil, false
}

// Set replaces the first field matching name or appends a new field.
func (r *Record) Set(name string, value any) {
	k := Normalise(name)
	for i, f := range r.Fields {
		if Normalise(f.Name) == k {
			r.Fields[i].Value = value
			return
		}
	}

	r.Fields = append(r.Fields, Field{Name: clean(name), Value: value})
}

// IsBlank returns true for nil values and strings that are empty after trimming.
func IsBlank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true

	case string:
		return strings.TrimSpace(s) == ""

	case *string:
		return s == nil || strings.TrimSpace(*s) == ""

	default:
		return false
	}
}

// Normalise reduces a column name to its lookup key: lower case with all whitespace removed.
func Normalise(v string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, v))
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
