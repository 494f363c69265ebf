package transform

import (
	"github.com/moves-management/moves-upload/records"
)

const GiftAmount = "Gift Amount"

// Gift is a gifts export row. Amount is the parsed 'Gift Amount' (float64) or nil if the amount is blank or
// invalid or the export has no amount column.
type Gift struct {
	Amount    any
	hasAmount bool
	columns   records.Raw
}

func NewGift(r records.Raw) Gift {
	g := Gift{
		columns: r,
	}

	if v, ok := r.Get(GiftAmount); ok {
		g.Amount = Currency(v)
		g.hasAmount = true
	}

	return g
}

func (g Gift) Record() records.Record {
	record := records.FromRaw(g.columns)
	if g.hasAmount {
		record.Set(GiftAmount, g.Amount)
	}

	return record
}

func Gifts(rows []records.Raw) []records.Record {
	list := make([]records.Record, 0, len(rows))
	for _, r := range rows {
		list = append(list, NewGift(r).Record())
	}

	return list
}
