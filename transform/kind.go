package transform

import (
	"github.com/moves-management/moves-upload/records"
)

// Kind identifies the sheet an export is uploaded to.
type Kind string

const (
	KindActions   Kind = "actions"
	KindProposals Kind = "proposals"
	KindGifts     Kind = "gifts"
)

// Kinds lists the sheet kinds in upload order.
var Kinds = []Kind{KindActions, KindProposals, KindGifts}

// Transform applies the kind's transform to a list of raw records.
func (k Kind) Transform(rows []records.Raw) []records.Record {
	switch k {
	case KindActions:
		return Actions(rows)

	case KindProposals:
		return Proposals(rows)

	case KindGifts:
		return Gifts(rows)

	default:
		list := make([]records.Record, 0, len(rows))
		for _, r := range rows {
			list = append(list, records.FromRaw(r))
		}

		return list
	}
}

// PrimaryColumn returns the column that receives the record key, or "" if the sheet has none.
func (k Kind) PrimaryColumn() string {
	if k == KindActions {
		return ActionUniqueID
	}

	return ""
}

func (k Kind) String() string {
	return string(k)
}
