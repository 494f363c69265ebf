package transform

import (
	"strings"

	"github.com/moves-management/moves-upload/records"
)

const (
	ActionImportID = "Action Import ID"
	SolicitorName  = "Solicitor Name"
	ActionUniqueID = "Action Unique ID"
)

// Action is an actions export row. UniqueID is the synthetic key written to the primary column.
type Action struct {
	UniqueID  string
	ImportID  string
	Solicitor string
	columns   records.Raw
}

func NewAction(r records.Raw) Action {
	id := r.Value(ActionImportID)
	solicitor := r.Value(SolicitorName)

	return Action{
		UniqueID:  strings.TrimSpace(id + " " + solicitor),
		ImportID:  id,
		Solicitor: solicitor,
		columns:   r,
	}
}

// Record returns every column of the export plus the 'Action Unique ID' column.
func (a Action) Record() records.Record {
	record := records.FromRaw(a.columns)
	record.Set(ActionUniqueID, a.UniqueID)

	return record
}

func Actions(rows []records.Raw) []records.Record {
	list := make([]records.Record, 0, len(rows))
	for _, r := range rows {
		list = append(list, NewAction(r).Record())
	}

	return list
}
