package transform

import (
	"strings"

	"github.com/moves-management/moves-upload/records"
)

const (
	ConstituentID    = "Constituent ID"
	Name             = "Name"
	Campaign         = "Campaign"
	PrimarySolicitor = "Primary Solicitor"
	ProposalName     = "Proposal Name"
	ProposalImportID = "Proposal Import ID"
)

const (
	NoProposals         = "No Proposals"
	NoSolicitorCapital  = "No Primary Solicitor - Capital Campaign"
	NoSolicitorAnnual   = "No Primary Solicitor - Annual Giving"
	CapitalCampaignCode = "CCDEN"
)

// Proposal is one (constituent, proposal) pair expanded from a proposals export row.
type Proposal struct {
	ConstituentID    string
	Name             string
	PrimarySolicitor string
	ProposalName     *string
	ProposalImportID string
}

func (p Proposal) Record() records.Record {
	record := records.Record{}

	record.Set(ConstituentID, p.ConstituentID)
	record.Set(Name, p.Name)
	record.Set(PrimarySolicitor, p.PrimarySolicitor)
	if p.ProposalName != nil {
		record.Set(ProposalName, *p.ProposalName)
	}
	record.Set(ProposalImportID, p.ProposalImportID)

	return record
}

// NewProposals expands a proposals export row into one proposal per non-empty 'Proposal Import ID...' column,
// in column order. A row with no proposal ids expands to nothing.
func NewProposals(r records.Raw) []Proposal {
	solicitor := r.Value(PrimarySolicitor)
	if strings.TrimSpace(solicitor) == "" {
		solicitor = NoSolicitorAnnual
		if strings.EqualFold(strings.TrimSpace(r.Value(Campaign)), CapitalCampaignCode) {
			solicitor = NoSolicitorCapital
		}
	}

	var name *string
	if v, ok := r.Get(ProposalName); ok {
		if strings.TrimSpace(v) == "" {
			v = NoProposals
		}

		name = &v
	}

	list := []Proposal{}
	for _, column := range ProposalIDColumns(r.Header()) {
		id := strings.TrimSpace(r.Value(column))
		if id == "" {
			continue
		}

		list = append(list, Proposal{
			ConstituentID:    r.Value(ConstituentID),
			Name:             r.Value(Name),
			PrimarySolicitor: solicitor,
			ProposalName:     name,
			ProposalImportID: id,
		})
	}

	return list
}

// ProposalIDColumns returns the header columns that carry a proposal id i.e. every column with a name starting
// with 'Proposal Import ID'.
func ProposalIDColumns(header []string) []string {
	prefix := records.Normalise(ProposalImportID)
	columns := []string{}

	for _, h := range header {
		if strings.HasPrefix(records.Normalise(h), prefix) {
			columns = append(columns, h)
		}
	}

	return columns
}

func Proposals(rows []records.Raw) []records.Record {
	list := []records.Record{}
	for _, r := range rows {
		for _, p := range NewProposals(r) {
			list = append(list, p.Record())
		}
	}

	return list
}
