package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/records"
)

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		input    string
		expected float64
	}{
		{"$1,234.50", 1234.5},
		{" $ 10 ", 10},
		{"($12.00)", -12},
		{"-5", -5},
		{"1234.567", 1234.57},
		{"0", 0},
	}

	for _, c := range cases {
		v, err := ParseCurrency(c.input)
		require.NoError(t, err, "ParseCurrency(%q)", c.input)
		assert.Equal(t, c.expected, v, "ParseCurrency(%q)", c.input)
	}
}

func TestParseCurrencyWithInvalidAmount(t *testing.T) {
	for _, s := range []string{"", "  ", "$", "abc", "12..5", "N/A"} {
		_, err := ParseCurrency(s)
		assert.True(t, errs.IsData(err), "ParseCurrency(%q) - expected data error, got %v", s, err)
		assert.Nil(t, Currency(s), "Currency(%q)", s)
	}
}

func TestDate(t *testing.T) {
	cases := []struct {
		input    any
		expected any
	}{
		{"2024-06-01", "2024-06-01"},
		{"01/02/2024", "2024-01-02"},
		{"2024-06-01 13:45:00", "2024-06-01"},
		{"September 17, 2012", "2012-09-17"},
		{time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), "2024-03-05"},
		{"not a date", nil},
		{"", nil},
		{nil, nil},
		{"1234.5", nil},
		{"-12", nil},
		{"1e5", nil},
		{1234.5, nil},
		{20240601, nil},
		{true, nil},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, Date(c.input), "Date(%v)", c.input)
	}
}

func TestActions(t *testing.T) {
	rows := []records.Raw{
		records.NewRaw([]string{"Action Import ID", "Solicitor Name", "Action Type"}, []string{"A1", "Jane Doe", "Meeting"}),
		records.NewRaw([]string{"Action Import ID", "Solicitor Name", "Action Type"}, []string{"A2", "", "Call"}),
	}

	list := Actions(rows)
	require.Len(t, list, 2)

	expected := []records.Field{
		{Name: "Action Import ID", Value: "A1"},
		{Name: "Solicitor Name", Value: "Jane Doe"},
		{Name: "Action Type", Value: "Meeting"},
		{Name: "Action Unique ID", Value: "A1 Jane Doe"},
	}

	assert.Equal(t, expected, list[0].Fields)

	v, _ := list[1].Get(ActionUniqueID)
	assert.Equal(t, "A2", v, "unique id should be trimmed")
}

func TestActionsWithMissingColumns(t *testing.T) {
	list := Actions([]records.Raw{records.NewRaw([]string{"Solicitor Name"}, []string{"Bob"})})

	require.Len(t, list, 1)
	v, _ := list[0].Get(ActionUniqueID)
	assert.Equal(t, "Bob", v)
}

func TestGifts(t *testing.T) {
	header := []string{"Gift ID", "Gift Amount", "Gift Date"}
	rows := []records.Raw{
		records.NewRaw(header, []string{"G1", "$1,234.50", "2024-01-01"}),
		records.NewRaw(header, []string{"G2", "pending", "2024-01-02"}),
		records.NewRaw(header, []string{"G3", "", "2024-01-03"}),
	}

	list := Gifts(rows)
	require.Len(t, list, 3)

	expected := []records.Field{
		{Name: "Gift ID", Value: "G1"},
		{Name: "Gift Amount", Value: 1234.5},
		{Name: "Gift Date", Value: "2024-01-01"},
	}

	assert.Equal(t, expected, list[0].Fields)

	v, ok := list[1].Get(GiftAmount)
	assert.True(t, ok)
	assert.Nil(t, v)

	v, ok = list[2].Get(GiftAmount)
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestGiftsWithoutAmountColumn(t *testing.T) {
	list := Gifts([]records.Raw{records.NewRaw([]string{"Gift ID"}, []string{"G1"})})

	require.Len(t, list, 1)
	_, ok := list[0].Get(GiftAmount)
	assert.False(t, ok)
}

func TestProposalsFanOut(t *testing.T) {
	header := []string{"Constituent ID", "Name", "Primary Solicitor", "Campaign", "Proposal Import ID", "Proposal Import ID 2", "Proposal Import ID 3"}
	rows := []records.Raw{
		records.NewRaw(header, []string{"C1", "Jane Doe", "Bob", "AG", "P1", "", "P3"}),
		records.NewRaw(header, []string{"C2", "John Doe", "", "CCDEN", "P4", "P5", "P6"}),
		records.NewRaw(header, []string{"C3", "Jim Doe", "", "AG", "", "", ""}),
	}

	list := Proposals(rows)
	require.Len(t, list, 5)

	expected := []records.Field{
		{Name: "Constituent ID", Value: "C1"},
		{Name: "Name", Value: "Jane Doe"},
		{Name: "Primary Solicitor", Value: "Bob"},
		{Name: "Proposal Import ID", Value: "P3"},
	}

	assert.Equal(t, expected, list[1].Fields)

	for i, id := range []string{"P4", "P5", "P6"} {
		r := list[2+i]

		v, _ := r.Get(ProposalImportID)
		assert.Equal(t, id, v)

		v, _ = r.Get(ConstituentID)
		assert.Equal(t, "C2", v)

		v, _ = r.Get(PrimarySolicitor)
		assert.Equal(t, NoSolicitorCapital, v)
	}
}

func TestProposalsBackfill(t *testing.T) {
	header := []string{"Constituent ID", "Name", "Primary Solicitor", "Campaign", "Proposal Name", "Proposal Import ID"}

	p := NewProposals(records.NewRaw(header, []string{"C1", "Jane Doe", " ", "", "", "P1"}))
	require.Len(t, p, 1)
	require.NotNil(t, p[0].ProposalName)

	assert.Equal(t, NoSolicitorAnnual, p[0].PrimarySolicitor)
	assert.Equal(t, NoProposals, *p[0].ProposalName)

	p = NewProposals(records.NewRaw(header, []string{"C1", "Jane Doe", "Bob", "CCDEN", "Capital Ask", "P1"}))
	require.Len(t, p, 1)
	require.NotNil(t, p[0].ProposalName)

	assert.Equal(t, "Bob", p[0].PrimarySolicitor)
	assert.Equal(t, "Capital Ask", *p[0].ProposalName)

	v, ok := p[0].Record().Get(ProposalName)
	assert.True(t, ok)
	assert.Equal(t, "Capital Ask", v)
}

func TestProposalsWithDuplicateIDColumns(t *testing.T) {
	header := []string{"Constituent ID", "Name", "Proposal Import ID", "Proposal Import ID"}

	list := Proposals([]records.Raw{records.NewRaw(header, []string{"C1", "Jane Doe", "P1", "P2"})})
	require.Len(t, list, 2)

	v, _ := list[1].Get(ProposalImportID)
	assert.Equal(t, "P2", v)
}

func TestProposalsWithSuffixedAndDuplicateIDColumns(t *testing.T) {
	header := []string{"Constituent ID", "Proposal Import ID", "Proposal Import ID.1", "Proposal Import ID"}

	list := Proposals([]records.Raw{records.NewRaw(header, []string{"C1", "P1", "P2", "P3"})})
	require.Len(t, list, 3)

	ids := []any{}
	for _, r := range list {
		v, _ := r.Get(ProposalImportID)
		ids = append(ids, v)
	}

	assert.Equal(t, []any{"P1", "P2", "P3"}, ids)
}

func TestProposalIDColumns(t *testing.T) {
	header := []string{"Constituent ID", "proposal import id", "Proposal Import ID 2", "Proposal Name", "Import ID"}

	assert.Equal(t, []string{"proposal import id", "Proposal Import ID 2"}, ProposalIDColumns(header))
}

func TestKind(t *testing.T) {
	assert.Equal(t, ActionUniqueID, KindActions.PrimaryColumn())
	assert.Equal(t, "", KindProposals.PrimaryColumn())
	assert.Equal(t, "", KindGifts.PrimaryColumn())

	rows := []records.Raw{records.NewRaw([]string{"Action Import ID", "Solicitor Name"}, []string{"A1", "Jane Doe"})}
	list := KindActions.Transform(rows)

	require.Len(t, list, 1)
	v, _ := list[0].Get(ActionUniqueID)
	assert.Equal(t, "A1 Jane Doe", v)
}
