package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCode_KnownCodes(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		code  int
		want  string
	}{
		{"zone first", Zone, 1, "NORTH CENTRAL"},
		{"zone last", Zone, 6, "SOUTH WEST"},
		{"sector zero", Sector, 0, "NEW"},
		{"sector rural", Sector, 2, "RURAL"},
		{"rejection collateral", RejectionReason, 1, "LACK OF COLLATERAL"},
		{"rejection items", RejectionReason, 4, "ITEMS DIDN'T QUALIFY FOR A LOAN"},
		{"purpose land", LoanPurpose, 1, "PURCHASE LAND"},
		{"purpose eleven", LoanPurpose, 11, "OTHER"},
		{"non application debt", NonApplicationReason, 6, "DO NOT LIKE TO BE IN DEBT"},
		{"non application other", NonApplicationReason, 8, "OTHER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapCode(tt.code, tt.table))
		})
	}
}

func TestMapCode_UnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "Rejection reason 99", MapCode(99, RejectionReason))
	assert.Equal(t, "Zone 0", MapCode(0, Zone))
	assert.Contains(t, MapCode(-3, LoanPurpose), "-3")
}

func TestNonApplicationReason_CodeFiveUnused(t *testing.T) {
	assert.False(t, NonApplicationReason.Has(5))
	assert.Equal(t, "Non-application reason 5", NonApplicationReason.Label(5))
}

func TestLabelOf_Nil(t *testing.T) {
	assert.Equal(t, "Loan purpose unknown", LoanPurpose.LabelOf(nil))

	c := 3
	assert.Equal(t, "PURCHASE INPUTS FOR CASH CROP", LoanPurpose.LabelOf(&c))
}

func TestEntries_Ordered(t *testing.T) {
	entries := NonApplicationReason.Entries()
	require.Len(t, entries, 7)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Code, entries[i].Code)
	}
	assert.Equal(t, Entry{Code: 8, Label: "OTHER"}, entries[6])
}

func TestByKey(t *testing.T) {
	tbl, ok := ByKey("loan_purpose")
	require.True(t, ok)
	assert.Equal(t, "Loan purpose", tbl.Name)

	_, ok = ByKey("crop")
	assert.False(t, ok)

	assert.Len(t, Tables(), 5)
}
