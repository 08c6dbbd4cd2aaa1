// Package codes maps the integer category codes of the agricultural survey to
// the labels shown on the dashboard.
package codes

import (
	"sort"
	"strconv"
)

// Table is a fixed code -> label lookup.
type Table struct {
	Name   string
	Key    string
	labels map[int]string
}

// Label returns the label for code, or "<Name> <code>" when the code is not in the table.
func (t Table) Label(code int) string {
	if l, ok := t.labels[code]; ok {
		return l
	}
	return t.Name + " " + strconv.Itoa(code)
}

// LabelOf is Label for a nullable code. A missing code yields "<Name> unknown".
func (t Table) LabelOf(code *int) string {
	if code == nil {
		return t.Name + " unknown"
	}
	return t.Label(*code)
}

// Has reports whether code is part of the table.
func (t Table) Has(code int) bool {
	_, ok := t.labels[code]
	return ok
}

// Entries returns the table content ordered by code.
func (t Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.labels))
	for c, l := range t.labels {
		out = append(out, Entry{Code: c, Label: l})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

type Entry struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}

var (
	Zone = Table{
		Name: "Zone",
		Key:  "zone",
		labels: map[int]string{
			1: "NORTH CENTRAL",
			2: "NORTH EAST",
			3: "NORTH WEST",
			4: "SOUTH EAST",
			5: "SOUTH SOUTH",
			6: "SOUTH WEST",
		},
	}

	Sector = Table{
		Name: "Sector",
		Key:  "sector",
		labels: map[int]string{
			0: "NEW",
			1: "URBAN",
			2: "RURAL",
		},
	}

	RejectionReason = Table{
		Name: "Rejection reason",
		Key:  "rejection_reason",
		labels: map[int]string{
			1: "LACK OF COLLATERAL",
			2: "NO SAVINGS/SHARES",
			3: "BAD CREDIT HISTORY",
			4: "ITEMS DIDN'T QUALIFY FOR A LOAN",
			5: "LACK OF GUARANTORS",
			6: "OTHER",
		},
	}

	LoanPurpose = Table{
		Name: "Loan purpose",
		Key:  "loan_purpose",
		labels: map[int]string{
			1:  "PURCHASE LAND",
			2:  "PURCHASE AGRICULTURAL INPUTS FOR FOOD CROP",
			3:  "PURCHASE INPUTS FOR CASH CROP",
			4:  "BUSINESS START UP CAPITAL",
			5:  "NON FARM BUSINESS COSTS",
			6:  "CEREMONIES",
			7:  "EDUCATION",
			8:  "MOTOR VEHICLE PURCHASE",
			9:  "HOME PURCHASE OR CONSTRUCTION",
			10: "OTHER HOUSEHOLD CONSUMPTION",
			11: "OTHER",
		},
	}

	// Code 5 is not used by the survey instrument.
	NonApplicationReason = Table{
		Name: "Non-application reason",
		Key:  "non_application_reason",
		labels: map[int]string{
			1: "BELIEVED IT WOULD BE REFUSED",
			2: "TOO EXPENSIVE",
			3: "TOO MUCH TROUBLE",
			4: "INADEQUATE COLLATERAL",
			6: "DO NOT LIKE TO BE IN DEBT",
			7: "DO NOT KNOW ANY LENDER",
			8: "OTHER",
		},
	}
)

var tables = []Table{Zone, Sector, RejectionReason, LoanPurpose, NonApplicationReason}

// Tables returns every lookup table.
func Tables() []Table {
	out := make([]Table, len(tables))
	copy(out, tables)
	return out
}

// ByKey finds a table by its key, e.g. "loan_purpose".
func ByKey(key string) (Table, bool) {
	for _, t := range tables {
		if t.Key == key {
			return t, true
		}
	}
	return Table{}, false
}

// MapCode translates code with the given table. It never fails.
func MapCode(code int, t Table) string {
	return t.Label(code)
}
