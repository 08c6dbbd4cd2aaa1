package domain

// Survey answers use 1 for yes and 2 for no.
const (
	CodeYes = 1
	CodeNo  = 2
)

// LoanRecord is the household-level loan application snapshot.
type LoanRecord struct {
	HouseholdID string

	AppliedForLoan int
	WasRejected    int
	NeededLoan     int

	PrimaryRejectionReason   *int
	PrimaryReasonNoBorrowing *int

	LoanPurpose     *int
	LoanAmount      *float64
	LoanSufficient  *int
	IsFullyRepaid   *int
	TotalAmountPaid *float64

	ZoneCode   *int
	SectorCode *int
}

// LoanLineItem is one loan taken by a household.
type LoanLineItem struct {
	HouseholdID   string
	LoanID        string
	LoanPurpose   int
	LoanAmount    *float64
	IsFullyRepaid int
}
