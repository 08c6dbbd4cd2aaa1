package domain

// FinancialInclusionRecord is one survey response on financial service usage.
// Every flag uses the survey coding: 1 = uses the service, 2 = does not.
// A nil flag means the question was not answered.
type FinancialInclusionRecord struct {
	HouseholdID string

	HasBankAccount            *int
	UsedCooperative           *int
	UsedInformalSavingsGroups *int
	HasInsurance              *int
	HasProxyBankingAccess     *int
}
