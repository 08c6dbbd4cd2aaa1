package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naijayield/internal/domain"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

func loan(id string, purpose, repaid int) domain.LoanLineItem {
	return domain.LoanLineItem{
		HouseholdID:   "HH-1",
		LoanID:        id,
		LoanPurpose:   purpose,
		LoanAmount:    ptrFloat64(100000),
		IsFullyRepaid: repaid,
	}
}

func inclusionRecord(v int) domain.FinancialInclusionRecord {
	return domain.FinancialInclusionRecord{
		HouseholdID:               "HH-1",
		HasBankAccount:            ptrInt(v),
		UsedCooperative:           ptrInt(v),
		UsedInformalSavingsGroups: ptrInt(v),
		HasInsurance:              ptrInt(v),
		HasProxyBankingAccess:     ptrInt(v),
	}
}

func TestRepaymentRatio(t *testing.T) {
	tests := []struct {
		name     string
		paid     *float64
		borrowed *float64
		want     float64
		defined  bool
	}{
		{"half repaid", ptrFloat64(50000), ptrFloat64(100000), 0.5, true},
		{"overpaid", ptrFloat64(150), ptrFloat64(100), 1.5, true},
		{"zero borrowed", ptrFloat64(10), ptrFloat64(0), 0, false},
		{"negative borrowed", ptrFloat64(10), ptrFloat64(-5), 0, false},
		{"missing borrowed", ptrFloat64(10), nil, 0, false},
		{"missing paid", nil, ptrFloat64(10), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RepaymentRatio(tt.paid, tt.borrowed)
			assert.Equal(t, tt.defined, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestBuildInclusionIndex_AllYesAllNo(t *testing.T) {
	yes := BuildInclusionIndex([]domain.FinancialInclusionRecord{inclusionRecord(1)})
	require.NotNil(t, yes)
	assert.InDelta(t, 100, yes.Aggregate, 1e-9)
	assert.Len(t, yes.PerService, 5)

	no := BuildInclusionIndex([]domain.FinancialInclusionRecord{inclusionRecord(2)})
	require.NotNil(t, no)
	assert.InDelta(t, 0, no.Aggregate, 1e-9)
}

func TestBuildInclusionIndex_MixedRespondents(t *testing.T) {
	recs := []domain.FinancialInclusionRecord{inclusionRecord(1), inclusionRecord(2)}
	recs[1].HasBankAccount = ptrInt(1)

	ix := BuildInclusionIndex(recs)
	require.NotNil(t, ix)

	bank, ok := ix.Percent(ServiceBankAccount)
	require.True(t, ok)
	assert.InDelta(t, 100, bank, 1e-9)

	coop, _ := ix.Percent(ServiceCooperative)
	assert.InDelta(t, 50, coop, 1e-9)

	// (100 + 50*4) / 5
	assert.InDelta(t, 60, ix.Aggregate, 1e-9)
	assert.Equal(t, 2, ix.Records)
}

func TestBuildInclusionIndex_Empty(t *testing.T) {
	assert.Nil(t, BuildInclusionIndex(nil))
	assert.Nil(t, BuildInclusionIndex([]domain.FinancialInclusionRecord{{HouseholdID: "HH-1"}}))
}

func TestBuildInclusionIndex_SkipsMalformedValues(t *testing.T) {
	rec := inclusionRecord(1)
	rec.HasInsurance = ptrInt(9)
	rec.HasProxyBankingAccess = nil

	ix := BuildInclusionIndex([]domain.FinancialInclusionRecord{rec, inclusionRecord(2)})
	require.NotNil(t, ix)

	ins, _ := ix.Percent(ServiceInsurance)
	assert.InDelta(t, 0, ins, 1e-9)
	proxy, _ := ix.Percent(ServiceProxyBanking)
	assert.InDelta(t, 0, proxy, 1e-9)
	bank, _ := ix.Percent(ServiceBankAccount)
	assert.InDelta(t, 50, bank, 1e-9)
}

func TestScore_Scenario(t *testing.T) {
	items := []domain.LoanLineItem{
		loan("L1", 1, 1),
		loan("L2", 2, 1),
		loan("L3", 3, 1),
		loan("L4", 9, 2),
	}
	inclusion := &InclusionIndex{Aggregate: 80}

	p := Score(items, inclusion)

	require.False(t, p.InsufficientData)
	require.NotNil(t, p.RepaymentScore)
	require.NotNil(t, p.UtilizationScore)
	require.NotNil(t, p.InclusionScore)
	require.NotNil(t, p.FinalScore)

	assert.InDelta(t, 30, *p.RepaymentScore, 1e-9)
	assert.InDelta(t, 15, *p.UtilizationScore, 1e-9)
	assert.InDelta(t, 32, *p.InclusionScore, 1e-9)
	assert.InDelta(t, 100, p.MaxScore, 1e-9)
	assert.InDelta(t, 77, *p.FinalScore, 1e-9)
	assert.Equal(t, RiskLow, p.RiskCategory)
	assert.Equal(t, "₦250,000–500,000", p.RecommendedMaxLoan)
	assert.Len(t, p.Components, 3)
}

func TestScore_NoLoansNoInclusion(t *testing.T) {
	p := Score(nil, nil)
	assert.True(t, p.InsufficientData)
	assert.Nil(t, p.FinalScore)
	assert.Empty(t, p.RiskCategory)
	assert.Zero(t, p.MaxScore)
}

func TestScore_InclusionWithoutLoansIsInsufficient(t *testing.T) {
	p := Score(nil, &InclusionIndex{Aggregate: 100})
	assert.True(t, p.InsufficientData)
	assert.Nil(t, p.InclusionScore)
}

func TestScore_LoansWithoutInclusion(t *testing.T) {
	p := Score([]domain.LoanLineItem{loan("L1", 2, 1), loan("L2", 10, 2)}, nil)

	require.NotNil(t, p.FinalScore)
	assert.Nil(t, p.InclusionScore)
	assert.InDelta(t, 60, p.MaxScore, 1e-9)
	// (20 + 10) / 60 * 100
	assert.InDelta(t, 50, *p.FinalScore, 1e-9)
	assert.Equal(t, RiskMedium, p.RiskCategory)
}

func TestScore_Idempotent(t *testing.T) {
	items := []domain.LoanLineItem{loan("L1", 4, 1), loan("L2", 6, 2)}
	ix := BuildInclusionIndex([]domain.FinancialInclusionRecord{inclusionRecord(1), inclusionRecord(2)})

	assert.Equal(t, Score(items, ix), Score(items, ix))
}

func TestBandFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  RiskCategory
		loan  string
	}{
		{100, RiskVeryLow, "≥ ₦500,000"},
		{80, RiskVeryLow, "≥ ₦500,000"},
		{79.999, RiskLow, "₦250,000–500,000"},
		{60, RiskLow, "₦250,000–500,000"},
		{59.99, RiskMedium, "₦100,000–250,000"},
		{40, RiskMedium, "₦100,000–250,000"},
		{20, RiskHigh, "₦50,000–100,000"},
		{19.99, RiskVeryHigh, "< ₦50,000"},
		{0, RiskVeryHigh, "< ₦50,000"},
	}
	for _, tt := range tests {
		b := BandFor(tt.score)
		assert.Equal(t, tt.want, b.Category, "score %v", tt.score)
		assert.Equal(t, tt.loan, b.RecommendedMaxLoan, "score %v", tt.score)
	}
}

func TestParseRiskCategory(t *testing.T) {
	c, ok := ParseRiskCategory("High Risk")
	require.True(t, ok)
	assert.Equal(t, RiskHigh, c)

	_, ok = ParseRiskCategory("high")
	assert.False(t, ok)
}
