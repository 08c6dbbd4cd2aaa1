package scoring

import "naijayield/internal/domain"

// Component weights. They add up to 100.
const (
	RepaymentWeight   = 40.0
	UtilizationWeight = 20.0
	InclusionWeight   = 40.0
)

const (
	ComponentRepayment   = "Repayment History"
	ComponentUtilization = "Loan Utilization"
	ComponentInclusion   = "Financial Inclusion"
)

// productivePurposes are land, food crop inputs, cash crop inputs and business start up.
var productivePurposes = map[int]bool{1: true, 2: true, 3: true, 4: true}

// IsProductivePurpose reports whether a loan purpose code is economically productive.
func IsProductivePurpose(code int) bool {
	return productivePurposes[code]
}

type Component struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// CreditProfile is the scoring result for one household. Components that
// could not be computed are nil. When InsufficientData is set FinalScore is
// nil and no risk category applies.
type CreditProfile struct {
	RepaymentScore   *float64    `json:"repayment_score"`
	UtilizationScore *float64    `json:"utilization_score"`
	InclusionScore   *float64    `json:"inclusion_score"`
	Components       []Component `json:"components"`

	MaxScore   float64  `json:"max_score"`
	FinalScore *float64 `json:"final_score"`

	RiskCategory       RiskCategory `json:"risk_category,omitempty"`
	RecommendedMaxLoan string       `json:"recommended_max_loan,omitempty"`
	InsufficientData   bool         `json:"insufficient_data"`
}

// Score combines repayment history, loan utilization and financial inclusion
// into a 0..100 score. Only computed components count towards the maximum,
// so a household with no loans gets InsufficientData instead of a 0.
func Score(items []domain.LoanLineItem, inclusion *InclusionIndex) CreditProfile {
	var p CreditProfile
	var total float64

	add := func(name string, score, weight float64) *float64 {
		p.Components = append(p.Components, Component{Name: name, Score: score, Weight: weight})
		total += score
		p.MaxScore += weight
		return &score
	}

	if n := len(items); n > 0 {
		var repaid, productive int
		for _, it := range items {
			if it.IsFullyRepaid == domain.CodeYes {
				repaid++
			}
			if IsProductivePurpose(it.LoanPurpose) {
				productive++
			}
		}
		p.RepaymentScore = add(ComponentRepayment, float64(repaid)/float64(n)*RepaymentWeight, RepaymentWeight)
		p.UtilizationScore = add(ComponentUtilization, float64(productive)/float64(n)*UtilizationWeight, UtilizationWeight)

		if inclusion != nil {
			p.InclusionScore = add(ComponentInclusion, inclusion.Aggregate*InclusionWeight/100, InclusionWeight)
		}
	}

	if p.MaxScore <= 0 {
		p.InsufficientData = true
		return p
	}

	final := total / p.MaxScore * 100
	p.FinalScore = &final

	b := BandFor(final)
	p.RiskCategory = b.Category
	p.RecommendedMaxLoan = b.RecommendedMaxLoan
	return p
}
