package scoring

import (
	"sort"

	"naijayield/internal/codes"
	"naijayield/internal/domain"
)

type LoanHistoryStatus string

const (
	HistoryBorrowed      LoanHistoryStatus = "borrowed"
	HistoryRejected      LoanHistoryStatus = "rejected"
	HistoryNeededNoApply LoanHistoryStatus = "needed_no_apply"
	HistoryNone          LoanHistoryStatus = "no_history"
)

// LoanHistory is the display narrative of a household's loan application.
type LoanHistory struct {
	Status LoanHistoryStatus `json:"status"`
	Reason string            `json:"reason,omitempty"`
}

// DescribeLoanHistory turns the household summary into a narrative. A nil
// record means the household never answered the credit module.
func DescribeLoanHistory(rec *domain.LoanRecord) LoanHistory {
	switch {
	case rec == nil:
		return LoanHistory{Status: HistoryNone}
	case rec.AppliedForLoan == domain.CodeYes:
		return LoanHistory{Status: HistoryBorrowed}
	case rec.WasRejected == domain.CodeYes:
		h := LoanHistory{Status: HistoryRejected}
		if rec.PrimaryRejectionReason != nil {
			h.Reason = codes.RejectionReason.Label(*rec.PrimaryRejectionReason)
		}
		return h
	case rec.NeededLoan == domain.CodeYes:
		h := LoanHistory{Status: HistoryNeededNoApply}
		if rec.PrimaryReasonNoBorrowing != nil {
			h.Reason = codes.NonApplicationReason.Label(*rec.PrimaryReasonNoBorrowing)
		}
		return h
	default:
		return LoanHistory{Status: HistoryNone}
	}
}

type Tone string

const (
	ToneGood Tone = "good"
	ToneFair Tone = "fair"
	TonePoor Tone = "poor"
)

type PurposeCount struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LoanStats are the headline numbers of a household's loans.
type LoanStats struct {
	LoanCount       int            `json:"loan_count"`
	TotalBorrowed   float64        `json:"total_borrowed"`
	RepaymentRate   *float64       `json:"repayment_rate"`
	RepaymentTone   Tone           `json:"repayment_tone,omitempty"`
	AgriculturalPct *float64       `json:"agricultural_pct"`
	TopPurposes     []PurposeCount `json:"top_purposes"`
	MorePurposes    int            `json:"more_purposes"`
}

const shownPurposes = 3

// agriculturalPurposes are the food crop and cash crop input codes.
var agriculturalPurposes = map[int]bool{2: true, 3: true}

func SummarizeLoans(items []domain.LoanLineItem) LoanStats {
	var s LoanStats

	ids := make(map[string]struct{}, len(items))
	counts := map[int]int{}
	var repaidSum float64
	var agri int
	for _, it := range items {
		ids[it.LoanID] = struct{}{}
		if it.LoanAmount != nil && *it.LoanAmount > 0 {
			s.TotalBorrowed += *it.LoanAmount
		}
		repaidSum += float64(it.IsFullyRepaid)
		counts[it.LoanPurpose]++
		if agriculturalPurposes[it.LoanPurpose] {
			agri++
		}
	}
	s.LoanCount = len(ids)

	if len(items) > 0 {
		// Same 1 = yes / 2 = no transform as the inclusion index.
		rate := (2 - repaidSum/float64(len(items))) * 100
		s.RepaymentRate = &rate
		s.RepaymentTone = toneFor(rate)
	}
	if s.LoanCount > 0 && agri > 0 {
		pct := float64(agri) / float64(s.LoanCount) * 100
		s.AgriculturalPct = &pct
	}

	purposes := make([]PurposeCount, 0, len(counts))
	for code, n := range counts {
		purposes = append(purposes, PurposeCount{Code: code, Label: codes.LoanPurpose.Label(code), Count: n})
	}
	sort.Slice(purposes, func(i, j int) bool {
		if purposes[i].Count != purposes[j].Count {
			return purposes[i].Count > purposes[j].Count
		}
		return purposes[i].Code < purposes[j].Code
	})
	if len(purposes) > shownPurposes {
		s.MorePurposes = len(purposes) - shownPurposes
		purposes = purposes[:shownPurposes]
	}
	s.TopPurposes = purposes
	return s
}

func toneFor(rate float64) Tone {
	switch {
	case rate >= 80:
		return ToneGood
	case rate >= 50:
		return ToneFair
	default:
		return TonePoor
	}
}

type InclusionStatus string

const (
	InclusionHigh   InclusionStatus = "High"
	InclusionMedium InclusionStatus = "Medium"
	InclusionLow    InclusionStatus = "Low"
)

func InclusionStatusFor(aggregate float64) InclusionStatus {
	switch {
	case aggregate >= 75:
		return InclusionHigh
	case aggregate >= 50:
		return InclusionMedium
	default:
		return InclusionLow
	}
}

// ServicesUsed lists the services the first respondent answered "yes" to,
// out of bank account, cooperative, savings group and insurance.
func ServicesUsed(records []domain.FinancialInclusionRecord) []string {
	if len(records) == 0 {
		return nil
	}
	r := records[0]
	used := []string{}
	for _, svc := range services[:4] {
		if v := svc.flag(r); v != nil && *v == domain.CodeYes {
			used = append(used, svc.name)
		}
	}
	return used
}

const ServicesTracked = 4

type Recommendation struct {
	Service string `json:"service"`
	Title   string `json:"title"`
	Advice  string `json:"advice"`
}

var advice = map[string]Recommendation{
	ServiceBankAccount: {
		Title:  "Open a Bank Account",
		Advice: "Having a formal bank account establishes a financial history that lenders can review.",
	},
	ServiceCooperative: {
		Title:  "Join a Cooperative",
		Advice: "Agricultural cooperatives can provide access to group loans and shared resources.",
	},
	ServiceInformalSavings: {
		Title:  "Participate in Savings Groups",
		Advice: "Savings groups provide discipline and can be a stepping stone to formal financial services.",
	},
	ServiceInsurance: {
		Title:  "Obtain Agricultural Insurance",
		Advice: "Insurance reduces risk for both farmers and lenders.",
	},
	ServiceProxyBanking: {
		Title:  "Explore Mobile Banking",
		Advice: "Mobile banking provides convenient access to financial services without requiring a full bank account.",
	},
}

// Recommend returns advice for every service used by fewer than half of the
// household's respondents.
func Recommend(ix *InclusionIndex) []Recommendation {
	if ix == nil {
		return nil
	}
	out := []Recommendation{}
	for _, s := range ix.PerService {
		if s.Percent >= 50 {
			continue
		}
		r := advice[s.Service]
		r.Service = s.Service
		out = append(out, r)
	}
	return out
}
