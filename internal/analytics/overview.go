// Package analytics computes the population-level figures shown on the
// portfolio dashboard from the household loan summaries.
package analytics

import (
	"math"
	"sort"

	"naijayield/internal/codes"
	"naijayield/internal/domain"
	"naijayield/internal/scoring"
)

type Slice struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type LabelCount struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type PurposeAmount struct {
	Code  int     `json:"code"`
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

type AmountDistribution struct {
	Count      int     `json:"count"`
	Outliers   int     `json:"outliers"`
	UpperBound float64 `json:"upper_bound"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	Buckets    []Slice `json:"buckets"`
}

type RatioDistribution struct {
	Count  int       `json:"count"`
	Mean   float64   `json:"mean"`
	Ratios []float64 `json:"ratios"`
}

// Overview is everything the portfolio dashboard needs in one value.
type Overview struct {
	Households          int                 `json:"households"`
	ApplicationStatus   []Slice             `json:"application_status"`
	Outcomes            []Slice             `json:"outcomes"`
	TopPurposes         []LabelCount        `json:"top_purposes"`
	RejectionReasons    []LabelCount        `json:"rejection_reasons"`
	NoApplyReasons      []LabelCount        `json:"no_apply_reasons"`
	LoanAmounts         *AmountDistribution `json:"loan_amounts"`
	MeanAmountByPurpose []PurposeAmount     `json:"mean_amount_by_purpose"`
	Sufficiency         []Slice             `json:"sufficiency"`
	RepaymentStatus     []Slice             `json:"repayment_status"`
	RepaymentRatios     RatioDistribution   `json:"repayment_ratios"`
}

const (
	topPurposeLimit    = 10
	minLoansPerPurpose = 5
	maxPlottedRatio    = 2.0
)

// Build computes the overview. Missing values are skipped per figure.
func Build(records []domain.LoanRecord) Overview {
	return Overview{
		Households:          len(records),
		ApplicationStatus:   applicationStatus(records),
		Outcomes:            outcomes(records),
		TopPurposes:         topPurposes(records),
		RejectionReasons:    rejectionReasons(records),
		NoApplyReasons:      noApplyReasons(records),
		LoanAmounts:         loanAmounts(records),
		MeanAmountByPurpose: meanAmountByPurpose(records),
		Sufficiency:         codedSplit(records, func(r domain.LoanRecord) *int { return r.LoanSufficient }, "Sufficient", "Insufficient"),
		RepaymentStatus:     codedSplit(records, func(r domain.LoanRecord) *int { return r.IsFullyRepaid }, "Fully Repaid", "Not Fully Repaid"),
		RepaymentRatios:     repaymentRatios(records),
	}
}

func withPercent(slices []Slice) []Slice {
	var total int
	for _, s := range slices {
		total += s.Count
	}
	if total == 0 {
		return slices
	}
	for i := range slices {
		slices[i].Percent = float64(slices[i].Count) / float64(total) * 100
	}
	return slices
}

func applicationStatus(records []domain.LoanRecord) []Slice {
	var applied, none int
	for _, r := range records {
		switch r.AppliedForLoan {
		case domain.CodeYes:
			applied++
		case domain.CodeNo:
			none++
		}
	}
	return withPercent([]Slice{
		{Label: "Applied for Loan", Count: applied},
		{Label: "No Application", Count: none},
	})
}

func neededNoApply(r domain.LoanRecord) bool {
	return r.AppliedForLoan != domain.CodeYes && r.NeededLoan == domain.CodeYes
}

func outcomes(records []domain.LoanRecord) []Slice {
	var approved, rejected, needed int
	for _, r := range records {
		if r.AppliedForLoan == domain.CodeYes && r.WasRejected != domain.CodeYes {
			approved++
		}
		if r.WasRejected == domain.CodeYes {
			rejected++
		}
		if neededNoApply(r) {
			needed++
		}
	}
	return withPercent([]Slice{
		{Label: "Approved", Count: approved},
		{Label: "Rejected", Count: rejected},
		{Label: "Needed but Did Not Apply", Count: needed},
	})
}

func countCodes(table codes.Table, values []int) []LabelCount {
	counts := map[int]int{}
	for _, v := range values {
		counts[v]++
	}
	out := make([]LabelCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, LabelCount{Code: c, Label: table.Label(c), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func topPurposes(records []domain.LoanRecord) []LabelCount {
	var vals []int
	for _, r := range records {
		if r.LoanPurpose != nil {
			vals = append(vals, *r.LoanPurpose)
		}
	}
	out := countCodes(codes.LoanPurpose, vals)
	if len(out) > topPurposeLimit {
		out = out[:topPurposeLimit]
	}
	return out
}

func rejectionReasons(records []domain.LoanRecord) []LabelCount {
	var vals []int
	for _, r := range records {
		if r.WasRejected == domain.CodeYes && r.PrimaryRejectionReason != nil {
			vals = append(vals, *r.PrimaryRejectionReason)
		}
	}
	return countCodes(codes.RejectionReason, vals)
}

func noApplyReasons(records []domain.LoanRecord) []LabelCount {
	var vals []int
	for _, r := range records {
		if neededNoApply(r) && r.PrimaryReasonNoBorrowing != nil {
			vals = append(vals, *r.PrimaryReasonNoBorrowing)
		}
	}
	return countCodes(codes.NonApplicationReason, vals)
}

var sizeBuckets = []struct {
	label string
	upTo  float64
}{
	{"< 50K", 50000},
	{"50K-100K", 100000},
	{"100K-250K", 250000},
	{"250K-500K", 500000},
	{"> 500K", math.Inf(1)},
}

// loanAmounts drops outliers above Q3 + 1.5*IQR before summarising.
func loanAmounts(records []domain.LoanRecord) *AmountDistribution {
	var amounts []float64
	for _, r := range records {
		if r.LoanAmount != nil && !math.IsNaN(*r.LoanAmount) {
			amounts = append(amounts, *r.LoanAmount)
		}
	}
	if len(amounts) == 0 {
		return nil
	}
	sort.Float64s(amounts)

	q1, q3 := Quantile(amounts, 0.25), Quantile(amounts, 0.75)
	upper := q3 + 1.5*(q3-q1)

	kept := amounts[:0:0]
	for _, a := range amounts {
		if a <= upper {
			kept = append(kept, a)
		}
	}

	d := &AmountDistribution{
		Count:      len(kept),
		Outliers:   len(amounts) - len(kept),
		UpperBound: upper,
		Mean:       Mean(kept),
		Median:     Quantile(kept, 0.5),
	}

	buckets := make([]Slice, len(sizeBuckets))
	for i, b := range sizeBuckets {
		buckets[i].Label = b.label
	}
	for _, a := range kept {
		for i, b := range sizeBuckets {
			if a <= b.upTo {
				buckets[i].Count++
				break
			}
		}
	}
	d.Buckets = withPercent(buckets)
	return d
}

func meanAmountByPurpose(records []domain.LoanRecord) []PurposeAmount {
	sums := map[int]float64{}
	counts := map[int]int{}
	for _, r := range records {
		if r.LoanPurpose == nil || r.LoanAmount == nil {
			continue
		}
		sums[*r.LoanPurpose] += *r.LoanAmount
		counts[*r.LoanPurpose]++
	}

	out := []PurposeAmount{}
	for code, n := range counts {
		if n < minLoansPerPurpose {
			continue
		}
		out = append(out, PurposeAmount{
			Code:  code,
			Label: codes.LoanPurpose.Label(code),
			Mean:  sums[code] / float64(n),
			Count: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean < out[j].Mean
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func codedSplit(records []domain.LoanRecord, field func(domain.LoanRecord) *int, yes, no string) []Slice {
	var y, n int
	for _, r := range records {
		v := field(r)
		if v == nil {
			continue
		}
		switch *v {
		case domain.CodeYes:
			y++
		case domain.CodeNo:
			n++
		}
	}
	return withPercent([]Slice{{Label: yes, Count: y}, {Label: no, Count: n}})
}

func repaymentRatios(records []domain.LoanRecord) RatioDistribution {
	d := RatioDistribution{Ratios: []float64{}}
	for _, r := range records {
		ratio, ok := scoring.RepaymentRatio(r.TotalAmountPaid, r.LoanAmount)
		if !ok || ratio < 0 || ratio > maxPlottedRatio {
			continue
		}
		d.Ratios = append(d.Ratios, ratio)
	}
	d.Count = len(d.Ratios)
	d.Mean = Mean(d.Ratios)
	return d
}
