package scoring

import "naijayield/internal/domain"

// Service names, in display order.
const (
	ServiceBankAccount     = "Bank Account"
	ServiceCooperative     = "Cooperative"
	ServiceInformalSavings = "Informal Savings"
	ServiceInsurance       = "Insurance"
	ServiceProxyBanking    = "Proxy Banking"
)

type service struct {
	name string
	flag func(r domain.FinancialInclusionRecord) *int
}

var services = []service{
	{ServiceBankAccount, func(r domain.FinancialInclusionRecord) *int { return r.HasBankAccount }},
	{ServiceCooperative, func(r domain.FinancialInclusionRecord) *int { return r.UsedCooperative }},
	{ServiceInformalSavings, func(r domain.FinancialInclusionRecord) *int { return r.UsedInformalSavingsGroups }},
	{ServiceInsurance, func(r domain.FinancialInclusionRecord) *int { return r.HasInsurance }},
	{ServiceProxyBanking, func(r domain.FinancialInclusionRecord) *int { return r.HasProxyBankingAccess }},
}

// ServiceScore is the share of respondents using one financial service.
type ServiceScore struct {
	Service string  `json:"service"`
	Percent float64 `json:"percent"`
}

// InclusionIndex summarises a household's financial service usage.
type InclusionIndex struct {
	PerService []ServiceScore `json:"per_service"`
	Aggregate  float64        `json:"aggregate"`
	Records    int            `json:"records"`
}

// Percent returns the score for the named service.
func (ix InclusionIndex) Percent(name string) (float64, bool) {
	for _, s := range ix.PerService {
		if s.Service == name {
			return s.Percent, true
		}
	}
	return 0, false
}

// BuildInclusionIndex computes the per-service usage percentages and their
// mean. It returns nil when there is nothing to score: no records, or no
// answered question at all. A nil index means "no inclusion data", not 0.
func BuildInclusionIndex(records []domain.FinancialInclusionRecord) *InclusionIndex {
	if len(records) == 0 {
		return nil
	}

	ix := &InclusionIndex{Records: len(records)}
	var sum float64
	for _, svc := range services {
		var total, n float64
		for _, r := range records {
			v := svc.flag(r)
			if v == nil || (*v != domain.CodeYes && *v != domain.CodeNo) {
				continue
			}
			total += float64(*v)
			n++
		}
		if n == 0 {
			continue
		}
		// Survey coding: 1 = yes, 2 = no. A mean of 1 (everyone uses the
		// service) maps to 100%, a mean of 2 (no one does) to 0%.
		pct := (2 - total/n) * 100
		ix.PerService = append(ix.PerService, ServiceScore{Service: svc.name, Percent: pct})
		sum += pct
	}
	if len(ix.PerService) == 0 {
		return nil
	}
	ix.Aggregate = sum / float64(len(ix.PerService))
	return ix
}
