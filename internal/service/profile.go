package service

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"naijayield/internal/codes"
	"naijayield/internal/domain"
	"naijayield/internal/scoring"
)

var ErrHouseholdNotFound = eris.New("service: household not found")

type InclusionSummary struct {
	scoring.InclusionIndex
	Status          scoring.InclusionStatus `json:"status"`
	ServicesUsed    []string                `json:"services_used"`
	ServicesTracked int                     `json:"services_tracked"`
}

// HouseholdProfile is everything known about one household's credit standing.
type HouseholdProfile struct {
	HouseholdID     string                   `json:"household_id"`
	Zone            string                   `json:"zone,omitempty"`
	Sector          string                   `json:"sector,omitempty"`
	LoanHistory     scoring.LoanHistory      `json:"loan_history"`
	Loans           scoring.LoanStats        `json:"loans"`
	Inclusion       *InclusionSummary        `json:"inclusion"`
	Credit          scoring.CreditProfile    `json:"credit"`
	Recommendations []scoring.Recommendation `json:"recommendations"`
}

// InclusionAnswer is one respondent's coded answers, labelled for display.
type InclusionAnswer struct {
	Service string `json:"service"`
	Code    *int   `json:"code"`
	Uses    bool   `json:"uses"`
}

type HouseholdInclusion struct {
	HouseholdID string              `json:"household_id"`
	Respondents [][]InclusionAnswer `json:"respondents"`
	Index       *InclusionSummary   `json:"index"`
}

type ProfileService struct {
	loans     LoanFetcher
	inclusion InclusionFetcher
	lister    LoanLister
	cache     Cache
	ttl       time.Duration
}

func NewProfileService(loans LoanFetcher, inclusion InclusionFetcher, lister LoanLister, cache Cache, ttl time.Duration) *ProfileService {
	return &ProfileService{
		loans:     loans,
		inclusion: inclusion,
		lister:    lister,
		cache:     cache,
		ttl:       ttl,
	}
}

func profileKey(householdID string) string {
	return "profile:" + householdID
}

type householdData struct {
	summary   *domain.LoanRecord
	items     []domain.LoanLineItem
	inclusion []domain.FinancialInclusionRecord
}

func (s *ProfileService) fetch(ctx context.Context, householdID string) (*householdData, error) {
	var d householdData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.summary, err = s.loans.FetchSummary(gctx, householdID)
		return err
	})
	g.Go(func() (err error) {
		d.items, err = s.loans.FetchLoans(gctx, householdID)
		return err
	})
	g.Go(func() (err error) {
		d.inclusion, err = s.inclusion.FetchInclusion(gctx, householdID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrapf(err, "service: fetch household %s", householdID)
	}

	if d.summary == nil && len(d.items) == 0 && len(d.inclusion) == 0 {
		return nil, ErrHouseholdNotFound
	}
	return &d, nil
}

func summarizeInclusion(records []domain.FinancialInclusionRecord) *InclusionSummary {
	ix := scoring.BuildInclusionIndex(records)
	if ix == nil {
		return nil
	}
	return &InclusionSummary{
		InclusionIndex:  *ix,
		Status:          scoring.InclusionStatusFor(ix.Aggregate),
		ServicesUsed:    scoring.ServicesUsed(records),
		ServicesTracked: scoring.ServicesTracked,
	}
}

// BuildProfile runs the scoring pipeline over already fetched data.
func BuildProfile(householdID string, summary *domain.LoanRecord, items []domain.LoanLineItem, inclusion []domain.FinancialInclusionRecord) HouseholdProfile {
	ix := scoring.BuildInclusionIndex(inclusion)

	p := HouseholdProfile{
		HouseholdID:     householdID,
		LoanHistory:     scoring.DescribeLoanHistory(summary),
		Loans:           scoring.SummarizeLoans(items),
		Inclusion:       summarizeInclusion(inclusion),
		Credit:          scoring.Score(items, ix),
		Recommendations: scoring.Recommend(ix),
	}
	if summary != nil {
		if summary.ZoneCode != nil {
			p.Zone = codes.Zone.Label(*summary.ZoneCode)
		}
		if summary.SectorCode != nil {
			p.Sector = codes.Sector.Label(*summary.SectorCode)
		}
	}
	return p
}

func (s *ProfileService) HouseholdProfile(ctx context.Context, householdID string) (*HouseholdProfile, error) {
	var cached HouseholdProfile
	if getJSON(ctx, s.cache, profileKey(householdID), &cached) {
		return &cached, nil
	}

	d, err := s.fetch(ctx, householdID)
	if err != nil {
		return nil, err
	}

	p := BuildProfile(householdID, d.summary, d.items, d.inclusion)

	if err := setJSON(ctx, s.cache, profileKey(householdID), p, s.ttl); err != nil {
		zap.L().Warn("cache profile", zap.String("household_id", householdID), zap.Error(err))
	}
	return &p, nil
}

func (s *ProfileService) HouseholdInclusion(ctx context.Context, householdID string) (*HouseholdInclusion, error) {
	records, err := s.inclusion.FetchInclusion(ctx, householdID)
	if err != nil {
		return nil, eris.Wrapf(err, "service: fetch inclusion of %s", householdID)
	}
	if len(records) == 0 {
		return nil, ErrHouseholdNotFound
	}

	out := &HouseholdInclusion{
		HouseholdID: householdID,
		Respondents: make([][]InclusionAnswer, 0, len(records)),
		Index:       summarizeInclusion(records),
	}
	for _, r := range records {
		out.Respondents = append(out.Respondents, []InclusionAnswer{
			answer(scoring.ServiceBankAccount, r.HasBankAccount),
			answer(scoring.ServiceCooperative, r.UsedCooperative),
			answer(scoring.ServiceInformalSavings, r.UsedInformalSavingsGroups),
			answer(scoring.ServiceInsurance, r.HasInsurance),
			answer(scoring.ServiceProxyBanking, r.HasProxyBankingAccess),
		})
	}
	return out, nil
}

func answer(service string, code *int) InclusionAnswer {
	return InclusionAnswer{Service: service, Code: code, Uses: code != nil && *code == domain.CodeYes}
}

// Households lists every household id in the dataset.
func (s *ProfileService) Households(ctx context.Context) ([]string, error) {
	ids, err := s.lister.HouseholdIDs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "service: list households")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
