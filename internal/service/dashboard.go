package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"naijayield/internal/analytics"
	"naijayield/internal/repository"
)

type DashboardService struct {
	loans LoanLister
	cache Cache
	ttl   time.Duration
}

func NewDashboardService(loans LoanLister, cache Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{loans: loans, cache: cache, ttl: ttl}
}

func dashboardKey(f repository.LoanFilter) string {
	part := func(p *int) string {
		if p == nil {
			return "*"
		}
		return fmt.Sprint(*p)
	}
	return fmt.Sprintf("dashboard:%s:%s:%s", part(f.ZoneCode), part(f.SectorCode), part(f.LoanPurpose))
}

// Overview returns the portfolio figures for the households matching f.
func (s *DashboardService) Overview(ctx context.Context, f repository.LoanFilter) (*analytics.Overview, error) {
	f.HouseholdID = nil
	key := dashboardKey(f)

	var cached analytics.Overview
	if getJSON(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	records, err := s.loans.List(ctx, f)
	if err != nil {
		return nil, eris.Wrap(err, "service: load dashboard data")
	}

	ov := analytics.Build(records)

	if err := setJSON(ctx, s.cache, key, ov, s.ttl); err != nil {
		zap.L().Warn("cache dashboard", zap.String("key", key), zap.Error(err))
	}
	return &ov, nil
}
