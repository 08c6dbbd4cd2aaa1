package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"naijayield/internal/clients"
	"naijayield/internal/domain"
	"naijayield/internal/repository"
)

// Cache is the subset of redis the services use. A nil Cache disables
// caching and export tracking.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SAdd(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

type LoanFetcher interface {
	FetchSummary(ctx context.Context, householdID string) (*domain.LoanRecord, error)
	FetchLoans(ctx context.Context, householdID string) ([]domain.LoanLineItem, error)
}

type InclusionFetcher interface {
	FetchInclusion(ctx context.Context, householdID string) ([]domain.FinancialInclusionRecord, error)
}

type LoanLister interface {
	List(ctx context.Context, f repository.LoanFilter) ([]domain.LoanRecord, error)
	HouseholdIDs(ctx context.Context) ([]string, error)
}

type Notifier interface {
	NotifyExportProgress(ctx context.Context, userID, exportID string, progress float64, stage string) error
	NotifyExportComplete(ctx context.Context, userID, exportID, url, filename string) error
	NotifyExportFailed(ctx context.Context, userID, exportID, errMsg string) error
}

// Publisher stores a finished file and returns its download URL.
type Publisher interface {
	Publish(ctx context.Context, fileName string, data []byte) (string, error)
}

// getJSON reads key into dst. It reports false on a miss, a disabled cache
// or an unreadable entry.
func getJSON(ctx context.Context, cache Cache, key string, dst any) bool {
	if cache == nil {
		return false
	}
	raw, err := cache.Get(ctx, key)
	if err != nil {
		if !clients.IsCacheMiss(err) {
			zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		zap.L().Warn("cache entry unreadable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func setJSON(ctx context.Context, cache Cache, key string, v any, ttl time.Duration) error {
	if cache == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "service: encode %s", key)
	}
	return cache.Set(ctx, key, string(data), ttl)
}
