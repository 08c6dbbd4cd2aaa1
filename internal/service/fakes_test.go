package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"naijayield/internal/domain"
	"naijayield/internal/repository"
	"naijayield/pkg/cache/redis"
)

type fakeCache struct {
	mu   sync.Mutex
	kv   map[string]string
	sets map[string]map[string]bool
	ttls map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		kv:   map[string]string{},
		sets: map[string]map[string]bool{},
		ttls: map[string]time.Duration{},
	}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.kv[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kv[key] = fmt.Sprint(value)
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) SAdd(ctx context.Context, key string, members ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets[key] == nil {
		c.sets[key] = map[string]bool{}
	}
	for _, m := range members {
		c.sets[key][fmt.Sprint(m)] = true
	}
	return nil
}

func (c *fakeCache) SMembers(ctx context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for m := range c.sets[key] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

type fakeData struct {
	mu         sync.Mutex
	summaries  map[string]*domain.LoanRecord
	items      map[string][]domain.LoanLineItem
	inclusion  map[string][]domain.FinancialInclusionRecord
	err        error
	fetchCalls int
	listCalls  int
}

func newFakeData() *fakeData {
	return &fakeData{
		summaries: map[string]*domain.LoanRecord{},
		items:     map[string][]domain.LoanLineItem{},
		inclusion: map[string][]domain.FinancialInclusionRecord{},
	}
}

func (f *fakeData) FetchSummary(ctx context.Context, id string) (*domain.LoanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	return f.summaries[id], f.err
}

func (f *fakeData) FetchLoans(ctx context.Context, id string) ([]domain.LoanLineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id], f.err
}

func (f *fakeData) FetchInclusion(ctx context.Context, id string) ([]domain.FinancialInclusionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inclusion[id], f.err
}

func (f *fakeData) List(ctx context.Context, filter repository.LoanFilter) ([]domain.LoanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.LoanRecord
	for _, r := range f.summaries {
		if filter.ZoneCode != nil && (r.ZoneCode == nil || *r.ZoneCode != *filter.ZoneCode) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HouseholdID < out[j].HouseholdID })
	return out, nil
}

func (f *fakeData) HouseholdIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	for id := range f.summaries {
		seen[id] = true
	}
	for id := range f.items {
		seen[id] = true
	}
	for id := range f.inclusion {
		seen[id] = true
	}
	var out []string
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, f.err
}

type sentMessage struct {
	Kind     string
	UserID   string
	ExportID string
	Progress float64
	Stage    string
	URL      string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *fakeNotifier) NotifyExportProgress(ctx context.Context, userID, exportID string, progress float64, stage string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Kind: "progress", UserID: userID, ExportID: exportID, Progress: progress, Stage: stage})
	return nil
}

func (n *fakeNotifier) NotifyExportComplete(ctx context.Context, userID, exportID, url, filename string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Kind: "complete", UserID: userID, ExportID: exportID, URL: url})
	return nil
}

func (n *fakeNotifier) NotifyExportFailed(ctx context.Context, userID, exportID, errMsg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Kind: "failed", UserID: userID, ExportID: exportID})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type fakePublisher struct {
	mu   sync.Mutex
	name string
	data []byte
	err  error
}

func (p *fakePublisher) Publish(ctx context.Context, fileName string, data []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.name, p.data = fileName, data
	return "https://files.example/" + fileName, nil
}

func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }

func lineItem(hh, id string, purpose, repaid int, amount float64) domain.LoanLineItem {
	return domain.LoanLineItem{HouseholdID: hh, LoanID: id, LoanPurpose: purpose, LoanAmount: ptrFloat64(amount), IsFullyRepaid: repaid}
}

func respondent(hh string, bank, coop, savings, insurance, proxy int) domain.FinancialInclusionRecord {
	return domain.FinancialInclusionRecord{
		HouseholdID:               hh,
		HasBankAccount:            ptrInt(bank),
		UsedCooperative:           ptrInt(coop),
		UsedInformalSavingsGroups: ptrInt(savings),
		HasInsurance:              ptrInt(insurance),
		HasProxyBankingAccess:     ptrInt(proxy),
	}
}

// scenarioData holds one household scoring 77 (Low Risk) and one with
// loans but no inclusion answers.
func scenarioData() *fakeData {
	d := newFakeData()
	d.summaries["HH-1"] = &domain.LoanRecord{HouseholdID: "HH-1", AppliedForLoan: 1, WasRejected: 2, ZoneCode: ptrInt(1), SectorCode: ptrInt(2), LoanAmount: ptrFloat64(100000)}
	d.items["HH-1"] = []domain.LoanLineItem{
		lineItem("HH-1", "L1", 1, 1, 100000),
		lineItem("HH-1", "L2", 2, 1, 100000),
		lineItem("HH-1", "L3", 3, 1, 100000),
		lineItem("HH-1", "L4", 9, 2, 100000),
	}
	d.inclusion["HH-1"] = []domain.FinancialInclusionRecord{respondent("HH-1", 1, 1, 1, 1, 2)}

	d.summaries["HH-2"] = &domain.LoanRecord{HouseholdID: "HH-2", AppliedForLoan: 2, WasRejected: 1, PrimaryRejectionReason: ptrInt(3), ZoneCode: ptrInt(3)}
	d.items["HH-2"] = []domain.LoanLineItem{
		lineItem("HH-2", "L1", 2, 1, 50000),
		lineItem("HH-2", "L2", 10, 2, 20000),
	}
	return d
}
