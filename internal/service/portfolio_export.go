package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"naijayield/internal/repository"
)

const (
	exportSetKey  = "export_ids"
	exportTTL     = 20 * time.Minute
	exportTypeKey = "portfolio"

	// Progress milestones. Scoring fills 0..scoredProgress.
	scoredProgress    = 80
	writtenProgress   = 90
	uploadingProgress = 95
)

var ErrUnknownExportField = eris.New("service: unknown export field")

type ExportStatus struct {
	Key      string    `json:"key"`
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	Filters  any       `json:"filters"`
	Progress float64   `json:"progress"`
	FileURL  *string   `json:"file_url"`
	Error    *string   `json:"error,omitempty"`
	Created  time.Time `json:"created_at"`
}

type PortfolioColumn struct {
	Header string
	Value  func(p HouseholdProfile) any
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return math.Round(*v*100) / 100
}

var portfolioColumns = map[string]PortfolioColumn{
	"household_id": {
		Header: "Household ID",
		Value:  func(p HouseholdProfile) any { return p.HouseholdID },
	},
	"zone": {
		Header: "Zone",
		Value:  func(p HouseholdProfile) any { return p.Zone },
	},
	"sector": {
		Header: "Sector",
		Value:  func(p HouseholdProfile) any { return p.Sector },
	},
	"loan_history": {
		Header: "Loan History",
		Value:  func(p HouseholdProfile) any { return string(p.LoanHistory.Status) },
	},
	"loan_count": {
		Header: "Loans",
		Value:  func(p HouseholdProfile) any { return p.Loans.LoanCount },
	},
	"total_borrowed": {
		Header: "Total Borrowed (₦)",
		Value:  func(p HouseholdProfile) any { return p.Loans.TotalBorrowed },
	},
	"repayment_rate": {
		Header: "Repayment Rate (%)",
		Value:  func(p HouseholdProfile) any { return optional(p.Loans.RepaymentRate) },
	},
	"agricultural_pct": {
		Header: "Agricultural Loans (%)",
		Value:  func(p HouseholdProfile) any { return optional(p.Loans.AgriculturalPct) },
	},
	"inclusion_index": {
		Header: "Financial Inclusion (%)",
		Value: func(p HouseholdProfile) any {
			if p.Inclusion == nil {
				return ""
			}
			return optional(&p.Inclusion.Aggregate)
		},
	},
	"repayment_score": {
		Header: "Repayment Score (/40)",
		Value:  func(p HouseholdProfile) any { return optional(p.Credit.RepaymentScore) },
	},
	"utilization_score": {
		Header: "Utilization Score (/20)",
		Value:  func(p HouseholdProfile) any { return optional(p.Credit.UtilizationScore) },
	},
	"inclusion_score": {
		Header: "Inclusion Score (/40)",
		Value:  func(p HouseholdProfile) any { return optional(p.Credit.InclusionScore) },
	},
	"final_score": {
		Header: "Credit Score",
		Value:  func(p HouseholdProfile) any { return optional(p.Credit.FinalScore) },
	},
	"risk_category": {
		Header: "Risk Category",
		Value: func(p HouseholdProfile) any {
			if p.Credit.InsufficientData {
				return "Insufficient data"
			}
			return string(p.Credit.RiskCategory)
		},
	},
	"recommended_max_loan": {
		Header: "Recommended Max Loan",
		Value:  func(p HouseholdProfile) any { return p.Credit.RecommendedMaxLoan },
	},
}

var defaultPortfolioFields = []string{
	"household_id",
	"zone",
	"final_score",
	"risk_category",
	"recommended_max_loan",
}

// PortfolioFields lists the selectable export columns.
func PortfolioFields() []string {
	out := make([]string, 0, len(portfolioColumns))
	for k := range portfolioColumns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func IsPortfolioField(name string) bool {
	_, ok := portfolioColumns[name]
	return ok
}

type PortfolioExportService struct {
	loans       LoanLister
	items       LoanFetcher
	inclusion   InclusionFetcher
	cache       Cache
	publisher   Publisher
	ws          Notifier
	concurrency int

	now func() time.Time
}

func NewPortfolioExportService(
	loans LoanLister,
	items LoanFetcher,
	inclusion InclusionFetcher,
	cache Cache,
	publisher Publisher,
	ws Notifier,
	concurrency int,
) *PortfolioExportService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &PortfolioExportService{
		loans:       loans,
		items:       items,
		inclusion:   inclusion,
		cache:       cache,
		publisher:   publisher,
		ws:          ws,
		concurrency: concurrency,
		now:         time.Now,
	}
}

func buildPortfolioFiltersMap(f repository.LoanFilter, fields []string) map[string]any {
	val := func(p *int) any {
		if p == nil {
			return nil
		}
		return *p
	}
	return map[string]any{
		"zone":         val(f.ZoneCode),
		"sector":       val(f.SectorCode),
		"loan_purpose": val(f.LoanPurpose),
		"fields":       fields,
	}
}

// StartPortfolioExport validates the selection, records a pending export and
// builds the workbook in the background. It returns the export id.
func (s *PortfolioExportService) StartPortfolioExport(
	ctx context.Context,
	selected []string,
	filter repository.LoanFilter,
	userID string,
) (string, error) {
	if len(selected) == 0 {
		selected = defaultPortfolioFields
	}
	for _, key := range selected {
		if !IsPortfolioField(key) {
			return "", eris.Wrap(ErrUnknownExportField, key)
		}
	}
	filter.HouseholdID = nil

	status := &ExportStatus{
		Key:     "exports:" + uuid.NewString(),
		Type:    exportTypeKey,
		UserID:  userID,
		Filters: buildPortfolioFiltersMap(filter, selected),
		Created: s.now(),
	}

	if err := s.saveExportStatus(ctx, status); err != nil {
		return "", err
	}

	go s.runPortfolioExport(context.Background(), status, selected, filter)

	return status.Key, nil
}

func (s *PortfolioExportService) saveExportStatus(ctx context.Context, st *ExportStatus) error {
	if s.cache == nil {
		return nil
	}
	if err := setJSON(ctx, s.cache, st.Key, st, exportTTL); err != nil {
		return eris.Wrapf(err, "service: save export %s", st.Key)
	}
	if err := s.cache.SAdd(ctx, exportSetKey, st.Key); err != nil {
		return eris.Wrapf(err, "service: index export %s", st.Key)
	}
	return nil
}

// exportRun serialises status updates coming from the scoring workers.
type exportRun struct {
	svc    *PortfolioExportService
	status *ExportStatus
	mu     sync.Mutex
}

func (r *exportRun) progress(ctx context.Context, progress float64, stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if progress < r.status.Progress {
		return
	}
	r.status.Progress = progress

	if err := r.svc.saveExportStatus(ctx, r.status); err != nil {
		zap.L().Warn("save export progress", zap.String("export_id", r.status.Key), zap.Error(err))
	}
	if r.svc.ws != nil {
		_ = r.svc.ws.NotifyExportProgress(ctx, r.status.UserID, r.status.Key, progress, stage)
	}
}

func (r *exportRun) fail(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	zap.L().Error("portfolio export failed", zap.String("export_id", r.status.Key), zap.Error(err))

	msg := "export failed"
	r.status.Error = &msg
	if err := r.svc.saveExportStatus(ctx, r.status); err != nil {
		zap.L().Warn("save export failure", zap.String("export_id", r.status.Key), zap.Error(err))
	}
	if r.svc.ws != nil {
		_ = r.svc.ws.NotifyExportFailed(ctx, r.status.UserID, r.status.Key, msg)
	}
}

func (s *PortfolioExportService) runPortfolioExport(
	ctx context.Context,
	status *ExportStatus,
	selected []string,
	filter repository.LoanFilter,
) {
	run := &exportRun{svc: s, status: status}

	profiles, err := s.scoreHouseholds(ctx, run, filter)
	if err != nil {
		run.fail(ctx, err)
		return
	}

	data, err := writePortfolio(profiles, selected, status.UserID)
	if err != nil {
		run.fail(ctx, err)
		return
	}
	run.progress(ctx, writtenProgress, "writing")

	if s.publisher == nil {
		run.fail(ctx, eris.New("service: no file storage configured"))
		return
	}

	run.progress(ctx, uploadingProgress, "uploading")

	fileName := fmt.Sprintf("portfolio_%s.xlsx", s.now().Format("20060102_150405"))
	url, err := s.publisher.Publish(ctx, fileName, data)
	if err != nil {
		run.fail(ctx, err)
		return
	}

	run.mu.Lock()
	status.FileURL = &url
	run.mu.Unlock()
	run.progress(ctx, 100, "ready")

	if s.ws != nil {
		_ = s.ws.NotifyExportComplete(ctx, status.UserID, status.Key, url, fileName)
	}
	zap.L().Info("portfolio export ready", zap.String("export_id", status.Key), zap.Int("households", len(profiles)))
}

// scoreHouseholds builds the profile of every household matching filter,
// fetching at most s.concurrency households at once.
func (s *PortfolioExportService) scoreHouseholds(ctx context.Context, run *exportRun, filter repository.LoanFilter) ([]HouseholdProfile, error) {
	records, err := s.loans.List(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "service: list export households")
	}

	total := len(records)
	profiles := make([]HouseholdProfile, total)
	step := max(total/20, 1)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range records {
		g.Go(func() error {
			rec := &records[i]

			items, err := s.items.FetchLoans(gctx, rec.HouseholdID)
			if err != nil {
				return err
			}
			inclusion, err := s.inclusion.FetchInclusion(gctx, rec.HouseholdID)
			if err != nil {
				return err
			}
			profiles[i] = BuildProfile(rec.HouseholdID, rec, items, inclusion)

			if n := int(done.Add(1)); n%step == 0 || n == total {
				run.progress(gctx, math.Round(float64(n)/float64(total)*scoredProgress), "scoring")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "service: score households")
	}
	return profiles, nil
}

func writePortfolio(profiles []HouseholdProfile, selected []string, userID string) ([]byte, error) {
	cols := make([]PortfolioColumn, 0, len(selected))
	for _, key := range selected {
		cols = append(cols, portfolioColumns[key])
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Portfolio"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, eris.Wrap(err, "service: name sheet")
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: "user_" + userID,
		Title:   "Household credit portfolio",
	})

	header := make([]any, len(cols))
	for i, col := range cols {
		header[i] = col.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, eris.Wrap(err, "service: write header")
	}

	for r, p := range profiles {
		row := make([]any, len(cols))
		for i, col := range cols {
			row[i] = col.Value(p)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, eris.Wrapf(err, "service: write row %d", r+2)
		}
	}

	if len(cols) > 0 {
		last, _ := excelize.ColumnNumberToName(len(cols))
		_ = f.SetColWidth(sheet, "A", last, 22)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, eris.Wrap(err, "service: encode workbook")
	}
	return buf.Bytes(), nil
}
