package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"naijayield/internal/clients"
)

var (
	ErrExportNotFound     = eris.New("service: export not found")
	ErrExportsUnavailable = eris.New("service: export tracking is disabled")
)

// ExportView is an export status as shown to its owner.
type ExportView struct {
	Key       string  `json:"key"`
	Type      string  `json:"type"`
	UserID    string  `json:"user_id"`
	Progress  float64 `json:"progress"`
	FileURL   *string `json:"file_url"`
	Error     *string `json:"error,omitempty"`
	Filters   any     `json:"filters"`
	CreatedAt string  `json:"created_at"`
}

type ExportService struct {
	cache Cache
	now   func() time.Time
}

func NewExportService(cache Cache) *ExportService {
	return &ExportService{cache: cache, now: time.Now}
}

// humanizeAgo renders t relative to now, e.g. "3 minutes ago". Anything
// older than 30 days is shown as a date.
func humanizeAgo(t, now time.Time) string {
	if !t.Before(now) || now.Sub(t) < time.Minute {
		return "just now"
	}
	if now.Sub(t) >= 30*24*time.Hour {
		return t.Format("02 Jan 2006 15:04")
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func (s *ExportService) view(st ExportStatus) ExportView {
	return ExportView{
		Key:       st.Key,
		Type:      st.Type,
		UserID:    st.UserID,
		Progress:  st.Progress,
		FileURL:   st.FileURL,
		Error:     st.Error,
		Filters:   st.Filters,
		CreatedAt: humanizeAgo(st.Created, s.now()),
	}
}

func (s *ExportService) load(ctx context.Context, key string) (*ExportStatus, error) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if clients.IsCacheMiss(err) {
			return nil, ErrExportNotFound
		}
		return nil, eris.Wrapf(err, "service: load export %s", key)
	}

	var st ExportStatus
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, eris.Wrapf(err, "service: decode export %s", key)
	}
	return &st, nil
}

// GetExports lists the user's exports, newest first. Expired entries are
// skipped.
func (s *ExportService) GetExports(ctx context.Context, userID string) ([]ExportView, error) {
	if s.cache == nil {
		return nil, ErrExportsUnavailable
	}

	keys, err := s.cache.SMembers(ctx, exportSetKey)
	if err != nil {
		return nil, eris.Wrap(err, "service: list export keys")
	}

	var statuses []ExportStatus
	for _, key := range keys {
		st, err := s.load(ctx, key)
		if err != nil {
			if !eris.Is(err, ErrExportNotFound) {
				zap.L().Warn("skip export", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		if st.UserID == userID {
			statuses = append(statuses, *st)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	out := make([]ExportView, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, s.view(st))
	}
	return out, nil
}

// GetExport returns one export. Exports of other users read as not found.
func (s *ExportService) GetExport(ctx context.Context, exportID, userID string) (*ExportView, error) {
	if s.cache == nil {
		return nil, ErrExportsUnavailable
	}

	st, err := s.load(ctx, exportID)
	if err != nil {
		return nil, err
	}
	if st.UserID != userID {
		return nil, ErrExportNotFound
	}

	v := s.view(*st)
	return &v, nil
}
