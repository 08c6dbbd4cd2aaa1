package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"naijayield/internal/codes"
	"naijayield/internal/scoring"
)

func (h *Handler) listHouseholds(w http.ResponseWriter, r *http.Request) {
	ids, err := h.profiles.Households(r.Context())
	if err != nil {
		writeServiceError(w, "list households", err, "failed to list households")
		return
	}
	Success(w, "", ids)
}

func (h *Handler) householdProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		ErrorBadRequest(w, "id is required")
		return
	}

	p, err := h.profiles.HouseholdProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, "household profile", err, "failed to build profile")
		return
	}
	Success(w, "", p)
}

func (h *Handler) householdInclusion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		ErrorBadRequest(w, "id is required")
		return
	}

	inc, err := h.profiles.HouseholdInclusion(r.Context(), id)
	if err != nil {
		writeServiceError(w, "household inclusion", err, "failed to get inclusion")
		return
	}
	Success(w, "", inc)
}

func (h *Handler) dashboardOverview(w http.ResponseWriter, r *http.Request) {
	f, err := ParseLoanFilter(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	o, err := h.dashboard.Overview(r.Context(), f)
	if err != nil {
		writeServiceError(w, "dashboard", err, "failed to build dashboard")
		return
	}
	Success(w, "", o)
}

type codeTable struct {
	Key     string        `json:"key"`
	Name    string        `json:"name"`
	Entries []codes.Entry `json:"entries"`
}

func (h *Handler) listCodes(w http.ResponseWriter, r *http.Request) {
	tables := codes.Tables()
	out := make([]codeTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, codeTable{Key: t.Key, Name: t.Name, Entries: t.Entries()})
	}
	Success(w, "", out)
}

func (h *Handler) lookupCode(w http.ResponseWriter, r *http.Request) {
	t, ok := codes.ByKey(chi.URLParam(r, "table"))
	if !ok {
		ErrorNotFound(w, "code table not found")
		return
	}
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		ErrorBadRequest(w, "code must be integer")
		return
	}

	Success(w, "", map[string]any{
		"table": t.Key,
		"code":  code,
		"label": codes.MapCode(code, t),
		"known": t.Has(code),
	})
}

type dtiResponse struct {
	Ratio   *float64         `json:"ratio"`
	Band    scoring.DebtBand `json:"band,omitempty"`
	Defined bool             `json:"defined"`
}

func (h *Handler) debtToIncome(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateDTIRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	ratio, band, ok := scoring.DebtToIncome(req.MonthlyDebts, req.MonthlyIncome)
	res := dtiResponse{Band: band, Defined: ok}
	if ok {
		res.Ratio = &ratio
	}
	Success(w, "", res)
}
