package rest

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"naijayield/internal/codes"
	"naijayield/internal/repository"
	"naijayield/internal/service"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// filterParam binds a request field to the code table its values come from.
type filterParam struct {
	name  string
	table codes.Table
}

var (
	zoneParam    = filterParam{"zone", codes.Zone}
	sectorParam  = filterParam{"sector", codes.Sector}
	purposeParam = filterParam{"loan_purpose", codes.LoanPurpose}
)

func (p filterParam) check(v *int) error {
	if v != nil && !p.table.Has(*v) {
		return &ValidationError{Field: p.name, Message: p.name + " must be a known " + p.table.Key + " code"}
	}
	return nil
}

func (p filterParam) fromQuery(q url.Values) (*int, error) {
	s := q.Get(p.name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, &ValidationError{Field: p.name, Message: p.name + " must be integer or empty"}
	}
	return &v, p.check(&v)
}

func (p filterParam) fromJSON(raw any) (*int, error) {
	v, err := toIntPtr(raw)
	if err != nil {
		return nil, &ValidationError{Field: p.name, Message: p.name + " must be integer or empty"}
	}
	return v, p.check(v)
}

// ParseLoanFilter reads the zone, sector and loan_purpose query parameters.
func ParseLoanFilter(r *http.Request) (repository.LoanFilter, error) {
	q := r.URL.Query()
	var f repository.LoanFilter
	var err error

	if f.ZoneCode, err = zoneParam.fromQuery(q); err != nil {
		return f, err
	}
	if f.SectorCode, err = sectorParam.fromQuery(q); err != nil {
		return f, err
	}
	if f.LoanPurpose, err = purposeParam.fromQuery(q); err != nil {
		return f, err
	}
	return f, nil
}

type ExportRequest struct {
	Fields      []string
	ZoneCode    *int
	SectorCode  *int
	LoanPurpose *int
}

type rawExportRequest struct {
	Fields      []string `json:"fields"`
	Zone        any      `json:"zone"`
	Sector      any      `json:"sector"`
	LoanPurpose any      `json:"loan_purpose"`
}

// ValidateExportRequest decodes a portfolio export request. Omitted fields
// select the default columns.
func ValidateExportRequest(r *http.Request) (*ExportRequest, error) {
	var raw rawExportRequest

	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	for _, f := range raw.Fields {
		if !service.IsPortfolioField(f) {
			return nil, &ValidationError{Field: "fields", Message: "unknown field: " + f}
		}
	}

	req := &ExportRequest{Fields: raw.Fields}
	var err error
	if req.ZoneCode, err = zoneParam.fromJSON(raw.Zone); err != nil {
		return nil, err
	}
	if req.SectorCode, err = sectorParam.fromJSON(raw.Sector); err != nil {
		return nil, err
	}
	if req.LoanPurpose, err = purposeParam.fromJSON(raw.LoanPurpose); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *ExportRequest) ToRepositoryFilter() repository.LoanFilter {
	return repository.LoanFilter{
		ZoneCode:    r.ZoneCode,
		SectorCode:  r.SectorCode,
		LoanPurpose: r.LoanPurpose,
	}
}

type DTIRequest struct {
	MonthlyDebts  float64
	MonthlyIncome float64
}

type rawDTIRequest struct {
	MonthlyDebts  *float64 `json:"monthly_debts"`
	MonthlyIncome *float64 `json:"monthly_income"`
}

func ValidateDTIRequest(r *http.Request) (*DTIRequest, error) {
	var raw rawDTIRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if raw.MonthlyDebts == nil {
		return nil, &ValidationError{Field: "monthly_debts", Message: "monthly_debts is required"}
	}
	if raw.MonthlyIncome == nil {
		return nil, &ValidationError{Field: "monthly_income", Message: "monthly_income is required"}
	}
	if *raw.MonthlyDebts < 0 {
		return nil, &ValidationError{Field: "monthly_debts", Message: "monthly_debts must not be negative"}
	}

	return &DTIRequest{MonthlyDebts: *raw.MonthlyDebts, MonthlyIncome: *raw.MonthlyIncome}, nil
}

func toIntPtr(v any) (*int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, &ValidationError{Message: "invalid value for int field"}
		}
		i := int(t)
		return &i, nil
	case string:
		if t == "" {
			return nil, nil
		}
		i, err := strconv.Atoi(t)
		if err != nil {
			return nil, err
		}
		return &i, nil
	default:
		return nil, &ValidationError{Message: "invalid type for int field"}
	}
}
