package repository

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"naijayield/internal/domain"
)

type LoanFilter struct {
	HouseholdID *string
	ZoneCode    *int
	SectorCode  *int
	LoanPurpose *int
}

type LoanRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewLoanRepository(db *sql.DB, d Dialect) *LoanRepository {
	return &LoanRepository{db: db, dialect: d}
}

const loanSummaryColumns = `
		SELECT
			h.household_id,
			COALESCE(h.applied_for_loan, 0),
			COALESCE(h.was_rejected, 0),
			COALESCE(h.needed_loan, 0),
			h.primary_rejection_reason,
			h.primary_reason_no_borrowing,
			h.loan_purpose,
			h.loan_amount,
			h.loan_sufficient,
			h.is_fully_repaid,
			h.total_amount_paid,
			h.zone,
			h.sector
		FROM credit_loan_history h
	`

// List returns household loan summaries matching f, ordered by household.
func (r *LoanRepository) List(ctx context.Context, f LoanFilter) ([]domain.LoanRecord, error) {
	q := newQuery(r.dialect)

	if f.HouseholdID != nil {
		q.and("h.household_id = %s", *f.HouseholdID)
	}
	if f.ZoneCode != nil {
		q.and("h.zone = %s", *f.ZoneCode)
	}
	if f.SectorCode != nil {
		q.and("h.sector = %s", *f.SectorCode)
	}
	if f.LoanPurpose != nil {
		q.and("h.loan_purpose = %s", *f.LoanPurpose)
	}

	rows, err := r.db.QueryContext(ctx, loanSummaryColumns+q.whereClause()+" ORDER BY h.household_id", q.args...)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list loan summaries")
	}
	defer rows.Close()

	var result []domain.LoanRecord

	for rows.Next() {
		var rec domain.LoanRecord

		if err := rows.Scan(
			&rec.HouseholdID,
			&rec.AppliedForLoan,
			&rec.WasRejected,
			&rec.NeededLoan,
			&rec.PrimaryRejectionReason,
			&rec.PrimaryReasonNoBorrowing,
			&rec.LoanPurpose,
			&rec.LoanAmount,
			&rec.LoanSufficient,
			&rec.IsFullyRepaid,
			&rec.TotalAmountPaid,
			&rec.ZoneCode,
			&rec.SectorCode,
		); err != nil {
			return nil, eris.Wrap(err, "repository: scan loan summary")
		}

		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: iterate loan summaries")
	}

	return result, nil
}

// FetchSummary returns the first summary row of a household, or nil when the
// household has none.
func (r *LoanRepository) FetchSummary(ctx context.Context, householdID string) (*domain.LoanRecord, error) {
	recs, err := r.List(ctx, LoanFilter{HouseholdID: &householdID})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// FetchLoans returns the individual loans of a household. A missing purpose
// reads as 0 and a missing repayment flag as "no".
func (r *LoanRepository) FetchLoans(ctx context.Context, householdID string) ([]domain.LoanLineItem, error) {
	q := newQuery(r.dialect)
	q.and("l.household_id = %s", householdID)

	query := `
		SELECT
			l.household_id,
			l.loan_id,
			COALESCE(l.loan_purpose, 0),
			l.loan_amount,
			COALESCE(l.is_fully_repaid, 2)
		FROM credit_history_loans l
	` + q.whereClause() + " ORDER BY l.loan_id"

	rows, err := r.db.QueryContext(ctx, query, q.args...)
	if err != nil {
		return nil, eris.Wrapf(err, "repository: fetch loans of %s", householdID)
	}
	defer rows.Close()

	var result []domain.LoanLineItem

	for rows.Next() {
		var it domain.LoanLineItem

		if err := rows.Scan(
			&it.HouseholdID,
			&it.LoanID,
			&it.LoanPurpose,
			&it.LoanAmount,
			&it.IsFullyRepaid,
		); err != nil {
			return nil, eris.Wrap(err, "repository: scan loan")
		}

		result = append(result, it)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: iterate loans")
	}

	return result, nil
}

// HouseholdIDs returns every household known to the loan or inclusion
// tables, sorted.
func (r *LoanRepository) HouseholdIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT household_id FROM credit_loan_history
		UNION
		SELECT household_id FROM credit_history_loans
		UNION
		SELECT household_id FROM savings_and_insurance
		ORDER BY 1
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list household ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "repository: scan household id")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: iterate household ids")
	}

	return ids, nil
}
