package repository

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"naijayield/internal/domain"
)

type InclusionRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewInclusionRepository(db *sql.DB, d Dialect) *InclusionRepository {
	return &InclusionRepository{db: db, dialect: d}
}

// FetchInclusion returns the savings and insurance answers of every
// respondent in the household.
func (r *InclusionRepository) FetchInclusion(ctx context.Context, householdID string) ([]domain.FinancialInclusionRecord, error) {
	q := newQuery(r.dialect)
	q.and("s.household_id = %s", householdID)

	query := `
		SELECT
			s.household_id,
			s.has_bank_account,
			s.used_cooperative,
			s.used_informal_savings_groups,
			s.has_insurance,
			s.has_proxy_banking_access
		FROM savings_and_insurance s
	` + q.whereClause() + " ORDER BY s.id"

	rows, err := r.db.QueryContext(ctx, query, q.args...)
	if err != nil {
		return nil, eris.Wrapf(err, "repository: fetch inclusion of %s", householdID)
	}
	defer rows.Close()

	var result []domain.FinancialInclusionRecord

	for rows.Next() {
		var rec domain.FinancialInclusionRecord

		if err := rows.Scan(
			&rec.HouseholdID,
			&rec.HasBankAccount,
			&rec.UsedCooperative,
			&rec.UsedInformalSavingsGroups,
			&rec.HasInsurance,
			&rec.HasProxyBankingAccess,
		); err != nil {
			return nil, eris.Wrap(err, "repository: scan inclusion record")
		}

		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: iterate inclusion records")
	}

	return result, nil
}
