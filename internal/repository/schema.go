package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS credit_loan_history (
		household_id                TEXT NOT NULL,
		applied_for_loan            INTEGER,
		was_rejected                INTEGER,
		needed_loan                 INTEGER,
		primary_rejection_reason    INTEGER,
		primary_reason_no_borrowing INTEGER,
		loan_purpose                INTEGER,
		loan_amount                 DOUBLE PRECISION,
		loan_sufficient             INTEGER,
		is_fully_repaid             INTEGER,
		total_amount_paid           DOUBLE PRECISION,
		zone                        INTEGER,
		sector                      INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS credit_loan_history_household_idx ON credit_loan_history (household_id)`,
	`CREATE TABLE IF NOT EXISTS credit_history_loans (
		household_id    TEXT NOT NULL,
		loan_id         TEXT NOT NULL,
		loan_purpose    INTEGER,
		loan_amount     DOUBLE PRECISION,
		is_fully_repaid INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS credit_history_loans_household_idx ON credit_history_loans (household_id)`,
	`CREATE TABLE IF NOT EXISTS savings_and_insurance (
		id                           {{serial}},
		household_id                 TEXT NOT NULL,
		has_bank_account             INTEGER,
		used_cooperative             INTEGER,
		used_informal_savings_groups INTEGER,
		has_insurance                INTEGER,
		has_proxy_banking_access     INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS savings_and_insurance_household_idx ON savings_and_insurance (household_id)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id     TEXT PRIMARY KEY,
		email       TEXT NOT NULL UNIQUE,
		name        TEXT,
		first_name  TEXT,
		last_name   TEXT,
		login_count INTEGER NOT NULL DEFAULT 0,
		last_login  {{timestamp}},
		created_at  {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		token_hash TEXT NOT NULL UNIQUE,
		user_id    TEXT NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
		expires_at {{timestamp}} NOT NULL,
		created_at {{timestamp}} NOT NULL
	)`,
}

func (d Dialect) render(stmt string) string {
	serial, timestamp := "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	if d == SQLite {
		serial, timestamp = "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	}
	return strings.NewReplacer("{{serial}}", serial, "{{timestamp}}", timestamp).Replace(stmt)
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, d.render(stmt)); err != nil {
			return eris.Wrap(err, "repository: migrate")
		}
	}
	return nil
}
