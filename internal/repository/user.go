package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"naijayield/internal/domain"
)

type UserRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewUserRepository(db *sql.DB, d Dialect) *UserRepository {
	return &UserRepository{
		db:      db,
		dialect: d,
	}
}

// Upsert records a login for u.Email. A new user is created with
// login_count 1; an existing one gets its names refreshed, login_count
// incremented and last_login moved to now.
func (r *UserRepository) Upsert(ctx context.Context, u domain.User, now time.Time) (*domain.User, error) {
	q := newQuery(r.dialect)
	values := []string{
		q.arg(uuid.NewString()),
		q.arg(u.Email),
		q.arg(u.Name),
		q.arg(u.FirstName),
		q.arg(u.LastName),
		q.arg(now),
		q.arg(now),
	}

	query := `
		INSERT INTO users (user_id, email, name, first_name, last_name, login_count, last_login, created_at)
		VALUES (` + strings.Join(values[:5], ", ") + `, 1, ` + values[5] + `, ` + values[6] + `)
		ON CONFLICT (email) DO UPDATE SET
			name        = excluded.name,
			first_name  = excluded.first_name,
			last_name   = excluded.last_name,
			login_count = users.login_count + 1,
			last_login  = excluded.last_login
		RETURNING user_id
	`

	var id string
	if err := r.db.QueryRowContext(ctx, query, q.args...).Scan(&id); err != nil {
		return nil, eris.Wrapf(err, "repository: upsert user %s", u.Email)
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	q := newQuery(r.dialect)
	q.and("user_id = %s", id)

	query := `SELECT user_id, email, name, first_name, last_name, login_count, last_login, created_at FROM users` + q.whereClause()

	u, err := scanUser(r.db.QueryRowContext(ctx, query, q.args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "repository: find user %s", id)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u                 domain.User
		name, first, last sql.NullString
	)
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&name,
		&first,
		&last,
		&u.LoginCount,
		&u.LastLogin,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	u.Name, u.FirstName, u.LastName = name.String, first.String, last.String
	return &u, nil
}
