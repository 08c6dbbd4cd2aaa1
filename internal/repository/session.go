package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"naijayield/internal/domain"
)

var (
	ErrEmptyToken   = eris.New("repository: empty token")
	ErrTokenExpired = eris.New("repository: token expired")
)

// HashToken is the stored form of a session secret.
func HashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

type SessionRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSessionRepository(db *sql.DB, d Dialect) *SessionRepository {
	return &SessionRepository{db: db, dialect: d}
}

func (r *SessionRepository) Create(ctx context.Context, s domain.Session) error {
	q := newQuery(r.dialect)
	query := `INSERT INTO sessions (id, token_hash, user_id, expires_at, created_at) VALUES (` +
		strings.Join([]string{q.arg(s.ID), q.arg(s.TokenHash), q.arg(s.UserID), q.arg(s.ExpiresAt), q.arg(s.CreatedAt)}, ", ") + `)`

	if _, err := r.db.ExecContext(ctx, query, q.args...); err != nil {
		return eris.Wrap(err, "repository: create session")
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	q := newQuery(r.dialect)
	q.and("id = %s", id)

	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions"+q.whereClause(), q.args...); err != nil {
		return eris.Wrapf(err, "repository: delete session %s", id)
	}
	return nil
}

func (r *SessionRepository) findOne(ctx context.Context, column, value string) (*domain.Session, error) {
	q := newQuery(r.dialect)
	q.and(column+" = %s", value)

	query := `SELECT id, token_hash, user_id, expires_at, created_at FROM sessions` + q.whereClause()

	var s domain.Session
	err := r.db.QueryRowContext(ctx, query, q.args...).Scan(
		&s.ID,
		&s.TokenHash,
		&s.UserID,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "repository: find session by %s", column)
	}
	return &s, nil
}

// FindByPlainToken resolves a bearer token of the form "<session id>|<secret>".
// Tokens without the id prefix are looked up by hash alone.
func (r *SessionRepository) FindByPlainToken(ctx context.Context, plainToken string, now time.Time) (*domain.Session, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, ErrEmptyToken
	}

	secret := plainToken
	var id string
	if idx := strings.Index(plainToken, "|"); idx > 0 {
		id, secret = plainToken[:idx], plainToken[idx+1:]
	}
	hash := HashToken(secret)

	var (
		s   *domain.Session
		err error
	)
	if id != "" {
		s, err = r.findOne(ctx, "id", id)
		if err == nil && s.TokenHash != hash {
			zap.L().Debug("session token mismatch", zap.String("session_id", id))
			s, err = nil, ErrNotFound
		}
	} else {
		s, err = r.findOne(ctx, "token_hash", hash)
	}
	if err != nil {
		return nil, err
	}

	if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}
	return s, nil
}
