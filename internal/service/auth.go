package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"naijayield/internal/clients"
	"naijayield/internal/domain"
	"naijayield/internal/repository"
)

var ErrUnauthenticated = eris.New("service: unauthenticated")

type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*clients.Identity, error)
}

type UserStore interface {
	Upsert(ctx context.Context, u domain.User, now time.Time) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, s domain.Session) error
	FindByPlainToken(ctx context.Context, plainToken string, now time.Time) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	provider   IdentityProvider
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration

	now func() time.Time
}

func NewAuthService(provider IdentityProvider, users UserStore, sessions SessionStore, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		provider:   provider,
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", eris.Wrap(err, "service: read random")
	}
	return hex.EncodeToString(b), nil
}

// LoginURL returns the provider consent URL and the state the callback must
// echo back.
func (s *AuthService) LoginURL() (url, state string, err error) {
	state, err = randomHex(16)
	if err != nil {
		return "", "", err
	}
	return s.provider.AuthCodeURL(state), state, nil
}

// Callback completes a login: it resolves the provider identity, records the
// login and issues a session token of the form "<session id>|<secret>".
func (s *AuthService) Callback(ctx context.Context, code string) (*LoginResult, error) {
	id, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, eris.Wrap(err, "service: resolve identity")
	}

	now := s.now().UTC()
	user, err := s.users.Upsert(ctx, domain.User{
		Email:     id.Email,
		Name:      id.Name,
		FirstName: id.GivenName,
		LastName:  id.FamilyName,
	}, now)
	if err != nil {
		return nil, err
	}

	secret, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	expires := now.Add(s.sessionTTL)
	session := domain.Session{
		ID:        uuid.NewString(),
		TokenHash: repository.HashToken(secret),
		UserID:    user.ID,
		ExpiresAt: &expires,
		CreatedAt: &now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	zap.L().Info("user logged in", zap.String("user_id", user.ID), zap.Int("login_count", user.LoginCount))

	return &LoginResult{
		Token:     session.ID + "|" + secret,
		ExpiresAt: expires,
		User:      user,
	}, nil
}

// Authenticate resolves a bearer token to its session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.sessions.FindByPlainToken(ctx, token, s.now().UTC())
	if err != nil {
		if eris.Is(err, repository.ErrNotFound) || eris.Is(err, repository.ErrTokenExpired) || eris.Is(err, repository.ErrEmptyToken) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if eris.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}
