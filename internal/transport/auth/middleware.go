package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"naijayield/internal/domain"
)

type ctxKey string

const (
	UserIDKey    ctxKey = "userID"
	SessionIDKey ctxKey = "sessionID"
)

var ErrNoUser = eris.New("auth: user not found in context")

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// bearerToken reads the token from the Authorization header, falling back
// to the token query parameter used by websocket clients.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	return r.URL.Query().Get("token")
}

// SessionMiddleware rejects requests without a valid session token and puts
// the session's user id into the request context.
func SessionMiddleware(authn Authenticator, unauthorized func(http.ResponseWriter, string)) func(http.Handler) http.Handler {
	if unauthorized == nil {
		unauthorized = func(w http.ResponseWriter, msg string) { http.Error(w, msg, http.StatusUnauthorized) }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "Unauthorized")
				return
			}

			session, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				zap.L().Debug("reject session",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				unauthorized(w, "Unauthorized")
				return
			}

			ctx := WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithSession(ctx context.Context, s *domain.Session) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, s.UserID)
	return context.WithValue(ctx, SessionIDKey, s.ID)
}

func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return "", ErrNoUser
	}
	return userID, nil
}

func GetSessionID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(SessionIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoUser
	}
	return id, nil
}
