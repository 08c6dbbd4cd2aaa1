package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naijayield/internal/domain"
)

type fakeAuthenticator struct {
	tokens map[string]*domain.Session
	seen   []string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	f.seen = append(f.seen, token)
	if s, ok := f.tokens[token]; ok {
		return s, nil
	}
	return nil, errors.New("unknown token")
}

func newProtected(t *testing.T) (http.Handler, *fakeAuthenticator) {
	t.Helper()
	authn := &fakeAuthenticator{tokens: map[string]*domain.Session{
		"s1|secret": {ID: "s1", UserID: "u1"},
	}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := GetUserID(r.Context())
		require.NoError(t, err)
		sid, err := GetSessionID(r.Context())
		require.NoError(t, err)
		_, _ = w.Write([]byte(uid + "/" + sid))
	})
	return SessionMiddleware(authn, nil)(next), authn
}

func TestSessionMiddleware_BearerHeader(t *testing.T) {
	h, _ := newProtected(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer s1|secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1/s1", rec.Body.String())
}

func TestSessionMiddleware_QueryToken(t *testing.T) {
	h, _ := newProtected(t)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=s1%7Csecret", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		target string
	}{
		{"no token", "", "/me"},
		{"empty bearer", "Bearer   ", "/me"},
		{"wrong scheme", "Basic s1|secret", "/me"},
		{"unknown token", "Bearer nope", "/me"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newProtected(t)
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSessionMiddleware_CustomUnauthorized(t *testing.T) {
	var called bool
	mw := SessionMiddleware(&fakeAuthenticator{}, func(w http.ResponseWriter, msg string) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	mw(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestGetUserID_Missing(t *testing.T) {
	_, err := GetUserID(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)
	_, err = GetSessionID(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)
}
