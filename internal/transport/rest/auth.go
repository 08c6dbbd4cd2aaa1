package rest

import (
	"net/http"
	"net/url"

	"naijayield/internal/transport/auth"
)

const stateCookie = "oauth_state"

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	loginURL, state, err := h.auth.LoginURL()
	if err != nil {
		logError("login", err)
		ErrorInternal(w, "failed to start login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, loginURL, http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		ErrorUnauthorized(w, "login denied: "+e)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		ErrorBadRequest(w, "invalid login state")
		return
	}
	code := q.Get("code")
	if code == "" {
		ErrorBadRequest(w, "code is required")
		return
	}

	res, err := h.auth.Callback(r.Context(), code)
	if err != nil {
		logError("login callback", err)
		ErrorUnauthorized(w, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})

	if h.opts.AfterLoginURL != "" {
		http.Redirect(w, r, h.opts.AfterLoginURL+"?token="+url.QueryEscape(res.Token), http.StatusFound)
		return
	}
	Success(w, "logged in", res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := auth.GetSessionID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.auth.Logout(r.Context(), sessionID); err != nil {
		writeServiceError(w, "logout", err, "failed to log out")
		return
	}
	Success(w, "logged out", nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	u, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "me", err, "failed to get user")
		return
	}
	Success(w, "", u)
}
