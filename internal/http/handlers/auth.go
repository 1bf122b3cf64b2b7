package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"dcatracker/internal/infra/identity"
	"dcatracker/internal/middleware"
)

const (
	verifierCookie = "dca-pkce-verifier"
	verifierMaxAge = 10 * 60

	AuthErrorPath = "/auth/auth-code-error"
)

// AuthLogin starts the OAuth flow: it keeps a PKCE verifier in a short lived
// cookie and sends the browser to the provider.
func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	verifier, err := identity.NewCodeVerifier()
	if err != nil {
		a.log(r).Error().Err(err).Msg("pkce verifier")
		http.Redirect(w, r, AuthErrorPath, http.StatusFound)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     verifierCookie,
		Value:    verifier,
		Path:     "/auth",
		MaxAge:   verifierMaxAge,
		HttpOnly: true,
		Secure:   a.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	callback := a.BaseURL + "/auth/callback"
	if next := safeNext(r.URL.Query().Get("next")); next != "/" {
		callback += "?next=" + url.QueryEscape(next)
	}
	http.Redirect(w, r, a.Identity.AuthorizeURL(a.OAuthProvider, callback, identity.Challenge(verifier)), http.StatusFound)
}

// AuthCallback exchanges the authorization code for a session and redirects
// to next. Every failure lands on the auth error page.
func (a *App) AuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	next := safeNext(r.URL.Query().Get("next"))
	if code == "" {
		a.log(r).Warn().Str("provider_error", r.URL.Query().Get("error_description")).Msg("auth callback without code")
		http.Redirect(w, r, AuthErrorPath, http.StatusFound)
		return
	}
	c, err := r.Cookie(verifierCookie)
	if err != nil || c.Value == "" {
		a.log(r).Warn().Msg("auth callback without pkce verifier")
		http.Redirect(w, r, AuthErrorPath, http.StatusFound)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: verifierCookie, Path: "/auth", MaxAge: -1, HttpOnly: true, Secure: a.Cookies.Secure})

	sess, err := a.Identity.ExchangeCode(r.Context(), code, c.Value)
	if err != nil {
		a.log(r).Warn().Err(err).Msg("auth code exchange failed")
		http.Redirect(w, r, AuthErrorPath, http.StatusFound)
		return
	}
	middleware.SetSessionCookies(w, sess, a.Cookies)
	a.log(r).Info().Str("user_id", sess.User.ID).Msg("signed in")
	http.Redirect(w, r, next, http.StatusFound)
}

// AuthLogout (POST only) revokes the session with the provider (best effort), clears the
// cookies and returns to the login page.
func (a *App) AuthLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.AccessCookie); err == nil && c.Value != "" {
		if err := a.Identity.SignOut(r.Context(), c.Value); err != nil {
			a.log(r).Warn().Err(err).Msg("provider sign out failed")
		}
	}
	middleware.ClearSessionCookies(w, a.Cookies)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// safeNext only allows local absolute paths as redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	return next
}
