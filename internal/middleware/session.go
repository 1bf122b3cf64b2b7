package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dcatracker/internal/infra/identity"
)

const (
	AccessCookie  = "dca-access-token"
	RefreshCookie = "dca-refresh-token"
)

type identityKey struct{}

// TokenVerifier validates an access token locally.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (identity.User, error)
}

// TokenRefresher exchanges a refresh token with the identity provider.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*identity.Session, error)
}

// CookieConfig controls the session cookies.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// Session attaches the caller's identity to the request context. The access
// token comes from an Authorization bearer header or, for browsers, from the
// session cookie. An expired cookie session is refreshed once with the
// provider; when that fails the cookies are cleared. Requests without a
// valid identity continue anonymously and the handlers decide what to do.
func Session(verifier TokenVerifier, refresher TokenRefresher, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := zerolog.Ctx(ctx)

			if token, ok := bearerToken(r); ok {
				user, err := verifier.Verify(ctx, token)
				if err != nil {
					log.Debug().Err(err).Msg("bearer token rejected")
					next.ServeHTTP(w, r)
					return
				}
				next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, user)))
				return
			}

			access := cookieValue(r, AccessCookie)
			refresh := cookieValue(r, RefreshCookie)
			if access == "" && refresh == "" {
				next.ServeHTTP(w, r)
				return
			}

			if access != "" {
				user, err := verifier.Verify(ctx, access)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, user)))
					return
				}
				if !errors.Is(err, identity.ErrTokenExpired) {
					log.Debug().Err(err).Msg("session cookie rejected")
				}
			}

			if refresh == "" || refresher == nil {
				ClearSessionCookies(w, cookies)
				next.ServeHTTP(w, r)
				return
			}
			sess, err := refresher.Refresh(ctx, refresh)
			if err != nil {
				log.Warn().Err(err).Msg("session refresh failed")
				ClearSessionCookies(w, cookies)
				next.ServeHTTP(w, r)
				return
			}
			SetSessionCookies(w, sess, cookies)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, sess.User)))
		})
	}
}

// SetSessionCookies stores a fresh token pair in HttpOnly cookies.
func SetSessionCookies(w http.ResponseWriter, sess *identity.Session, cfg CookieConfig) {
	maxAge := int(cfg.MaxAge / time.Second)
	http.SetCookie(w, sessionCookie(AccessCookie, sess.AccessToken, maxAge, cfg.Secure))
	if sess.RefreshToken != "" {
		http.SetCookie(w, sessionCookie(RefreshCookie, sess.RefreshToken, maxAge, cfg.Secure))
	}
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, sessionCookie(AccessCookie, "", -1, cfg.Secure))
	http.SetCookie(w, sessionCookie(RefreshCookie, "", -1, cfg.Secure))
}

func sessionCookie(name, value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (identity.User, bool) {
	u, ok := ctx.Value(identityKey{}).(identity.User)
	if !ok || strings.TrimSpace(u.ID) == "" {
		return identity.User{}, false
	}
	return u, true
}

func ContextWithIdentity(ctx context.Context, user identity.User) context.Context {
	if strings.TrimSpace(user.ID) == "" {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, user)
}

// UserIDFromContext returns the authenticated user id or "".
func UserIDFromContext(ctx context.Context) string {
	u, _ := IdentityFromContext(ctx)
	return u.ID
}
