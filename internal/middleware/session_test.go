package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dcatracker/internal/infra/identity"
)

type stubVerifier map[string]error

func (s stubVerifier) Verify(_ context.Context, token string) (identity.User, error) {
	err, ok := s[token]
	if !ok {
		return identity.User{}, identity.ErrInvalidToken
	}
	if err != nil {
		return identity.User{}, err
	}
	return identity.User{ID: "user-" + token, Email: token + "@example.com"}, nil
}

type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) Refresh(_ context.Context, rt string) (*identity.Session, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &identity.Session{
		AccessToken:  "fresh",
		RefreshToken: rt + "-next",
		User:         identity.User{ID: "user-refreshed"},
	}, nil
}

func runSession(t *testing.T, v TokenVerifier, rf TokenRefresher, setup func(r *http.Request)) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var seen string
	h := Session(v, rf, CookieConfig{MaxAge: time.Hour})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	setup(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSessionBearerToken(t *testing.T) {
	v := stubVerifier{"good": nil}
	got, _ := runSession(t, v, nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer good")
	})
	if got != "user-good" {
		t.Fatalf("user = %q", got)
	}

	got, _ = runSession(t, v, nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer bad")
	})
	if got != "" {
		t.Fatalf("invalid bearer should be anonymous, got %q", got)
	}
}

func TestSessionCookie(t *testing.T) {
	v := stubVerifier{"good": nil}
	got, rec := runSession(t, v, nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "good"})
	})
	if got != "user-good" {
		t.Fatalf("user = %q", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("valid session should not rewrite cookies")
	}
}

func TestSessionRefreshesExpiredCookie(t *testing.T) {
	v := stubVerifier{"old": identity.ErrTokenExpired}
	rf := &stubRefresher{}
	got, rec := runSession(t, v, rf, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "old"})
		r.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "rt"})
	})
	if got != "user-refreshed" {
		t.Fatalf("user = %q", got)
	}
	if rf.calls != 1 {
		t.Fatalf("refresh calls = %d", rf.calls)
	}
	cookies := cookiesByName(rec)
	if cookies[AccessCookie] == nil || cookies[AccessCookie].Value != "fresh" {
		t.Fatalf("access cookie not rotated: %+v", cookies[AccessCookie])
	}
	if cookies[RefreshCookie] == nil || cookies[RefreshCookie].Value != "rt-next" {
		t.Fatalf("refresh cookie not rotated: %+v", cookies[RefreshCookie])
	}
	if !cookies[AccessCookie].HttpOnly {
		t.Fatalf("session cookies must be HttpOnly")
	}
}

func TestSessionRefreshFailureClearsCookies(t *testing.T) {
	v := stubVerifier{"old": identity.ErrTokenExpired}
	rf := &stubRefresher{err: errors.New("provider down")}
	got, rec := runSession(t, v, rf, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "old"})
		r.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "rt"})
	})
	if got != "" {
		t.Fatalf("failed refresh should be anonymous, got %q", got)
	}
	cookies := cookiesByName(rec)
	if cookies[AccessCookie] == nil || cookies[AccessCookie].MaxAge >= 0 {
		t.Fatalf("access cookie not cleared: %+v", cookies[AccessCookie])
	}
}

func TestSessionAnonymous(t *testing.T) {
	rf := &stubRefresher{}
	got, rec := runSession(t, stubVerifier{}, rf, func(r *http.Request) {})
	if got != "" || rf.calls != 0 || len(rec.Result().Cookies()) != 0 {
		t.Fatalf("anonymous request touched session: user=%q calls=%d", got, rf.calls)
	}
}

func TestIdentityFromContextIgnoresBlankID(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), identity.User{ID: "  "})
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatalf("blank id must not count as signed in")
	}
}
