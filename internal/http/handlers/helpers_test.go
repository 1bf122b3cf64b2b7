package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dcatracker/internal/infra/identity"
	"dcatracker/internal/middleware"
)

type fakeIdentity struct {
	session     *identity.Session
	exchangeErr error
	gotCode     string
	gotVerifier string
	signedOut   []string
}

func (f *fakeIdentity) AuthorizeURL(provider, redirectTo, codeChallenge string) string {
	return fmt.Sprintf("https://idp.example/authorize?provider=%s&redirect_to=%s&code_challenge=%s", provider, redirectTo, codeChallenge)
}

func (f *fakeIdentity) ExchangeCode(_ context.Context, code, verifier string) (*identity.Session, error) {
	f.gotCode, f.gotVerifier = code, verifier
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.session, nil
}

func (f *fakeIdentity) SignOut(_ context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

type testEnv struct {
	app           *App
	users         *memUsers
	contributions *memContributions
	idp           *fakeIdentity
}

func newTestEnv() *testEnv {
	users := newMemUsers()
	contributions := newMemContributions()
	idp := &fakeIdentity{}
	seq := 0
	app := &App{
		Users:         users,
		Contributions: contributions,
		Identity:      idp,
		Logger:        zerolog.Nop(),
		Cookies:       middleware.CookieConfig{MaxAge: time.Hour},
		BaseURL:       "http://localhost:8080",
		OAuthProvider: "google",
		Now:           func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("00000000-0000-0000-0000-%012d", seq)
		},
	}
	return &testEnv{app: app, users: users, contributions: contributions, idp: idp}
}

var alice = identity.User{ID: "alice", Email: "alice@example.com", FullName: "Alice"}

func do(t *testing.T, h http.HandlerFunc, method, target, body string, who *identity.User, locale string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	ctx := req.Context()
	if who != nil {
		ctx = middleware.ContextWithIdentity(ctx, *who)
	}
	if locale != "" {
		ctx = context.WithValue(ctx, middleware.LocaleKey, locale)
	}
	rec := httptest.NewRecorder()
	h(rec, req.WithContext(ctx))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}
