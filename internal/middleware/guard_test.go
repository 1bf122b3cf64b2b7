package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"dcatracker/internal/infra/identity"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		signedIn bool
		wantCode int
		wantLoc  string
	}{
		{name: "anonymous home", path: "/", wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "anonymous coin page", path: "/crypto/bitcoin", wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "anonymous login", path: "/login", wantCode: http.StatusOK},
		{name: "anonymous callback", path: "/auth/callback", wantCode: http.StatusOK},
		{name: "signed in home", path: "/", signedIn: true, wantCode: http.StatusOK},
		{name: "signed in coin page", path: "/crypto/ethereum", signedIn: true, wantCode: http.StatusOK},
		{name: "signed in login bounces", path: "/login", signedIn: true, wantCode: http.StatusFound, wantLoc: "/"},
		{name: "prefix lookalike", path: "/cryptography", wantCode: http.StatusOK},
	}

	h := Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.signedIn {
				req = req.WithContext(ContextWithIdentity(req.Context(), identity.User{ID: "u1"}))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tc.wantCode)
			}
			if loc := rec.Header().Get("Location"); loc != tc.wantLoc {
				t.Fatalf("location = %q, want %q", loc, tc.wantLoc)
			}
		})
	}
}
