package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		origins    []string
		origin     string
		preflight  bool
		wantCode   int
		wantOrigin string
	}{
		{name: "allowed origin", origins: []string{"https://app.example"}, origin: "https://app.example", wantCode: http.StatusTeapot, wantOrigin: "https://app.example"},
		{name: "unknown origin passes without headers", origins: []string{"https://app.example"}, origin: "https://evil.example", wantCode: http.StatusTeapot},
		{name: "wildcard", origins: []string{"*"}, origin: "https://any.example", wantCode: http.StatusTeapot, wantOrigin: "https://any.example"},
		{name: "preflight allowed", origins: []string{"https://app.example"}, origin: "https://app.example", preflight: true, wantCode: http.StatusNoContent, wantOrigin: "https://app.example"},
		{name: "preflight rejected", origins: []string{"https://app.example"}, origin: "https://evil.example", preflight: true, wantCode: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			method := http.MethodGet
			if tc.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/api/contributions", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			CORS(tc.origins)(next).ServeHTTP(rec, req)
			if rec.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tc.wantCode)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("allow-origin = %q, want %q", got, tc.wantOrigin)
			}
		})
	}
}
