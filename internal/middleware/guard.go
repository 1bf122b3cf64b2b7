package middleware

import (
	"net/http"
	"strings"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Guard redirects anonymous visitors of protected pages to the login page
// and signed-in visitors of the login page to the dashboard. It must run
// after Session.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn := IdentityFromContext(r.Context())
		switch {
		case !signedIn && isProtectedPage(r.URL.Path):
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		case signedIn && r.URL.Path == LoginPath:
			http.Redirect(w, r, HomePath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isProtectedPage(path string) bool {
	return path == HomePath || path == "/crypto" || strings.HasPrefix(path, "/crypto/")
}
