package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dcatracker/internal/http/handlers"
	"dcatracker/internal/middleware"
)

// Options carries the middleware settings the router needs.
type Options struct {
	Logger          zerolog.Logger
	Verifier        middleware.TokenVerifier
	Refresher       middleware.TokenRefresher
	Cookies         middleware.CookieConfig
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Session(opts.Verifier, opts.Refresher, opts.Cookies),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.CORS(opts.AllowedOrigins),
			middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
		)
		r.Get("/contributions", app.ListContributions)
		r.Post("/contributions", app.CreateContribution)
		r.Delete("/contributions", app.DeleteContribution)
		r.Get("/user", app.Profile)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", app.AuthLogin)
		r.Get("/callback", app.AuthCallback)
		r.Get("/auth-code-error", app.AuthErrorPage)
		r.Post("/logout", app.AuthLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Guard)
		r.Get("/login", app.LoginPage)
		r.Get("/", app.Dashboard)
		r.Get("/crypto/{coin}", app.CoinPage)
	})

	return r
}
