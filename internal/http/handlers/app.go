package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dcatracker/internal/domain"
	"dcatracker/internal/i18n"
	"dcatracker/internal/infra"
	"dcatracker/internal/infra/identity"
	"dcatracker/internal/middleware"
)

// IdentityProvider is the part of the identity client the web flow needs.
type IdentityProvider interface {
	AuthorizeURL(provider, redirectTo, codeChallenge string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	DB            Pinger
	Users         domain.UserRepository
	Contributions domain.ContributionRepository
	Identity      IdentityProvider
	Logger        zerolog.Logger

	Cookies       middleware.CookieConfig
	BaseURL       string
	OAuthProvider string

	Now   func() time.Time
	NewID func() string
}

func NewApp(cfg *infra.Config, db Pinger, users domain.UserRepository, contributions domain.ContributionRepository, idp IdentityProvider, logger zerolog.Logger) *App {
	return &App{
		DB:            db,
		Users:         users,
		Contributions: contributions,
		Identity:      idp,
		Logger:        logger,
		Cookies: middleware.CookieConfig{
			Secure: cfg.SessionCookieSecure,
			MaxAge: cfg.SessionMaxAge,
		},
		BaseURL:       strings.TrimRight(cfg.PublicBaseURL, "/"),
		OAuthProvider: cfg.OAuthProvider,
		Now:           time.Now,
		NewID:         uuid.NewString,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes a localized error body.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, key string, args ...any) {
	a.json(w, status, errorResponse{Error: i18n.T(localeOf(r), key, args...), Code: code})
}

func localeOf(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context())
}

// fail maps a domain error to its HTTP status. Anything unclassified is
// logged and reported as a generic 500.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		switch ve.Reason {
		case domain.ReasonMissing:
			a.error(w, r, http.StatusBadRequest, "validation", i18n.MissingFields)
		case domain.ReasonInconsistent:
			a.error(w, r, http.StatusBadRequest, "validation", i18n.InconsistentQuantity)
		default:
			a.error(w, r, http.StatusBadRequest, "validation", i18n.InvalidField, ve.Field)
		}
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, r, http.StatusUnauthorized, "unauthorized", i18n.Unauthorized)
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, "not_found", i18n.ContributionNotFound)
	default:
		a.log(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, r, http.StatusInternalServerError, "internal", i18n.InternalError)
	}
}

// log prefers the request scoped logger set by the access log middleware.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) currentIdentity(r *http.Request) (identity.User, bool) {
	return middleware.IdentityFromContext(r.Context())
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) newID() string {
	if a.NewID != nil {
		return a.NewID()
	}
	return uuid.NewString()
}

// ensureUser creates the caller's user row on first contact.
func (a *App) ensureUser(ctx context.Context, who identity.User) (*domain.User, error) {
	u, created, err := a.Users.Ensure(ctx, domain.NewUser(who.ID, who.Email, who.FullName, who.AvatarURL))
	if err != nil {
		return nil, err
	}
	if created {
		zerolog.Ctx(ctx).Info().Str("user_id", u.ID).Msg("user created")
	}
	return u, nil
}
