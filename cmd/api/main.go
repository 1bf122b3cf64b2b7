package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dcatracker/internal/adapter/repo"
	"dcatracker/internal/http/handlers"
	httpapi "dcatracker/internal/http/httpapi"
	"dcatracker/internal/infra"
	"dcatracker/internal/infra/geoip"
	"dcatracker/internal/infra/identity"
	"dcatracker/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	users := repo.NewUserRepository(runner)
	contributions := repo.NewContributionRepository(runner)

	idp := identity.NewClient(cfg.IdentityURL, cfg.IdentityAnonKey)
	verifier := identity.NewVerifier(cfg.IdentityJWTSecret, identity.NewKeySet(cfg.IdentityJWKSURL), cfg.IdentityAudience, cfg.IdentityURL)

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer geo.Close()

	app := handlers.NewApp(cfg, dbpool, users, contributions, idp, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		Verifier:        verifier,
		Refresher:       idp,
		Cookies:         app.Cookies,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   middleware.CountryLookup(geo.Lookup()),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("env", cfg.AppEnv).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
