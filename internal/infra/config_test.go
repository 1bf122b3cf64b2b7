package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("IDENTITY_URL", "https://project.example.co/auth/v1/")
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("IDENTITY_JWKS_URL", "")
	t.Setenv("SESSION_COOKIE_SECURE", "")
	t.Setenv("SESSION_MAX_AGE_HOURS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Fatalf("PublicBaseURL mismatch: got %q", cfg.PublicBaseURL)
	}
	if cfg.IdentityURL != "https://project.example.co/auth/v1" {
		t.Fatalf("IdentityURL mismatch: got %q", cfg.IdentityURL)
	}
	if cfg.IdentityJWKSURL != "https://project.example.co/auth/v1/.well-known/jwks.json" {
		t.Fatalf("IdentityJWKSURL mismatch: got %q", cfg.IdentityJWKSURL)
	}
	if cfg.SessionCookieSecure {
		t.Fatal("development should not force secure cookies")
	}
	if cfg.SessionMaxAge != 720*time.Hour {
		t.Fatalf("SessionMaxAge mismatch: got %s", cfg.SessionMaxAge)
	}
	if cfg.DefaultLocale != "pt-BR" {
		t.Fatalf("DefaultLocale mismatch: got %q", cfg.DefaultLocale)
	}
}

func TestLoadConfigProductionSecureCookies(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("IDENTITY_URL", "https://project.example.co/auth/v1")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_COOKIE_SECURE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.SessionCookieSecure {
		t.Fatal("production should default to secure cookies")
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v", cfg.CORSAllowedOrigins)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}

func TestLoadConfigRequiresDatabaseAndIdentity(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("IDENTITY_URL", "https://project.example.co/auth/v1")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("IDENTITY_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without IDENTITY_URL")
	}
}

func TestLoadClientConfigDefaults(t *testing.T) {
	t.Setenv("DCA_API_URL", "")
	t.Setenv("PRICE_FEED_URL", "")
	t.Setenv("PRICE_CURRENCY", "USD")

	cfg := LoadClientConfig()
	if cfg.APIURL != "http://localhost:8080" {
		t.Fatalf("APIURL mismatch: got %q", cfg.APIURL)
	}
	if cfg.PriceFeedURL != "https://api.coingecko.com/api/v3" {
		t.Fatalf("PriceFeedURL mismatch: got %q", cfg.PriceFeedURL)
	}
	if cfg.PriceCurrency != "usd" {
		t.Fatalf("PriceCurrency mismatch: got %q", cfg.PriceCurrency)
	}
}
