package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	PublicBaseURL       string
	DatabaseURL         string
	IdentityURL         string
	IdentityAnonKey     string
	IdentityJWTSecret   string
	IdentityJWKSURL     string
	IdentityAudience    string
	OAuthProvider       string
	SessionCookieSecure bool
	SessionMaxAge       time.Duration
	DefaultLocale       string
	GeoIPDBPath         string
	CORSAllowedOrigins  []string
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	RateLimitPerMin     int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:              appEnv,
		Port:                port,
		PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		IdentityURL:         strings.TrimRight(os.Getenv("IDENTITY_URL"), "/"),
		IdentityAnonKey:     os.Getenv("IDENTITY_ANON_KEY"),
		IdentityJWTSecret:   os.Getenv("IDENTITY_JWT_SECRET"),
		IdentityJWKSURL:     os.Getenv("IDENTITY_JWKS_URL"),
		IdentityAudience:    getEnv("IDENTITY_AUDIENCE", "authenticated"),
		OAuthProvider:       getEnv("IDENTITY_OAUTH_PROVIDER", "google"),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", appEnv != "development"),
		SessionMaxAge:       time.Hour * time.Duration(getEnvInt("SESSION_MAX_AGE_HOURS", 720)),
		DefaultLocale:       getEnv("DEFAULT_LOCALE", "pt-BR"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS"),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IdentityURL == "" {
		return nil, fmt.Errorf("IDENTITY_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.IdentityURL); err != nil {
		return nil, fmt.Errorf("IDENTITY_URL is invalid: %w", err)
	}
	if cfg.IdentityJWKSURL == "" {
		cfg.IdentityJWKSURL = cfg.IdentityURL + "/.well-known/jwks.json"
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL        string
	Token         string
	PriceFeedURL  string
	PriceCurrency string
	HTTPTimeout   time.Duration
}

// LoadClientConfig reads the terminal client settings. Nothing is required up
// front; commands that talk to the API check for a token themselves.
func LoadClientConfig() *ClientConfig {
	return &ClientConfig{
		APIURL:        strings.TrimRight(getEnv("DCA_API_URL", "http://localhost:8080"), "/"),
		Token:         strings.TrimSpace(os.Getenv("DCA_TOKEN")),
		PriceFeedURL:  strings.TrimRight(getEnv("PRICE_FEED_URL", "https://api.coingecko.com/api/v3"), "/"),
		PriceCurrency: strings.ToLower(getEnv("PRICE_CURRENCY", "brl")),
		HTTPTimeout:   time.Second * time.Duration(getEnvInt("DCA_HTTP_TIMEOUT_SECONDS", 10)),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
