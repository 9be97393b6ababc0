// Package config loads server settings from the environment. A .env file in
// the working directory is read first; variables already set in the
// environment take precedence over it.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config is every setting the server and the commands read. Field comments
// name the environment variable and its default.
//
// Secrets (SESSION_SECRET, ADMIN_PASSWORD_HASH, GitHub and Redis
// credentials) only ever live here and in the services they configure.
// Nothing writes them to logs or responses; /api/config/status reports
// whether they are set, never their values.
type Config struct {
	Env       string // APP_ENV, "development"; "production" turns on JSON logs and secure cookies
	Port      int    // PORT, 8080
	DataDir   string // DATA_DIR, "data": JSON documents and backups/ for the file store
	PublicDir string // PUBLIC_DIR, "public": where the uploaded resume.pdf lives

	StoreDriver string // STORE_DRIVER, "file" or "sqlite"
	DBPath      string // DB_PATH, DATA_DIR/portfolio.db

	AdminEmail        string // ADMIN_EMAIL: the one account allowed to sign in
	AdminName         string // ADMIN_NAME, "Admin": shown in the back office
	AdminPasswordHash string // ADMIN_PASSWORD_HASH: bcrypt hash from cmd/hashpw
	AdminGitHubLogin  string // ADMIN_GITHUB_LOGIN: GitHub user granted the admin session

	SessionSecret string        // SESSION_SECRET: HMAC key for session tokens, 32+ chars
	SessionTTL    time.Duration // SESSION_TTL, 24h
	CookieSecure  bool          // COOKIE_SECURE, true in production

	// SessionSecretGenerated is set when no SESSION_SECRET was given and a
	// random one was made up; sessions then do not survive a restart.
	SessionSecretGenerated bool

	FrontendOrigin string // FRONTEND_ORIGIN: extra origin allowed by CORS, empty for none

	// Redis is used when REDIS_URL or REDIS_ADDR is set. The URL wins.
	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int // CACHE_TTL_SECONDS, 60

	// Requests per client IP per window on the login and contact routes.
	RateLimitLogin     int // RATE_LIMIT_LOGIN, 5
	RateLimitContact   int // RATE_LIMIT_CONTACT, 5
	RateLimitWindowSec int // RATE_LIMIT_WINDOW_SEC, 60

	GitHubClientID     string // GITHUB_CLIENT_ID
	GitHubClientSecret string // GITHUB_CLIENT_SECRET
	GitHubCallbackURL  string // GITHUB_CALLBACK_URL, http://localhost:PORT/api/auth/github/callback

	ResumePDF  bool   // RESUME_PDF, false: enables the headless Chrome renderer
	ChromePath string // CHROME_PATH: Chrome binary, found on PATH when empty
}

// The getEnv helpers return fallback when the variable is unset or empty.
// A value that does not parse also falls back; Validate then catches the
// ones that matter (a negative port, an unknown driver).
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// Load reads .env (if present) and the environment. Use it from main;
// tests call FromEnv with t.Setenv instead so no file is involved.
func Load() (*Config, error) {
	loadDotEnv(".env")
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
//
// A missing SESSION_SECRET is an error in production. Elsewhere a random
// one is generated so `go run ./cmd/server` works with no setup, at the
// cost of signing everybody out on restart.
func FromEnv() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	port := getEnvInt("PORT", 8080)

	cfg := &Config{
		Env:                env,
		Port:               port,
		DataDir:            getEnv("DATA_DIR", "data"),
		PublicDir:          getEnv("PUBLIC_DIR", "public"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreFile)),
		DBPath:             getEnv("DB_PATH", ""),
		AdminEmail:         strings.TrimSpace(getEnv("ADMIN_EMAIL", "")),
		AdminName:          getEnv("ADMIN_NAME", "Admin"),
		AdminPasswordHash:  strings.TrimSpace(getEnv("ADMIN_PASSWORD_HASH", "")),
		AdminGitHubLogin:   strings.TrimSpace(getEnv("ADMIN_GITHUB_LOGIN", "")),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionTTL:         getEnvDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:       getEnvBool("COOKIE_SECURE", env == "production"),
		FrontendOrigin:     getEnv("FRONTEND_ORIGIN", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 60),
		RateLimitLogin:     getEnvInt("RATE_LIMIT_LOGIN", 5),
		RateLimitContact:   getEnvInt("RATE_LIMIT_CONTACT", 5),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  getEnv("GITHUB_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/api/auth/github/callback", port)),
		ResumePDF:          getEnvBool("RESUME_PDF", false),
		ChromePath:         getEnv("CHROME_PATH", ""),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = cfg.DataDir + "/portfolio.db"
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("config: SESSION_SECRET is required in production")
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
		cfg.SessionSecretGenerated = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that would make the server misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.StoreDriver != StoreFile && c.StoreDriver != StoreSQLite {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreFile, StoreSQLite, c.StoreDriver))
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.RateLimitLogin <= 0 || c.RateLimitContact <= 0 || c.RateLimitWindowSec <= 0 {
		errs = append(errs, errors.New("rate limits and window must be positive"))
	}
	if (c.GitHubClientID == "") != (c.GitHubClientSecret == "") {
		errs = append(errs, errors.New("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET must be set together"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// CacheTTL is CACHE_TTL_SECONDS as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RateLimitWindow is RATE_LIMIT_WINDOW_SEC as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

// GitHubEnabled reports whether the OAuth client is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// RedisEnabled reports whether a Redis cache should be used.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisAddr != ""
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("config: generating session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// loadDotEnv sets variables from a KEY=value file. It understands what
// .env files usually hold: blank lines, # comments, an optional "export "
// prefix and values wrapped in single or double quotes. Variables already
// in the environment are never overwritten, so the real environment wins.
// A missing file is not an error.
func loadDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
}
