// Command server runs the portfolio site: public pages, the JSON API and
// the admin back office.
//
// main stays small. It reads configuration, builds the dependencies (store,
// auth, PDF renderer) and hands them to internal/server, which owns routing
// and shutdown. Everything with behaviour worth testing lives in internal/.
//
// Settings come from the environment (see internal/config for every key);
// a .env file in the working directory is read too, but real environment
// variables win over it.
//
// Other entry points:
//
//	cmd/seed    writes the bundled defaults into the configured store
//	cmd/hashpw  prints a bcrypt hash for ADMIN_PASSWORD_HASH
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/resume"
	"github.com/sakif/portfolio/internal/server"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/internal/store"
	"github.com/sakif/portfolio/web"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// Load collects every problem (bad port, unknown store driver, half set
	// GitHub credentials) into one error, so a misconfigured deploy reports
	// all of them at once. There is no logger yet; the default slog handler
	// writes to stderr.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := newLogger(cfg)

	// === 3. BUILD AND RUN ===
	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger picks the slog handler for the environment. Production gets
// JSON at Info so a log collector can index the fields; development gets
// readable text at Debug.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// run wires the dependencies and blocks until the server stops. Anything
// that holds a resource (database, Redis client, Chrome) is appended to
// closers and closed by the server on shutdown, or here if setup fails.
func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.SessionSecretGenerated {
		logger.Warn("SESSION_SECRET not set, using a random secret; sessions end on restart")
	}

	// --- Storage: file or sqlite, behind the document cache ---
	repo, closers, err := store.Open(context.Background(), cfg, logger)
	if err != nil {
		return err
	}

	// --- Sessions ---
	tokens, err := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		closeAll(closers)
		return err
	}

	// --- Admin credentials ---
	// Only a bcrypt hash is accepted. A plain password pasted into
	// ADMIN_PASSWORD_HASH turns password sign-in off instead of being
	// compared as text.
	passwordHash := cfg.AdminPasswordHash
	if passwordHash != "" && !auth.IsHash(passwordHash) {
		logger.Error("ADMIN_PASSWORD_HASH is not a bcrypt hash, password sign-in disabled; generate one with cmd/hashpw")
		passwordHash = ""
	}
	if cfg.AdminEmail == "" || passwordHash == "" {
		logger.Warn("admin credentials not configured, password sign-in disabled")
	}
	authSvc := service.NewAuthService(service.AdminCredentials{
		Email:        cfg.AdminEmail,
		Name:         cfg.AdminName,
		PasswordHash: passwordHash,
		GitHubLogin:  cfg.AdminGitHubLogin,
	}, tokens, auth.NewPasswordService(), logger)

	// --- Optional GitHub sign-in ---
	var github *auth.GitHubProvider
	if cfg.GitHubEnabled() {
		github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	}

	// --- Optional PDF rendering ---
	// Chrome is launched on the first PDF request, not here.
	var renderer resume.Renderer
	if cfg.ResumePDF {
		chromeCfg := resume.DefaultChromeConfig()
		chromeCfg.ExecPath = cfg.ChromePath
		chrome := resume.NewChromeRenderer(chromeCfg, logger)
		renderer = chrome
		closers = append(closers, chrome)
	} else {
		logger.Info("resume PDF rendering disabled, set RESUME_PDF=true to enable")
	}

	srv, err := server.New(server.Config{
		Port:            cfg.Port,
		PublicDir:       cfg.PublicDir,
		CookieSecure:    cfg.CookieSecure,
		FrontendOrigin:  cfg.FrontendOrigin,
		LoginLimit:      cfg.RateLimitLogin,
		ContactLimit:    cfg.RateLimitContact,
		RateLimitWindow: cfg.RateLimitWindow(),
		// Flags only: /api/config/status is public.
		Status: handler.ConfigStatus{
			AdminEmail:        cfg.AdminEmail != "",
			AdminPasswordHash: passwordHash != "",
			SessionSecret:     !cfg.SessionSecretGenerated,
			GitHubOAuth:       cfg.GitHubEnabled() && cfg.AdminGitHubLogin != "",
			RedisCache:        cfg.RedisEnabled(),
			PDFRenderer:       renderer != nil,
			StoreDriver:       cfg.StoreDriver,
		},
	}, server.Deps{
		Repo:      repo,
		Tokens:    tokens,
		Auth:      authSvc,
		GitHub:    github,
		Renderer:  renderer,
		Templates: web.Templates,
		Static:    web.Static(),
		Closers:   closers,
	}, logger)
	if err != nil {
		closeAll(closers)
		return err
	}

	// Start blocks until SIGINT/SIGTERM, then drains requests and closes
	// every entry in closers.
	return srv.Start()
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
