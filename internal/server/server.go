// Package server wires repositories, services and handlers into one chi
// router and runs it with graceful shutdown.
//
// Routes:
//
//	GET    /, /blog, /blog/{slug}, /resume         public pages
//	GET    /admin/login                            sign-in form
//	GET    /admin, /admin/edit/{resource},
//	       /admin/contacts                         admin pages (redirect to sign-in)
//	GET    /api/portfolio/{resource}               document or its default
//	POST   /api/portfolio/{resource}               replace document (admin)
//	GET    /api/portfolio/{resource}/backups       list backups (admin)
//	GET    /api/portfolio/blog?category=           posts, optionally filtered
//	GET    /api/portfolio/blog/{slug}              one post
//	POST   /api/portfolio/blog                     replace list or upsert one post (admin)
//	DELETE /api/portfolio/blog?id=                 delete one post (admin)
//	GET    /api/portfolio/resume/pdf               resume as PDF
//	POST   /api/upload/resume                      upload resume.pdf (admin)
//	POST   /api/auth/login, /api/auth/logout
//	GET    /api/auth/session, /api/auth/github/login, /api/auth/github/callback
//	POST   /api/contact                            public contact form
//	GET    /api/admin/contacts                     inbox (admin)
//	PATCH  /api/admin/contacts/{id}                set status (admin)
//	DELETE /api/admin/contacts/{id}                (admin)
//	GET    /api/config/status, /healthz
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/middleware"
	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/resume"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/internal/validation"
)

const loginPath = "/admin/login"

// Config holds the HTTP-level settings.
type Config struct {
	Port           int
	PublicDir      string
	CookieSecure   bool
	FrontendOrigin string

	LoginLimit      int
	ContactLimit    int
	RateLimitWindow time.Duration

	// Status is served verbatim by /api/config/status.
	Status handler.ConfigStatus
}

// Deps are the collaborators built by the caller. Renderer and GitHub may
// be nil. Closers are closed, in order, when the server stops.
type Deps struct {
	Repo      repository.DocumentRepository
	Tokens    *auth.TokenService
	Auth      *service.AuthService
	GitHub    *auth.GitHubProvider
	Renderer  resume.Renderer
	Templates fs.FS
	Static    fs.FS
	Closers   []io.Closer
}

type Server struct {
	router  *chi.Mux
	config  Config
	deps    Deps
	logger  *slog.Logger
	content *service.ContentService
}

// New builds the service layer on deps.Repo and registers every route.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Server, error) {
	if deps.Repo == nil || deps.Tokens == nil || deps.Auth == nil {
		return nil, errors.New("server: repository, token service and auth service are required")
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		deps:    deps,
		logger:  logger,
		content: service.NewContentService(deps.Repo, validation.New(), logger),
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(90 * time.Second))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.config.FrontendOrigin))

	pages, err := handler.NewPageHandler(s.deps.Templates, s.content, s.deps.Auth, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	contentHandler := handler.NewContentHandler(s.content, s.logger)
	contactHandler := handler.NewContactHandler(s.content, s.logger)
	resumeHandler := handler.NewResumeHandler(s.content, s.deps.Renderer, s.logger)
	uploadHandler := handler.NewUploadHandler(s.config.PublicDir, s.logger)
	authHandler := handler.NewAuthHandler(s.deps.Auth, s.deps.GitHub, s.config.CookieSecure, s.logger)

	loginLimiter := middleware.NewRateLimiter(s.config.LoginLimit, s.config.RateLimitWindow)
	contactLimiter := middleware.NewRateLimiter(s.config.ContactLimit, s.config.RateLimitWindow)

	requireAdmin := auth.RequireAdmin(s.deps.Tokens)
	optionalSession := auth.OptionalSession(s.deps.Tokens)

	if s.deps.Static != nil {
		s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(s.deps.Static)))
	}
	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Get("/"+handler.ResumeFileName, uploadHandler.HandleResumeFile)

	// Public pages.
	s.router.Group(func(r chi.Router) {
		r.Use(optionalSession)
		r.Get("/", pages.HandleHome)
		r.Get("/blog", pages.HandleBlog)
		r.Get("/blog/{slug}", pages.HandlePost)
		r.Get("/resume", resumeHandler.HandlePage)
		r.Get(loginPath, pages.HandleLogin)
	})

	// Admin pages.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAdminPage(s.deps.Tokens, loginPath))
		r.Get("/admin", pages.HandleDashboard)
		r.Get("/admin/edit/{resource}", pages.HandleEditor)
		r.Get("/admin/contacts", pages.HandleContacts)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/config/status", handler.HandleConfigStatus(s.config.Status))

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.With(optionalSession).Get("/session", authHandler.HandleSession)
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		})

		r.With(contactLimiter.Middleware).Post("/contact", contactHandler.HandleSubmit)

		r.Route("/portfolio", func(r chi.Router) {
			// Reads are public; private resources check the optional session.
			r.Group(func(r chi.Router) {
				r.Use(optionalSession)
				r.Get("/blog", contentHandler.HandleListBlog)
				r.Get("/blog/{slug}", contentHandler.HandleGetBlogPost)
				r.Get("/resume/pdf", resumeHandler.HandlePDF)
				r.Get("/resume/view", resumeHandler.HandleJSON)
				r.Get("/{resource}", contentHandler.HandleGet)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/blog", contentHandler.HandleSaveBlog)
				r.Delete("/blog", contentHandler.HandleDeleteBlog)
				// /blog/{slug} would otherwise capture "backups".
				r.Get("/blog/backups", withResource(content.Blog, contentHandler.HandleBackups))
				r.Get("/{resource}/backups", contentHandler.HandleBackups)
				r.Post("/{resource}", contentHandler.HandleSave)
			})
		})

		r.With(requireAdmin).Post("/upload/resume", uploadHandler.HandleResumeUpload)

		r.Route("/admin/contacts", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", contactHandler.HandleList)
			r.Patch("/{id}", contactHandler.HandleUpdateStatus)
			r.Delete("/{id}", contactHandler.HandleDelete)
		})
	})

	return nil
}

// withResource pins the {resource} URL parameter for routes that spell the
// resource name out.
func withResource(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.URLParams.Add("resource", name)
		}
		next(w, r)
	}
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests and
// closes every Deps.Closers entry.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// PDF rendering can take most of a minute.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

// Close releases the store, cache and renderer.
func (s *Server) Close() {
	for _, c := range s.deps.Closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}
	s.deps.Closers = nil
}
