package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/service"
)

const (
	// Where failed form logins and OAuth errors are sent back to, and where
	// a successful login lands when no callbackUrl was given.
	loginPage       = "/admin/login"
	defaultCallback = "/admin"
	// stateCookieName holds the OAuth state between /github/login and the
	// callback. It is scoped to /api/auth/github and lives ten minutes.
	stateCookieName = "oauth_state"
	maxLoginBytes   = 16 << 10
)

// AuthHandler signs the admin in and out.
//
// POST /api/auth/login accepts JSON ({"email","password"}) from API
// clients and a urlencoded form from the login page. Form posts are
// answered with redirects, JSON posts with JSON.
type AuthHandler struct {
	auth   *service.AuthService
	github *auth.GitHubProvider
	secure bool
	logger *slog.Logger
}

// NewAuthHandler builds the handler. github may be nil when OAuth sign-in is
// not configured.
func NewAuthHandler(authSvc *service.AuthService, github *auth.GitHubProvider, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		github: github,
		secure: secureCookies,
		logger: logger,
	}
}

// loginRequest is the JSON login body. callbackUrl is accepted so the same
// payload works for both forms, but JSON clients are never redirected.
type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl"`
}

// sessionResponse is {} for visitors and {"user", "expires"} for the admin,
// the shape the frontend checks with a simple truthiness test on user.
type sessionResponse struct {
	User    any    `json:"user,omitempty"`
	Expires string `json:"expires,omitempty"`
}

// HandleLogin checks the admin credentials and sets the session cookie.
//
// JSON responses:
//
//	200 {"success": true, "user": {...}, "expires": "<RFC 3339>"}
//	400 missing email or password
//	401 wrong email or password (the same message for both)
//	503 no credentials configured on this server
//
// The route is rate limited per IP by the router.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if isFormPost(r) {
		h.handleFormLogin(w, r)
		return
	}

	body, err := readBody(w, r, maxLoginBytes)
	if err != nil {
		writeError(w, err, "Login failed")
		return
	}
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperror.ValidationFailed("", "Invalid JSON"), "")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, apperror.ValidationFailed("", "Email and password are required"), "")
		return
	}

	token, session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err, "Login failed")
		return
	}

	auth.SetSessionCookie(w, token, session.ExpiresAt, h.secure)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    session.AdminUser,
		"expires": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// handleFormLogin is the browser path of HandleLogin. Every outcome is a
// 303 redirect: to the callback on success, back to the sign-in page with
// an ?error= code on failure. The callback is kept on failure so the next
// attempt still lands where the admin was going.
func (h *AuthHandler) handleFormLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	callback := safeRedirect(r.PostForm.Get("callbackUrl"), defaultCallback)

	token, session, err := h.auth.Login(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		code := "CredentialsSignin"
		if errors.Is(err, apperror.ErrUnavailable) {
			code = "Configuration"
		} else if !errors.Is(err, apperror.ErrUnauthorized) {
			code = "Default"
		}
		target := loginPage + "?error=" + code + "&callbackUrl=" + url.QueryEscape(callback)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	auth.SetSessionCookie(w, token, session.ExpiresAt, h.secure)
	http.Redirect(w, r, callback, http.StatusSeeOther)
}

// HandleLogout clears the session cookie. The token itself stays valid
// until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secure)
	if isFormPost(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleSession reports the current session, or {} when there is none.
// It relies on auth.OptionalSession.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		User:    session.AdminUser,
		Expires: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// HandleGitHubLogin redirects to GitHub with a fresh state value that the
// callback checks against a short-lived cookie.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil || !h.auth.GitHubConfigured() {
		writeError(w, apperror.Unavailable("GitHub sign-in is not configured"), "")
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/auth/github",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes the OAuth flow started by HandleGitHubLogin.
//
// Steps, each of which can fail on its own:
//  1. The state query value must equal the state cookie (CSRF check). The
//     cookie is cleared right away so a state is only ever used once.
//  2. GitHub may report that the user declined; that is AccessDenied.
//  3. The code is exchanged for the GitHub profile.
//  4. The profile must belong to ADMIN_GITHUB_LOGIN. Anyone else is sent
//     back to the sign-in page without a session.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeError(w, apperror.Unavailable("GitHub sign-in is not configured"), "")
		return
	}

	q := r.URL.Query()
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || q.Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/api/auth/github", MaxAge: -1})

	if errParam := q.Get("error"); errParam != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, loginPage+"?error=AccessDenied", http.StatusSeeOther)
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	user, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, loginPage+"?error=OAuthCallback", http.StatusSeeOther)
		return
	}

	token, session, err := h.auth.LoginGitHub(r.Context(), user)
	if err != nil {
		http.Redirect(w, r, loginPage+"?error=AccessDenied", http.StatusSeeOther)
		return
	}

	auth.SetSessionCookie(w, token, session.ExpiresAt, h.secure)
	http.Redirect(w, r, defaultCallback, http.StatusSeeOther)
}

// isFormPost reports whether the body is an HTML form rather than JSON.
func isFormPost(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// safeRedirect keeps redirects on this site: only absolute paths are
// accepted, never scheme-relative or full URLs.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return target
}
