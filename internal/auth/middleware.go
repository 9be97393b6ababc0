package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CookieName is the cookie holding the session token.
const CookieName = "session"

// contextKey is unexported so no other package can read or overwrite the
// session stored in a request context.
type contextKey struct{}

// RequireAdmin rejects API requests without an admin session with a JSON
// 401. The session is stored in the request context for handlers.
func RequireAdmin(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionFromRequest(r, tokens)
			if err != nil || !session.IsAdmin() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAdminPage guards server-rendered admin pages. Visitors without an
// admin session are sent to loginPath with the page they wanted in
// callbackUrl.
func RequireAdminPage(tokens *TokenService, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionFromRequest(r, tokens)
			if err != nil || !session.IsAdmin() {
				target := loginPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// OptionalSession attaches the session when one is present and never
// rejects the request.
func OptionalSession(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, err := sessionFromRequest(r, tokens); err == nil {
				r = r.WithContext(WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFromContext returns the session attached by one of the guards.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// SetSessionCookie stores token in an HttpOnly cookie that expires with it.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

var errNoToken = errors.New("auth: no session token")

// sessionFromRequest reads the token from the session cookie, falling back
// to an "Authorization: Bearer" header for API clients.
func sessionFromRequest(r *http.Request, tokens *TokenService) (*Session, error) {
	token := ""
	if c, err := r.Cookie(CookieName); err == nil {
		token = c.Value
	}
	if token == "" {
		if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			token = strings.TrimSpace(h[7:])
		}
	}
	if token == "" {
		return nil, errNoToken
	}
	return tokens.Validate(token)
}
