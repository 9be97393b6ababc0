// Package auth holds the admin session machinery: signed session tokens,
// bcrypt password checks, the HTTP guards in front of admin routes, and the
// optional GitHub sign-in.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/portfolio/internal/model"
)

const (
	issuer = "portfolio"

	// DefaultSessionTTL matches how long an admin stays signed in.
	DefaultSessionTTL = 24 * time.Hour
)

// ErrTokenExpired lets callers tell an old session from a forged one.
var ErrTokenExpired = errors.New("auth: token expired")

// Session is what a valid token proves: who the admin is and until when.
type Session struct {
	model.AdminUser
	ExpiresAt time.Time `json:"expires"`
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == model.RoleAdmin
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService signs tokens with secret (at least 32 bytes for HS256)
// valid for ttl. A zero ttl means DefaultSessionTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, errors.New("auth: session secret must be at least 32 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens, used for the cookie Max-Age too.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// claims is the token payload: the admin identity plus the registered
// claims (sub, iss, iat, exp) that Validate checks.
type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a session token for admin.
func (s *TokenService) Issue(admin model.AdminUser) (string, *Session, error) {
	return s.issue(admin, s.ttl)
}

func (s *TokenService) issue(admin model.AdminUser, ttl time.Duration) (string, *Session, error) {
	now := s.now()
	expires := now.Add(ttl)

	c := claims{
		Email: admin.Email,
		Name:  admin.Name,
		Role:  admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, &Session{AdminUser: admin, ExpiresAt: expires.UTC().Truncate(time.Second)}, nil
}

// Validate checks signature, algorithm, issuer and expiry, and returns the
// session the token carries.
func (s *TokenService) Validate(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}

	return &Session{
		AdminUser: model.AdminUser{Email: c.Email, Name: c.Name, Role: c.Role},
		ExpiresAt: c.ExpiresAt.Time.UTC(),
	}, nil
}
