package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/model"
)

// AdminCredentials identify the single admin. PasswordHash is a bcrypt
// hash; there is no plaintext alternative.
type AdminCredentials struct {
	Email        string
	Name         string
	PasswordHash string

	// GitHubLogin, when set, is the GitHub account allowed to sign in
	// through OAuth as the same admin.
	GitHubLogin string
}

// AuthService decides who gets an admin session.
//
// SINGLE ADMIN:
// There is no user table and no sign-up. The one admin is described by
// configuration (ADMIN_EMAIL, ADMIN_PASSWORD_HASH, ADMIN_GITHUB_LOGIN) and
// everything a session needs is carried inside the signed token. Changing
// the configuration and restarting is how the admin is changed.
//
// Either way in (password or GitHub), the result is the same session with
// the admin role. Which one was used is only written to the log.
type AuthService struct {
	creds     AdminCredentials
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates the service. Empty credentials are allowed: the
// site still runs, and sign-in attempts get ErrUnavailable (503).
func NewAuthService(
	creds AdminCredentials,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		creds:     creds,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// PasswordConfigured reports whether email/password sign-in can succeed.
func (s *AuthService) PasswordConfigured() bool {
	return s.creds.Email != "" && s.creds.PasswordHash != ""
}

// GitHubConfigured reports whether a GitHub account is mapped to the admin.
func (s *AuthService) GitHubConfigured() bool {
	return s.creds.GitHubLogin != ""
}

// admin is the identity put in every session.
func (s *AuthService) admin() model.AdminUser {
	name := s.creds.Name
	if name == "" {
		name = "Admin"
	}
	return model.AdminUser{Email: s.creds.Email, Name: name, Role: model.RoleAdmin}
}

// Login checks email and password and issues an admin session token.
// Both a wrong email and a wrong password yield the same Unauthorized
// error, and the bcrypt comparison runs either way.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *auth.Session, error) {
	if !s.PasswordConfigured() {
		return "", nil, apperror.Unavailable("admin credentials are not configured")
	}

	emailOK := strings.EqualFold(strings.TrimSpace(email), s.creds.Email)
	err := s.passwords.Verify(s.creds.PasswordHash, password)
	if err != nil && !errors.Is(err, auth.ErrInvalidPassword) {
		s.logger.Error("admin password hash unusable", slog.String("error", err.Error()))
		return "", nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}
	if !emailOK || err != nil {
		s.logger.Warn("admin login rejected", slog.String("email", email))
		return "", nil, apperror.Unauthorized("Invalid credentials")
	}

	return s.issue("password")
}

// LoginGitHub turns a GitHub identity into an admin session when it is the
// configured admin account.
func (s *AuthService) LoginGitHub(ctx context.Context, user *auth.GitHubUser) (string, *auth.Session, error) {
	if !s.GitHubConfigured() {
		return "", nil, apperror.Unavailable("GitHub sign-in is not configured")
	}
	if user == nil || !strings.EqualFold(user.Login, s.creds.GitHubLogin) {
		login := ""
		if user != nil {
			login = user.Login
		}
		s.logger.Warn("GitHub login rejected", slog.String("login", login))
		return "", nil, apperror.Forbidden("this GitHub account is not the site admin")
	}
	return s.issue("github")
}

// ValidateToken returns the session carried by token.
func (s *AuthService) ValidateToken(token string) (*auth.Session, error) {
	session, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Unauthorized("session is invalid or expired")
	}
	return session, nil
}

func (s *AuthService) issue(method string) (string, *auth.Session, error) {
	token, session, err := s.tokens.Issue(s.admin())
	if err != nil {
		return "", nil, fmt.Errorf("service/auth: issuing session: %w", err)
	}
	s.logger.Info("admin signed in", slog.String("method", method), slog.String("email", session.Email))
	return token, session, nil
}
