// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/logging"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

// CookieName is the session cookie set on login.
const CookieName = "token"

// AdminStore is the persistence surface the session service needs.
// Implemented by the database layer.
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	CountAdmins(ctx context.Context) (int64, error)
	CreateAdmin(ctx context.Context, username, passwordHash string) (*models.AdminUser, error)
	UpdateAdminLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service implements login, logout, and session verification.
type Service struct {
	store      AdminStore
	jwt        *JWTManager
	revocation RevocationStore
}

// NewService assembles the session service.
func NewService(store AdminStore, jwt *JWTManager, revocation RevocationStore) *Service {
	return &Service{store: store, jwt: jwt, revocation: revocation}
}

// Login verifies admin credentials and issues a session token.
// Failures are reported uniformly so usernames cannot be enumerated.
func (s *Service) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	admin, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			logging.Ctx(ctx).Warn().Str("username", username).Msg("login attempt for unknown user")
			return nil, apperrors.Unauthorized("invalid username or password")
		}
		return nil, err
	}

	if !CheckPassword(admin.PasswordHash, password) {
		logging.Ctx(ctx).Warn().Str("username", username).Msg("login attempt with wrong password")
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	token, claims, err := s.jwt.GenerateToken(admin.Username, admin.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to issue session token", err)
	}

	now := time.Now().UTC()
	if err := s.store.UpdateAdminLastLogin(ctx, admin.ID, now); err != nil {
		// Last-login is advisory; the session is already valid.
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to update last_login")
	}

	logging.Ctx(ctx).Info().Str("username", admin.Username).Msg("admin logged in")

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Username:  admin.Username,
		UserID:    admin.ID,
	}, nil
}

// Verify validates a session token: signature and time claims first, then a
// revocation lookup by jti.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "invalid session", err)
	}

	revoked, err := s.revocation.IsRevoked(ctx, claims.ID)
	if err != nil {
		// Fail closed on revocation store errors.
		return nil, apperrors.Wrap(apperrors.KindInternal, "revocation lookup failed", err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("session has been revoked")
	}

	return claims, nil
}

// Logout revokes the session behind the given token until its natural
// expiry. An already-invalid token is treated as logged out.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		// Expired or garbage tokens have nothing to revoke.
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.revocation.Revoke(ctx, claims.ID, claims.Username, ttl); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to revoke session", err)
	}

	logging.Ctx(ctx).Info().Str("username", claims.Username).Msg("admin logged out")
	return nil
}

// EnsureDefaultAdmin seeds the first operator account when the admin table
// is empty, so a fresh deployment is immediately operable.
func EnsureDefaultAdmin(ctx context.Context, store AdminStore, username, password string) error {
	count, err := store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := store.CreateAdmin(ctx, username, hash); err != nil {
		return err
	}

	logging.Info().Str("username", username).Msg("seeded default admin account")
	return nil
}

// TokenFromRequest extracts the session token from the cookie or, failing
// that, a bearer Authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	const bearerPrefix = "Bearer "
	authz := r.Header.Get("Authorization")
	if len(authz) > len(bearerPrefix) && authz[:len(bearerPrefix)] == bearerPrefix {
		return authz[len(bearerPrefix):]
	}

	return ""
}

// SetSessionCookie attaches the session token as an HTTP-only cookie.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
