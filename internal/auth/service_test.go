// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

// fakeAdminStore is an in-memory AdminStore for service tests.
type fakeAdminStore struct {
	admins     map[string]*models.AdminUser
	nextID     int64
	lastLogins map[int64]time.Time
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{
		admins:     make(map[string]*models.AdminUser),
		nextID:     1,
		lastLogins: make(map[int64]time.Time),
	}
}

func (f *fakeAdminStore) GetAdminByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	admin, ok := f.admins[username]
	if !ok {
		return nil, apperrors.NotFound("admin not found")
	}
	return admin, nil
}

func (f *fakeAdminStore) CountAdmins(_ context.Context) (int64, error) {
	return int64(len(f.admins)), nil
}

func (f *fakeAdminStore) CreateAdmin(_ context.Context, username, passwordHash string) (*models.AdminUser, error) {
	admin := &models.AdminUser{
		ID:           f.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	f.nextID++
	f.admins[username] = admin
	return admin, nil
}

func (f *fakeAdminStore) UpdateAdminLastLogin(_ context.Context, id int64, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeAdminStore) {
	t.Helper()

	store := newFakeAdminStore()
	hash, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if _, err := store.CreateAdmin(context.Background(), "admin", hash); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	svc := NewService(store, newTestManager(t, time.Hour), NewMemoryRevocationStore())
	return svc, store
}

func TestLoginSuccess(t *testing.T) {
	svc, store := newTestService(t)

	resp, err := svc.Login(context.Background(), "admin", "correct-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected token in response")
	}
	if resp.Username != "admin" || resp.UserID != 1 {
		t.Errorf("identity = %q/%d", resp.Username, resp.UserID)
	}
	if _, ok := store.lastLogins[1]; !ok {
		t.Error("login must update last_login")
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, errUnknown := svc.Login(ctx, "nobody", "x")
	_, errWrongPw := svc.Login(ctx, "admin", "wrong")

	for _, err := range []error{errUnknown, errWrongPw} {
		if !apperrors.IsKind(err, apperrors.KindUnauthorized) {
			t.Errorf("got %v, want unauthorized", err)
		}
	}
	// Identical messages prevent username enumeration.
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("login failure messages differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestVerifyAcceptsLiveSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, "admin", "correct-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := svc.Verify(ctx, resp.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("username = %q", claims.Username)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, "admin", "correct-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	_, err = svc.Verify(ctx, resp.Token)
	if !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Errorf("verify after logout = %v, want unauthorized", err)
	}
}

func TestLogoutOnlyAffectsOneSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "admin", "correct-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	second, err := svc.Login(ctx, "admin", "correct-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, first.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.Verify(ctx, first.Token); err == nil {
		t.Error("logged-out session must be rejected")
	}
	if _, err := svc.Verify(ctx, second.Token); err != nil {
		t.Errorf("other session must survive: %v", err)
	}
}

func TestLogoutWithGarbageTokenIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Logout(context.Background(), "not-a-token"); err != nil {
		t.Errorf("Logout with garbage token: %v", err)
	}
}

func TestEnsureDefaultAdmin(t *testing.T) {
	store := newFakeAdminStore()
	ctx := context.Background()

	if err := EnsureDefaultAdmin(ctx, store, "admin", "bootstrap-pw"); err != nil {
		t.Fatalf("EnsureDefaultAdmin: %v", err)
	}

	admin, err := store.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not seeded: %v", err)
	}
	if !CheckPassword(admin.PasswordHash, "bootstrap-pw") {
		t.Error("seeded password does not verify")
	}
	if admin.PasswordHash == "bootstrap-pw" {
		t.Error("password stored in plaintext")
	}

	// A second call with different credentials must not touch existing accounts.
	if err := EnsureDefaultAdmin(ctx, store, "other", "pw2"); err != nil {
		t.Fatalf("EnsureDefaultAdmin (2nd): %v", err)
	}
	if len(store.admins) != 1 {
		t.Errorf("admin count = %d, want 1", len(store.admins))
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TokenFromRequest(r); got != "" {
		t.Errorf("empty request token = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
	if got := TokenFromRequest(r); got != "cookie-token" {
		t.Errorf("cookie token = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	if got := TokenFromRequest(r); got != "header-token" {
		t.Errorf("header token = %q", got)
	}

	// Cookie wins over header.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")
	if got := TokenFromRequest(r); got != "cookie-token" {
		t.Errorf("precedence token = %q", got)
	}
}

func TestSessionCookieFlags(t *testing.T) {
	w := httptest.NewRecorder()
	SetSessionCookie(w, "tok", time.Now().Add(time.Hour), true)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookie count = %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "tok" {
		t.Errorf("cookie = %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie flags: httponly=%v secure=%v samesite=%v", c.HttpOnly, c.Secure, c.SameSite)
	}

	w = httptest.NewRecorder()
	ClearSessionCookie(w, false)
	c = w.Result().Cookies()[0]
	if c.MaxAge != -1 || c.Value != "" {
		t.Errorf("clear cookie: maxage=%d value=%q", c.MaxAge, c.Value)
	}
}
