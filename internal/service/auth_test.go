package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hopecenter/fatherhood/internal/model"
	"github.com/hopecenter/fatherhood/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuth(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st, err := store.Open("sqlite", "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	auth := NewAuthService(store.WithPrivileged(st), testSecret, testLogger())
	return auth, st
}

// seedAdmin creates an active admin with the given password already set.
func seedAdmin(t *testing.T, st *store.Store, email, password string) *model.Admin {
	t.Helper()
	ctx := context.Background()
	admin := &model.Admin{Email: email, Name: "Test Admin", IsActive: true, FirstLogin: true}
	if err := st.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		if err := st.SetAdminPassword(ctx, admin.ID, hash); err != nil {
			t.Fatalf("SetAdminPassword: %v", err)
		}
	}
	return admin
}

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

func TestTokenRoundTrip(t *testing.T) {
	auth, _ := newTestAuth(t)

	admin := &model.Admin{ID: "adm-1", Email: "pat@example.org", Name: "Pat"}
	token, err := auth.IssueToken(admin)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	identity, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if identity.ID != "adm-1" || identity.Email != "pat@example.org" || identity.Name != "Pat" {
		t.Errorf("identity = %+v", identity)
	}
}

func TestTokenAcceptedJustBeforeExpiry(t *testing.T) {
	auth, _ := newTestAuth(t)

	// Issued 23h59m ago: still inside the 24h window.
	auth.now = func() time.Time { return time.Now().Add(-(TokenTTL - time.Minute)) }
	token, err := auth.IssueToken(&model.Admin{ID: "adm-1", Email: "pat@example.org"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := auth.VerifyToken(token); err != nil {
		t.Errorf("expected token still valid, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	auth, _ := newTestAuth(t)

	// Issued 24h01m ago: past expiry.
	auth.now = func() time.Time { return time.Now().Add(-(TokenTTL + time.Minute)) }
	token, err := auth.IssueToken(&model.Admin{ID: "adm-1", Email: "pat@example.org"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = auth.VerifyToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	auth, _ := newTestAuth(t)

	for _, tok := range []string{"garbage", "a.b.c", ""} {
		if _, err := auth.VerifyToken(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("VerifyToken(%q): expected ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestTokenWrongSecretIsMalformed(t *testing.T) {
	auth, _ := newTestAuth(t)
	other := NewAuthService(store.NoPrivileged(), "another-secret-another-secret-32", testLogger())

	token, err := other.IssueToken(&model.Admin{ID: "adm-1", Email: "pat@example.org"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := auth.VerifyToken(token); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed for wrong secret, got %v", err)
	}
}

func TestTokenSecretMissing(t *testing.T) {
	auth := NewAuthService(store.NoPrivileged(), "", testLogger())

	if _, err := auth.IssueToken(&model.Admin{ID: "adm-1"}); !errors.Is(err, ErrSecretMissing) {
		t.Errorf("IssueToken: expected ErrSecretMissing, got %v", err)
	}
	if _, err := auth.VerifyToken("whatever"); !errors.Is(err, ErrSecretMissing) {
		t.Errorf("VerifyToken: expected ErrSecretMissing, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLoginSuccess(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()
	admin := seedAdmin(t, st, "pat@example.org", "Sup3rSecret")

	result, err := auth.Login(ctx, "pat@example.org", "Sup3rSecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Error("expected non-empty token")
	}
	if result.Admin.ID != admin.ID {
		t.Errorf("Admin.ID = %q, want %q", result.Admin.ID, admin.ID)
	}

	// The login stamp is best-effort but should have landed here.
	got, _ := st.GetAdminByEmail(ctx, admin.Email)
	if got.LastLoginAt == nil {
		t.Error("expected last_login_at stamped after login")
	}
	if got.FirstLogin {
		t.Error("expected first_login cleared after login")
	}
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	auth, st := newTestAuth(t)
	seedAdmin(t, st, "pat@example.org", "Sup3rSecret")

	if _, err := auth.Login(context.Background(), "PAT@Example.ORG", "Sup3rSecret"); err != nil {
		t.Errorf("Login with different casing: %v", err)
	}
}

func TestLoginUniformInvalidCredentials(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()
	seedAdmin(t, st, "pat@example.org", "Sup3rSecret")

	// Unknown account and wrong password must be indistinguishable.
	_, errUnknown := auth.Login(ctx, "nobody@example.org", "Sup3rSecret")
	_, errWrongPw := auth.Login(ctx, "pat@example.org", "WrongPassword1")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPw)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()
	admin := seedAdmin(t, st, "pat@example.org", "Sup3rSecret")
	if err := st.SetAdminActive(ctx, admin.ID, false); err != nil {
		t.Fatalf("SetAdminActive: %v", err)
	}

	// Disabled wins regardless of password correctness.
	if _, err := auth.Login(ctx, "pat@example.org", "Sup3rSecret"); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("correct password: expected ErrAccountDisabled, got %v", err)
	}
	if _, err := auth.Login(ctx, "pat@example.org", "WrongPassword1"); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("wrong password: expected ErrAccountDisabled, got %v", err)
	}
}

func TestLoginPasswordNotSet(t *testing.T) {
	auth, st := newTestAuth(t)
	seedAdmin(t, st, "new@example.org", "") // no password yet

	_, err := auth.Login(context.Background(), "new@example.org", "anything")
	var setup *PasswordSetupRequiredError
	if !errors.As(err, &setup) {
		t.Fatalf("expected PasswordSetupRequiredError, got %v", err)
	}
	if setup.Email != "new@example.org" {
		t.Errorf("Email = %q", setup.Email)
	}
	if setup.Name != "Test Admin" {
		t.Errorf("Name = %q", setup.Name)
	}
}

func TestLoginPrivilegedUnavailable(t *testing.T) {
	auth := NewAuthService(store.NoPrivileged(), testSecret, testLogger())

	if _, err := auth.Login(context.Background(), "pat@example.org", "pw"); !errors.Is(err, ErrPrivilegedUnavailable) {
		t.Errorf("expected ErrPrivilegedUnavailable, got %v", err)
	}
}

func TestLoginSecretMissing(t *testing.T) {
	_, st := newTestAuth(t)
	seedAdmin(t, st, "pat@example.org", "Sup3rSecret")
	auth := NewAuthService(store.WithPrivileged(st), "", testLogger())

	if _, err := auth.Login(context.Background(), "pat@example.org", "Sup3rSecret"); !errors.Is(err, ErrSecretMissing) {
		t.Errorf("expected ErrSecretMissing, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Setup password
// ---------------------------------------------------------------------------

func TestSetupPasswordThenLogin(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()
	seedAdmin(t, st, "new@example.org", "")

	result, err := auth.SetupPassword(ctx, "new@example.org", "Sup3rSecret1")
	if err != nil {
		t.Fatalf("SetupPassword: %v", err)
	}
	if result.Token == "" {
		t.Error("expected token after setup")
	}
	if result.FirstLogin {
		t.Error("setup response always reports firstLogin false")
	}

	if _, err := auth.Login(ctx, "new@example.org", "Sup3rSecret1"); err != nil {
		t.Errorf("login after setup: %v", err)
	}
}

func TestSetupPasswordUnknownUser(t *testing.T) {
	auth, _ := newTestAuth(t)

	// Unlike login, this flow may reveal absence.
	if _, err := auth.SetupPassword(context.Background(), "nobody@example.org", "Sup3rSecret1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSetupPasswordDisabledAccount(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()
	admin := seedAdmin(t, st, "pat@example.org", "")
	st.SetAdminActive(ctx, admin.ID, false)

	if _, err := auth.SetupPassword(ctx, "pat@example.org", "Sup3rSecret1"); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Activity
// ---------------------------------------------------------------------------

func TestTouchActivity(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()
	admin := seedAdmin(t, st, "pat@example.org", "Sup3rSecret")

	if err := auth.TouchActivity(ctx, admin.ID); err != nil {
		t.Fatalf("TouchActivity: %v", err)
	}
	got, _ := st.GetAdminByEmail(ctx, admin.Email)
	if got.LastActivityAt == nil {
		t.Error("expected last_activity_at stamped")
	}

	if err := auth.TouchActivity(ctx, "no-such-id"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("Sup3rSecret", hash) {
		t.Error("expected password to verify")
	}
	if CheckPassword("WrongPassword1", hash) {
		t.Error("expected wrong password to fail")
	}
}
