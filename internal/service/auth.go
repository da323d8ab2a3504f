package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hopecenter/fatherhood/internal/model"
	"github.com/hopecenter/fatherhood/internal/store"
)

// TokenTTL is the fixed lifetime of issued bearer tokens. There is no
// revocation short of rotating the signing secret.
const TokenTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike, so
	// a login response never reveals whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned for known-but-deactivated accounts. The
	// legitimate owner is allowed to see this, unlike the enumeration case.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrUserNotFound is returned only by the setup-password flow, which may
	// reveal absence.
	ErrUserNotFound = errors.New("user not found")
	// ErrPrivilegedUnavailable means the privileged datastore role is not
	// configured in this deployment.
	ErrPrivilegedUnavailable = errors.New("privileged datastore access not configured")

	// Token verification failures form a closed set.
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrSecretMissing  = errors.New("token signing secret not configured")
)

// PasswordSetupRequiredError signals a login attempt against an account that
// has no password hash yet. It carries the public identity fields the client
// needs to route to the setup-password flow.
type PasswordSetupRequiredError struct {
	Email string
	Name  string
}

func (e *PasswordSetupRequiredError) Error() string { return "password setup required" }

// Identity is the set of claims carried in a bearer token.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// LoginResult is the outcome of a successful login or password setup.
type LoginResult struct {
	Token      string
	Admin      Identity
	FirstLogin bool
}

// AuthService implements the administrator authentication flows: credential
// login, first-time password setup, token issuance and verification, and
// activity stamping. All admin lookups and mutations go through the
// privileged datastore role.
type AuthService struct {
	priv   store.Privileged
	secret []byte
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService. An empty secret is tolerated at
// construction so the server can boot and report the misconfiguration per
// request; issuance and verification then fail with ErrSecretMissing.
func NewAuthService(priv store.Privileged, secret string, logger *slog.Logger) *AuthService {
	return &AuthService{
		priv:   priv,
		secret: []byte(secret),
		logger: logger,
		now:    time.Now,
	}
}

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the admin, valid for TokenTTL.
func (s *AuthService) IssueToken(admin *model.Admin) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSecretMissing
	}
	now := s.now()
	claims := tokenClaims{
		Email: admin.Email,
		Name:  admin.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    "fatherhood",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates a bearer token and returns the identity it carries.
// Failures are one of ErrTokenExpired, ErrTokenMalformed, or ErrSecretMissing.
func (s *AuthService) VerifyToken(tokenStr string) (*Identity, error) {
	if len(s.secret) == 0 {
		return nil, ErrSecretMissing
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	return &Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

// Login verifies credentials and issues a bearer token.
//
// The flow deliberately returns ErrInvalidCredentials for both "no such
// account" and "wrong password". When a hash exists it is always compared,
// so the two cases cannot be told apart by response shape.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	st, ok := s.priv.Get()
	if !ok {
		return nil, ErrPrivilegedUnavailable
	}

	admin, err := st.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.IsActive {
		return nil, ErrAccountDisabled
	}

	if !admin.HasPassword() {
		return nil, &PasswordSetupRequiredError{Email: admin.Email, Name: admin.Name}
	}

	if !CheckPassword(password, *admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(admin)
	if err != nil {
		return nil, err
	}

	firstLogin := admin.FirstLogin

	// Best-effort: the token is already issued, a failed stamp must not fail
	// the login.
	if err := st.RecordAdminLogin(ctx, admin.ID); err != nil {
		s.logger.Warn("failed to record admin login", "admin_id", admin.ID, "error", err)
	}

	return &LoginResult{
		Token:      token,
		Admin:      Identity{ID: admin.ID, Email: admin.Email, Name: admin.Name},
		FirstLogin: firstLogin,
	}, nil
}

// SetupPassword sets the account's first password (or a reset one), then
// issues a token exactly like Login. Unlike Login this flow may reveal that
// an account does not exist: it is gated by email ownership in practice.
// Password strength is validated at the HTTP layer before any datastore work.
func (s *AuthService) SetupPassword(ctx context.Context, email, password string) (*LoginResult, error) {
	st, ok := s.priv.Get()
	if !ok {
		return nil, ErrPrivilegedUnavailable
	}

	admin, err := st.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !admin.IsActive {
		return nil, ErrAccountDisabled
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := st.SetAdminPassword(ctx, admin.ID, hash); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(admin)
	if err != nil {
		return nil, err
	}

	if err := st.RecordAdminLogin(ctx, admin.ID); err != nil {
		s.logger.Warn("failed to record admin login", "admin_id", admin.ID, "error", err)
	}

	return &LoginResult{
		Token:      token,
		Admin:      Identity{ID: admin.ID, Email: admin.Email, Name: admin.Name},
		FirstLogin: false,
	}, nil
}

// TouchActivity moves the admin's last-activity timestamp to now.
func (s *AuthService) TouchActivity(ctx context.Context, adminID string) error {
	st, ok := s.priv.Get()
	if !ok {
		return ErrPrivilegedUnavailable
	}
	return st.TouchAdminActivity(ctx, adminID)
}
