package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hopecenter/fatherhood/internal/model"
	"github.com/hopecenter/fatherhood/internal/server/middleware"
	"github.com/hopecenter/fatherhood/internal/service"
	"github.com/hopecenter/fatherhood/internal/store"
)

// AuthHandler exposes the administrator authentication endpoints: login,
// setup-password, token verification, logout, and the activity heartbeat.
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

type adminIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Success    bool          `json:"success"`
	Token      string        `json:"token"`
	Admin      adminIdentity `json:"admin"`
	FirstLogin bool          `json:"firstLogin"`
}

// passwordSetupResponse is returned when a login hits an account with no
// password hash. Email and name are not secret; the flag routes the client
// to the setup-password screen. No token is ever issued on this path.
type passwordSetupResponse struct {
	Success               bool   `json:"success"`
	RequiresPasswordSetup bool   `json:"requiresPasswordSetup"`
	Email                 string `json:"email"`
	Name                  string `json:"name"`
	Message               string `json:"message"`
}

// Login authenticates an admin by email and password.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, "Invalid request body.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, err.Error())
		return
	}

	result, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var setup *service.PasswordSetupRequiredError
		if errors.As(err, &setup) {
			writeJSON(w, http.StatusOK, passwordSetupResponse{
				RequiresPasswordSetup: true,
				Email:                 setup.Email,
				Name:                  setup.Name,
				Message:               "Password setup required before first login.",
			})
			return
		}
		h.writeAuthFlowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:    true,
		Token:      result.Token,
		Admin:      adminIdentity(result.Admin),
		FirstLogin: result.FirstLogin,
	})
}

// SetupPassword sets a first-time (or reset) password, then logs in.
// POST /api/auth/setup-password
func (h *AuthHandler) SetupPassword(w http.ResponseWriter, r *http.Request) {
	var req setupPasswordRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, "Invalid request body.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, err.Error())
		return
	}

	result, err := h.authSvc.SetupPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthFlowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:    true,
		Token:      result.Token,
		Admin:      adminIdentity(result.Admin),
		FirstLogin: false,
	})
}

// Verify confirms the bearer token is valid and returns its identity.
// GET /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admin":   adminIdentity{ID: p.AdminID, Email: p.Email, Name: p.Name},
	})
}

// Logout stamps last-activity and acknowledges. Tokens are stateless, so
// there is nothing to invalidate server side; clients discard the token.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if err := h.authSvc.TouchActivity(r.Context(), p.AdminID); err != nil {
		h.logger.Warn("failed to stamp activity on logout", "admin_id", p.AdminID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out.",
	})
}

// UpdateActivity is the admin console heartbeat.
// POST /api/auth/update-activity
func (h *AuthHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if err := h.authSvc.TouchActivity(r.Context(), p.AdminID); err != nil {
		switch {
		case errors.Is(err, service.ErrPrivilegedUnavailable):
			writeError(w, http.StatusServiceUnavailable, model.KindServiceUnavailable,
				"Administrative features are not configured on this server.")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, model.KindNotFound, "Account not found.")
		default:
			writeError(w, http.StatusInternalServerError, model.KindInternalError,
				"Failed to update activity.")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// writeAuthFlowError maps login/setup-password failures to the error
// taxonomy. Unknown email and wrong password share one response on purpose.
func (h *AuthHandler) writeAuthFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, model.KindUnauthorized, "Invalid email or password.")
	case errors.Is(err, service.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, model.KindAccountDisabled, "This account has been disabled.")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, model.KindNotFound, "No account found for this email.")
	case errors.Is(err, service.ErrPrivilegedUnavailable):
		writeError(w, http.StatusServiceUnavailable, model.KindServiceUnavailable,
			"Administrative features are not configured on this server.")
	case errors.Is(err, service.ErrSecretMissing):
		writeError(w, http.StatusInternalServerError, model.KindServerConfigError,
			"Authentication is not configured on this server.")
	default:
		h.logger.Error("auth flow failure", "error", err)
		writeError(w, http.StatusInternalServerError, model.KindInternalError,
			"An unexpected error occurred.")
	}
}
