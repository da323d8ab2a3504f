package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hopecenter/fatherhood/internal/model"
	"github.com/hopecenter/fatherhood/internal/service"
)

type contextKeyAuth string

// AuthPrincipalKey is the context key for the authenticated principal.
const AuthPrincipalKey contextKeyAuth = "auth_principal"

// Principal is the authenticated admin identity attached to the request
// context by Authenticate.
type Principal struct {
	AdminID string
	Email   string
	Name    string
}

// Authenticate returns an HTTP middleware that requires a valid bearer token
// in the Authorization header. Verification failures map to kind-specific
// 401s, except a missing signing secret, which is a deployment fault and
// answers 500 so it cannot be mistaken for a client error.
func Authenticate(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, model.KindUnauthorized,
					"Authentication required. Provide a Bearer token.")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			identity, err := authSvc.VerifyToken(token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					writeAuthError(w, http.StatusUnauthorized, model.KindUnauthorized,
						"Token expired. Please log in again.")
				case errors.Is(err, service.ErrSecretMissing):
					writeAuthError(w, http.StatusInternalServerError, model.KindServerConfigError,
						"Authentication is not configured on this server.")
				default:
					writeAuthError(w, http.StatusUnauthorized, model.KindUnauthorized,
						"Invalid token.")
				}
				return
			}

			principal := &Principal{
				AdminID: identity.ID,
				Email:   identity.Email,
				Name:    identity.Name,
			}
			ctx := context.WithValue(r.Context(), AuthPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil for unauthenticated requests.
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: kind, Message: message})
}
