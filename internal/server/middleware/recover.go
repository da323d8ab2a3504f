package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hopecenter/fatherhood/internal/model"
)

// Recover returns an HTTP middleware that converts panics into a 500 JSON
// error envelope. Outside production mode the panic value is included in the
// message; in production the client gets a generic message and the detail
// stays in the logs.
func Recover(logger *slog.Logger, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logger.Error("panic recovered",
					"panic", fmt.Sprint(rec),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)

				message := "An unexpected error occurred."
				if !production {
					message = fmt.Sprintf("Unexpected error: %v", rec)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(model.ErrorResponse{
					Error:   model.KindInternalError,
					Message: message,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
