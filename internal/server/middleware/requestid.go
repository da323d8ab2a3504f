package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKeyRequestID string

// RequestIDKey is the context key for the request ID.
const RequestIDKey contextKeyRequestID = "request_id"

// requestIDHeader is honored from clients and echoed on every response.
const requestIDHeader = "X-Request-ID"

// RequestID is an HTTP middleware that tags each request with a UUIDv7,
// unless the client already supplied one in the X-Request-ID header. The ID
// goes on the response header and into the request context for log
// correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the context, or returns an empty
// string when none is present.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
