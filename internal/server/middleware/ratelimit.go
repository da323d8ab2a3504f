package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/hopecenter/fatherhood/internal/model"
)

// SignupRateLimit returns an HTTP middleware that caps public signup
// submissions per source IP over a sliding window. Rejections happen before
// the handler runs, so an over-limit request never touches the datastore.
//
// Counters are process-local; horizontally scaled deployments rate-limit per
// instance unless the limiter is swapped for one backed by a shared store.
func SignupRateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(model.ErrorResponse{
				Error:   model.KindTooManyRequests,
				Message: "Too many signup attempts. Please try again later.",
			})
		}),
	)
}
