package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hopecenter/fatherhood/internal/handler"
	"github.com/hopecenter/fatherhood/internal/server/middleware"
	"github.com/hopecenter/fatherhood/internal/service"
	"github.com/hopecenter/fatherhood/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Production      bool

	// Public signup endpoint backpressure: SignupLimit accepted submissions
	// per source IP per rolling SignupWindow.
	SignupLimit  int
	SignupWindow time.Duration
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		SignupLimit:     5,
		SignupWindow:    time.Hour,
	}
}

// Server is the top-level HTTP server. It owns the Chi router and the
// handler wiring; all durable state lives in the datastore.
type Server struct {
	cfg        Config
	router     chi.Router
	public     *store.Store
	authSvc    *service.AuthService
	signupSvc  *service.SignupService
	priv       store.Privileged
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired, ready for
// ListenAndServe.
func New(cfg Config, public *store.Store, priv store.Privileged, authSvc *service.AuthService, signupSvc *service.SignupService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		public:    public,
		priv:      priv,
		authSvc:   authSvc,
		signupSvc: signupSvc,
		logger:    logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recover(s.logger, s.cfg.Production))
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Liveness (no auth) ---
	r.Get("/health", s.handleHealth)
	r.Get("/api/health", s.handleHealth)

	authHandler := handler.NewAuthHandler(s.authSvc, s.logger)
	signupHandler := handler.NewSignupHandler(s.signupSvc, s.priv, s.logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/setup-password", authHandler.SetupPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.authSvc))
			r.Get("/verify", authHandler.Verify)
			r.Post("/logout", authHandler.Logout)
			r.Post("/update-activity", authHandler.UpdateActivity)
		})
	})

	r.Route("/api/fatherhood", func(r chi.Router) {
		// Public submission, rate limited per source IP.
		r.With(middleware.SignupRateLimit(s.cfg.SignupLimit, s.cfg.SignupWindow)).
			Post("/signup", signupHandler.Submit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.authSvc))
			r.Get("/signups", signupHandler.List)
			r.Post("/signups", signupHandler.Create)
			r.Get("/signups/stats", signupHandler.Stats)
			r.Get("/signups/{id}", signupHandler.Get)
			r.Patch("/signups/{id}/status", signupHandler.UpdateStatus)
			r.Put("/signups/{id}", signupHandler.Update)
			r.Delete("/signups/{id}", signupHandler.Delete)
		})
	})

	s.router = r
}

// handleHealth is a liveness probe that also reports datastore reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	database := "ok"

	if err := s.public.Ping(r.Context()); err != nil {
		status = "degraded"
		database = "error: " + err.Error()
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   status,
		"database": database,
	})
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then drains in-flight requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
