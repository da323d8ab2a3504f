package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hopecenter/fatherhood/internal/model"
	"github.com/hopecenter/fatherhood/internal/server/middleware"
	"github.com/hopecenter/fatherhood/internal/service"
	"github.com/hopecenter/fatherhood/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testEnv wires handlers onto a router the same way the server does, against
// an in-memory datastore.
type testEnv struct {
	router  *chi.Mux
	store   *store.Store
	authSvc *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open("sqlite", "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	priv := store.WithPrivileged(st)
	authSvc := service.NewAuthService(priv, testSecret, logger)
	signupSvc := service.NewSignupService(st, priv)

	authHandler := NewAuthHandler(authSvc, logger)
	signupHandler := NewSignupHandler(signupSvc, priv, logger)

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/setup-password", authHandler.SetupPassword)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authSvc))
			r.Get("/verify", authHandler.Verify)
			r.Post("/logout", authHandler.Logout)
			r.Post("/update-activity", authHandler.UpdateActivity)
		})
	})
	r.Route("/api/fatherhood", func(r chi.Router) {
		r.Post("/signup", signupHandler.Submit)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authSvc))
			r.Get("/signups", signupHandler.List)
			r.Post("/signups", signupHandler.Create)
			r.Get("/signups/stats", signupHandler.Stats)
			r.Get("/signups/{id}", signupHandler.Get)
			r.Patch("/signups/{id}/status", signupHandler.UpdateStatus)
			r.Put("/signups/{id}", signupHandler.Update)
			r.Delete("/signups/{id}", signupHandler.Delete)
		})
	})

	return &testEnv{router: r, store: st, authSvc: authSvc}
}

// seedAdmin creates an active admin, optionally with a password already set,
// and returns the record.
func (e *testEnv) seedAdmin(t *testing.T, email, password string) *model.Admin {
	t.Helper()
	ctx := context.Background()
	admin := &model.Admin{Email: email, Name: "Test Admin", IsActive: true, FirstLogin: true}
	if err := e.store.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if password != "" {
		hash, err := service.HashPassword(password)
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		if err := e.store.SetAdminPassword(ctx, admin.ID, hash); err != nil {
			t.Fatalf("SetAdminPassword: %v", err)
		}
	}
	return admin
}

// token seeds an admin and returns a valid bearer token for it.
func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	admin := e.seedAdmin(t, "auth@example.org", "Sup3rSecret")
	token, err := e.authSvc.IssueToken(admin)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// newRawRequest builds a request with a literal body, for malformed-JSON cases.
func newRawRequest(method, path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d: %s", rr.Code, want, rr.Body.String())
	}
}

func assertErrorKind(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	var resp model.ErrorResponse
	decodeJSON(t, rr, &resp)
	if resp.Error != want {
		t.Errorf("error kind = %q, want %q", resp.Error, want)
	}
}

// validSignupBody returns a submission payload that passes validation.
func validSignupBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"fullName":      "Jordan Smith",
		"email":         email,
		"phone":         "(202) 555-0142",
		"zip":           "20001",
		"childrenCount": 2,
	}
}
