package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hopecenter/fatherhood/internal/model"
	"github.com/hopecenter/fatherhood/internal/service"
	"github.com/hopecenter/fatherhood/internal/store"
)

// SignupHandler exposes the public submission endpoint and the admin CRUD
// surface over signup records. Admin operations run against the privileged
// datastore role and answer 503 when it is not configured.
type SignupHandler struct {
	svc    *service.SignupService
	priv   store.Privileged
	logger *slog.Logger
}

// NewSignupHandler creates a SignupHandler.
func NewSignupHandler(svc *service.SignupService, priv store.Privileged, logger *slog.Logger) *SignupHandler {
	return &SignupHandler{svc: svc, priv: priv, logger: logger}
}

type signupResponse struct {
	Success bool          `json:"success"`
	Data    *model.Signup `json:"data"`
}

type signupListResponse struct {
	Success    bool              `json:"success"`
	Data       []model.Signup    `json:"data"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

// Submit accepts a public form submission. Rate limiting happens in
// middleware before this handler runs.
// POST /api/fatherhood/signup
func (h *SignupHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload signupPayload
	if err := readJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, "Invalid request body.")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, err.Error())
		return
	}

	sg := payload.toModel()
	if err := h.svc.Submit(r.Context(), sg); err != nil {
		h.writeSignupError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signupResponse{Success: true, Data: sg})
}

// List returns signup records, optionally filtered by status and paginated.
// Pagination metadata is included only when the client supplied a limit.
// GET /api/fatherhood/signups
func (h *SignupHandler) List(w http.ResponseWriter, r *http.Request) {
	st, ok := h.priv.Get()
	if !ok {
		h.writeNoPrivileged(w)
		return
	}

	var status model.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = model.Status(raw)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, model.KindValidationError, statusSetMessage(raw))
			return
		}
	}

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	signups, err := st.ListSignups(r.Context(), store.ListFilter{
		Status: status,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		h.writeSignupError(w, err)
		return
	}

	resp := signupListResponse{Success: true, Data: signups}
	if limit > 0 {
		total, err := st.CountSignups(r.Context(), status)
		if err != nil {
			h.writeSignupError(w, err)
			return
		}
		resp.Pagination = &model.Pagination{
			Total:   total,
			HasMore: int64(offset+len(signups)) < total,
			Limit:   limit,
			Offset:  offset,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single signup record.
// GET /api/fatherhood/signups/{id}
func (h *SignupHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, ok := h.priv.Get()
	if !ok {
		h.writeNoPrivileged(w)
		return
	}

	sg, err := st.GetSignupByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeSignupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signupResponse{Success: true, Data: sg})
}

// UpdateStatus transitions a signup record's status.
// PATCH /api/fatherhood/signups/{id}/status
func (h *SignupHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := h.priv.Get()
	if !ok {
		h.writeNoPrivileged(w)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, "Invalid request body.")
		return
	}
	status := model.Status(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, model.KindValidationError, statusSetMessage(req.Status))
		return
	}

	if err := st.UpdateSignupStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		h.writeSignupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": status})
}

// Update replaces every mutable field of a signup record. The ID and
// creation timestamp are not part of the payload and cannot change.
// PUT /api/fatherhood/signups/{id}
func (h *SignupHandler) Update(w http.ResponseWriter, r *http.Request) {
	st, ok := h.priv.Get()
	if !ok {
		h.writeNoPrivileged(w)
		return
	}

	existing, err := st.GetSignupByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeSignupError(w, err)
		return
	}

	var payload signupPayload
	if err := readJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, "Invalid request body.")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, err.Error())
		return
	}

	status := existing.Status
	if payload.Status != "" {
		status = model.Status(payload.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, model.KindValidationError, statusSetMessage(payload.Status))
			return
		}
	}

	updated := payload.toModel()
	updated.ID = existing.ID
	updated.Source = existing.Source
	updated.CreatedAt = existing.CreatedAt
	updated.Status = status

	if err := st.UpdateSignup(r.Context(), updated); err != nil {
		if store.IsDuplicate(err) {
			writeError(w, http.StatusConflict, model.KindDuplicateEmail,
				"Another signup already uses this email.")
			return
		}
		h.writeSignupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signupResponse{Success: true, Data: updated})
}

// Create is manual admin entry of a signup record.
// POST /api/fatherhood/signups
func (h *SignupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload signupPayload
	if err := readJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, "Invalid request body.")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, model.KindValidationError, err.Error())
		return
	}

	sg := payload.toModel()
	if payload.Status != "" {
		status := model.Status(payload.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, model.KindValidationError, statusSetMessage(payload.Status))
			return
		}
		sg.Status = status
	}

	if err := h.svc.CreateManual(r.Context(), sg); err != nil {
		h.writeSignupError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signupResponse{Success: true, Data: sg})
}

// Delete removes a signup record. Deleting a missing record is a success:
// the end state is the same.
// DELETE /api/fatherhood/signups/{id}
func (h *SignupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	st, ok := h.priv.Get()
	if !ok {
		h.writeNoPrivileged(w)
		return
	}

	if err := st.DeleteSignup(r.Context(), chi.URLParam(r, "id")); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.writeSignupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Stats returns the aggregate signup counters for the admin dashboard.
// GET /api/fatherhood/signups/stats
func (h *SignupHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, ok := h.priv.Get()
	if !ok {
		h.writeNoPrivileged(w)
		return
	}

	stats, err := st.SignupStats(r.Context())
	if err != nil {
		h.writeSignupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": stats})
}

func (h *SignupHandler) writeNoPrivileged(w http.ResponseWriter) {
	writeError(w, http.StatusServiceUnavailable, model.KindServiceUnavailable,
		"Administrative features are not configured on this server.")
}

func (h *SignupHandler) writeSignupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, model.KindDuplicateEmail,
			"A signup with this email already exists.")
	case errors.Is(err, service.ErrPrivilegedUnavailable):
		h.writeNoPrivileged(w)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, model.KindNotFound, "Signup not found.")
	default:
		h.logger.Error("signup operation failure", "error", err)
		writeError(w, http.StatusInternalServerError, model.KindInternalError,
			"An unexpected error occurred.")
	}
}
