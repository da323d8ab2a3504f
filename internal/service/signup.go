package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hopecenter/fatherhood/internal/model"
	"github.com/hopecenter/fatherhood/internal/store"
)

// ErrDuplicateEmail is returned when a signup already exists for the email,
// whether caught by the pre-check or by the datastore's unique constraint.
var ErrDuplicateEmail = errors.New("a signup with this email already exists")

// SignupService handles signup record creation. The public submission path
// uses the restricted datastore role; manual admin entry uses the privileged
// one. Both share the duplicate-email taxonomy.
type SignupService struct {
	public *store.Store
	priv   store.Privileged
}

// NewSignupService creates a SignupService.
func NewSignupService(public *store.Store, priv store.Privileged) *SignupService {
	return &SignupService{public: public, priv: priv}
}

// Submit creates a signup from the public form. The record's status is
// forced to pending and its source to public-form regardless of input.
func (s *SignupService) Submit(ctx context.Context, sg *model.Signup) error {
	sg.Status = model.StatusPending
	sg.Source = model.SourcePublicForm
	return s.create(ctx, s.public, sg)
}

// CreateManual creates a signup entered by an admin. The status defaults to
// pending when unset; the source is forced to manual-admin-entry.
func (s *SignupService) CreateManual(ctx context.Context, sg *model.Signup) error {
	st, ok := s.priv.Get()
	if !ok {
		return ErrPrivilegedUnavailable
	}
	if sg.Status == "" {
		sg.Status = model.StatusPending
	}
	sg.Source = model.SourceManualEntry
	return s.create(ctx, st, sg)
}

func (s *SignupService) create(ctx context.Context, st *store.Store, sg *model.Signup) error {
	sg.Email = strings.ToLower(sg.Email)

	// Pre-check for a friendly 409. A concurrent insert can still slip past
	// this; the unique constraint below is the authoritative guard.
	_, err := st.GetSignupByEmail(ctx, sg.Email)
	switch {
	case err == nil:
		return ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	if err := st.CreateSignup(ctx, sg); err != nil {
		if store.IsDuplicate(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}
