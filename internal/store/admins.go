package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hopecenter/fatherhood/internal/model"
)

// CreateAdmin inserts a new admin account. The ID, CreatedAt, and UpdatedAt
// fields are populated after a successful insert. The email is stored
// lowercased. Accounts are created without a password hash; the setup-password
// flow sets it on first login.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	now := time.Now().UTC()
	admin.ID = uuid.Must(uuid.NewV7()).String()
	admin.Email = strings.ToLower(admin.Email)
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const q = `INSERT INTO admins
		(id, email, name, password_hash, is_active, first_login, created_at, updated_at)
		VALUES
		(:id, :email, :name, :password_hash, :is_active, :first_login, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, admin); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetAdminByEmail returns an admin by email address, matched case-insensitively.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT * FROM admins WHERE LOWER(email) = LOWER(?)")
	if err := s.db.GetContext(ctx, &admin, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY email"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// RecordAdminLogin stamps a successful login: last-login and last-activity
// move to now and the first-login flag clears.
func (s *Store) RecordAdminLogin(ctx context.Context, id string) error {
	now := time.Now().UTC()
	q := s.db.Rebind(`UPDATE admins
		SET last_login_at = ?, last_activity_at = ?, first_login = FALSE, updated_at = ?
		WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, q, now, now, now, id)
	if err != nil {
		return fmt.Errorf("record admin login: %w", err)
	}
	return oneRowAffected(result, "record admin login")
}

// SetAdminPassword persists a new password hash and clears the first-login flag.
func (s *Store) SetAdminPassword(ctx context.Context, id, hash string) error {
	now := time.Now().UTC()
	q := s.db.Rebind(`UPDATE admins
		SET password_hash = ?, first_login = FALSE, updated_at = ?
		WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, q, hash, now, id)
	if err != nil {
		return fmt.Errorf("set admin password: %w", err)
	}
	return oneRowAffected(result, "set admin password")
}

// SetAdminActive enables or disables an admin account. Disabled accounts
// fail login and setup-password with a distinct error; records are never
// deleted.
func (s *Store) SetAdminActive(ctx context.Context, id string, active bool) error {
	now := time.Now().UTC()
	q := s.db.Rebind("UPDATE admins SET is_active = ?, updated_at = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, active, now, id)
	if err != nil {
		return fmt.Errorf("set admin active: %w", err)
	}
	return oneRowAffected(result, "set admin active")
}

// TouchAdminActivity moves the last-activity timestamp to now. Used by the
// logout and heartbeat endpoints.
func (s *Store) TouchAdminActivity(ctx context.Context, id string) error {
	now := time.Now().UTC()
	q := s.db.Rebind("UPDATE admins SET last_activity_at = ?, updated_at = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, now, now, id)
	if err != nil {
		return fmt.Errorf("touch admin activity: %w", err)
	}
	return oneRowAffected(result, "touch admin activity")
}

func oneRowAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
