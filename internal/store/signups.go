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

// ListFilter narrows and pages a signup listing. A zero Limit means
// "no pagination": all matching rows are returned and Offset is ignored.
type ListFilter struct {
	Status model.Status // empty means all statuses
	Offset int
	Limit  int
}

// CreateSignup inserts a new signup record, populating ID and CreatedAt.
// The email is stored lowercased. A unique-constraint violation is returned
// unwrapped enough for IsDuplicate to classify.
func (s *Store) CreateSignup(ctx context.Context, sg *model.Signup) error {
	sg.ID = uuid.Must(uuid.NewV7()).String()
	sg.Email = strings.ToLower(sg.Email)
	sg.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO signups
		(id, full_name, email, phone, address, zip, children_count, children_ages,
		 referral_source, interests, availability, notes, consent_contact, consent_sms,
		 status, source, created_at)
		VALUES
		(:id, :full_name, :email, :phone, :address, :zip, :children_count, :children_ages,
		 :referral_source, :interests, :availability, :notes, :consent_contact, :consent_sms,
		 :status, :source, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, q, sg); err != nil {
		return fmt.Errorf("insert signup: %w", err)
	}
	return nil
}

// GetSignupByID returns a single signup record.
func (s *Store) GetSignupByID(ctx context.Context, id string) (*model.Signup, error) {
	var sg model.Signup
	q := s.db.Rebind("SELECT * FROM signups WHERE id = ?")
	if err := s.db.GetContext(ctx, &sg, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get signup: %w", err)
	}
	return &sg, nil
}

// GetSignupByEmail returns a signup by email, matched case-insensitively.
func (s *Store) GetSignupByEmail(ctx context.Context, email string) (*model.Signup, error) {
	var sg model.Signup
	q := s.db.Rebind("SELECT * FROM signups WHERE LOWER(email) = LOWER(?)")
	if err := s.db.GetContext(ctx, &sg, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get signup by email: %w", err)
	}
	return &sg, nil
}

// ListSignups returns signup records newest first, narrowed by the filter.
func (s *Store) ListSignups(ctx context.Context, f ListFilter) ([]model.Signup, error) {
	q := "SELECT * FROM signups"
	var args []interface{}
	if f.Status != "" {
		q += " WHERE status = ?"
		args = append(args, f.Status)
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	signups := []model.Signup{}
	if err := s.db.SelectContext(ctx, &signups, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list signups: %w", err)
	}
	return signups, nil
}

// CountSignups returns the number of signup records with the given status,
// or all records when status is empty.
func (s *Store) CountSignups(ctx context.Context, status model.Status) (int64, error) {
	q := "SELECT COUNT(*) FROM signups"
	var args []interface{}
	if status != "" {
		q += " WHERE status = ?"
		args = append(args, status)
	}

	var count int64
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(q), args...); err != nil {
		return 0, fmt.Errorf("count signups: %w", err)
	}
	return count, nil
}

// UpdateSignupStatus transitions a signup to a new status. The caller is
// responsible for validating the status against the enum.
func (s *Store) UpdateSignupStatus(ctx context.Context, id string, status model.Status) error {
	q := s.db.Rebind("UPDATE signups SET status = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return fmt.Errorf("update signup status: %w", err)
	}
	return oneRowAffected(result, "update signup status")
}

// UpdateSignup replaces every mutable field of a signup record. The ID and
// CreatedAt columns are never written.
func (s *Store) UpdateSignup(ctx context.Context, sg *model.Signup) error {
	sg.Email = strings.ToLower(sg.Email)

	const q = `UPDATE signups SET
		full_name = :full_name, email = :email, phone = :phone, address = :address,
		zip = :zip, children_count = :children_count, children_ages = :children_ages,
		referral_source = :referral_source, interests = :interests,
		availability = :availability, notes = :notes,
		consent_contact = :consent_contact, consent_sms = :consent_sms,
		status = :status
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, sg)
	if err != nil {
		return fmt.Errorf("update signup: %w", err)
	}
	return oneRowAffected(result, "update signup")
}

// DeleteSignup removes a signup record. Returns ErrNotFound when no row
// matched; the HTTP layer treats that as success to keep deletes idempotent.
func (s *Store) DeleteSignup(ctx context.Context, id string) error {
	q := s.db.Rebind("DELETE FROM signups WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete signup: %w", err)
	}
	return oneRowAffected(result, "delete signup")
}

// SignupStats aggregates the dashboard counters: total records, records from
// the trailing 7 days, and a per-status breakdown.
func (s *Store) SignupStats(ctx context.Context) (*model.SignupStats, error) {
	stats := &model.SignupStats{ByStatus: make(map[model.Status]int64)}

	if err := s.db.GetContext(ctx, &stats.Total, "SELECT COUNT(*) FROM signups"); err != nil {
		return nil, fmt.Errorf("count signups: %w", err)
	}

	weekAgo := time.Now().UTC().Add(-7 * 24 * time.Hour)
	q := s.db.Rebind("SELECT COUNT(*) FROM signups WHERE created_at >= ?")
	if err := s.db.GetContext(ctx, &stats.LastWeek, q, weekAgo); err != nil {
		return nil, fmt.Errorf("count recent signups: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, "SELECT status, COUNT(*) FROM signups GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count signups by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status model.Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	// Every status appears in the breakdown, even with zero records.
	for _, st := range model.Statuses() {
		if _, ok := stats.ByStatus[st]; !ok {
			stats.ByStatus[st] = 0
		}
	}
	return stats, nil
}
