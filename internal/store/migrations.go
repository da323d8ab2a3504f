package store

import (
	"fmt"
	"strings"
)

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			first_login BOOLEAN NOT NULL DEFAULT TRUE,
			last_login_at TIMESTAMP,
			last_activity_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS signups (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			zip TEXT NOT NULL DEFAULT '',
			children_count INTEGER NOT NULL DEFAULT 0,
			children_ages TEXT NOT NULL DEFAULT '',
			referral_source TEXT NOT NULL DEFAULT '',
			interests TEXT NOT NULL DEFAULT '',
			availability TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			consent_contact BOOLEAN NOT NULL DEFAULT TRUE,
			consent_sms BOOLEAN NOT NULL DEFAULT FALSE,
			status TEXT NOT NULL DEFAULT 'pending',
			source TEXT NOT NULL DEFAULT 'public-form',
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_signups_status ON signups(status)`,
		`CREATE INDEX IF NOT EXISTS idx_signups_created_at ON signups(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Re-running "already exists" migrations is fine; anything else is fatal.
			if strings.Contains(strings.ToLower(err.Error()), "already exists") {
				continue
			}
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
