package model

import "time"

// Admin represents an administrative user of the Fatherhood Initiative
// console. Accounts are provisioned out-of-band (CLI); a freshly created
// account has no password hash and must complete the setup-password flow
// before its first login.
type Admin struct {
	ID             string     `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	Name           string     `json:"name" db:"name"`
	PasswordHash   *string    `json:"-" db:"password_hash"` // bcrypt hash, nil until set, never expose
	IsActive       bool       `json:"isActive" db:"is_active"`
	FirstLogin     bool       `json:"firstLogin" db:"first_login"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty" db:"last_activity_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether the account has completed password setup.
func (a *Admin) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}
