package model

import "time"

// Status is the lifecycle state of a signup record. Transitions are driven
// exclusively by admin actions; public submissions always start as pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusContacted Status = "contacted"
	StatusEnrolled  Status = "enrolled"
	StatusInactive  Status = "inactive"
	StatusCompleted Status = "completed"
)

// Statuses lists every valid signup status, in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusContacted, StatusEnrolled, StatusInactive, StatusCompleted}
}

// Valid reports whether s is a recognized signup status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusContacted, StatusEnrolled, StatusInactive, StatusCompleted:
		return true
	}
	return false
}

// Source tags how a signup record entered the system.
type Source string

const (
	SourcePublicForm  Source = "public-form"
	SourceManualEntry Source = "manual-admin-entry"
)

// Signup is a Fatherhood Initiative program signup. Email is unique across
// records (case-insensitive) and stored lowercased; the datastore's unique
// constraint is the authoritative guard against duplicates.
type Signup struct {
	ID             string    `json:"id" db:"id"`
	FullName       string    `json:"fullName" db:"full_name"`
	Email          string    `json:"email" db:"email"`
	Phone          string    `json:"phone" db:"phone"`
	Address        string    `json:"address,omitempty" db:"address"`
	Zip            string    `json:"zip,omitempty" db:"zip"`
	ChildrenCount  int       `json:"childrenCount,omitempty" db:"children_count"`
	ChildrenAges   string    `json:"childrenAges,omitempty" db:"children_ages"`
	ReferralSource string    `json:"referralSource,omitempty" db:"referral_source"`
	Interests      string    `json:"interests,omitempty" db:"interests"`
	Availability   string    `json:"availability,omitempty" db:"availability"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	ConsentContact bool      `json:"consentToContact" db:"consent_contact"`
	ConsentSMS     bool      `json:"consentToSms" db:"consent_sms"`
	Status         Status    `json:"status" db:"status"`
	Source         Source    `json:"source" db:"source"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// SignupStats aggregates signup counts for the admin dashboard.
type SignupStats struct {
	Total    int64            `json:"total"`
	LastWeek int64            `json:"lastWeek"`
	ByStatus map[Status]int64 `json:"byStatus"`
}
