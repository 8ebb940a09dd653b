package domain

import "time"

// Account is the persisted identity, credential, and lockout state for one
// person. EmployeeID is the stable external key; Email is the login name.
// Credential material never serializes outward.
type Account struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employee_id"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	Active         bool       `json:"active"`
	PasswordHash   string     `json:"-"`
	PasswordSalt   string     `json:"-"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	Version        int64      `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Locked reports whether the account is under an unexpired lock at now.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.LockedUntil != nil {
		until := *a.LockedUntil
		clone.LockedUntil = &until
	}
	return &clone
}

// Actor identifies the authenticated caller of a directory operation.
// It is passed explicitly into every guard check; there is no ambient
// "current user" state in the core.
type Actor struct {
	EmployeeID string
	Role       Role
}
