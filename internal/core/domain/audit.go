package domain

import "time"

// AuditAction names the operation an audit event records.
type AuditAction string

const (
	AuditLogin           AuditAction = "login"
	AuditAccountCreated  AuditAction = "account_created"
	AuditAccountUpdated  AuditAction = "account_updated"
	AuditAccountDeleted  AuditAction = "account_deleted"
	AuditPasswordChanged AuditAction = "password_changed"
)

// AuditEvent is one entry in the security audit trail. Events for the same
// EmployeeID are persisted in submission order.
type AuditEvent struct {
	EmployeeID string      `json:"employee_id"`
	Email      string      `json:"email,omitempty"`
	ActorID    string      `json:"actor_id,omitempty"`
	Action     AuditAction `json:"action"`
	Outcome    string      `json:"outcome"`
	At         time.Time   `json:"at"`
}
