package domain

import "time"

// OutcomeKind tags the result of one login evaluation. Expected login
// failures are outcomes, not errors; only unexpected backend failure
// travels on the error channel alongside OutcomeBackendUnavailable.
type OutcomeKind string

const (
	OutcomeSuccess            OutcomeKind = "success"
	OutcomeInvalidCredential  OutcomeKind = "invalid_credential"
	OutcomeLockedOut          OutcomeKind = "locked_out"
	OutcomeInactiveAccount    OutcomeKind = "inactive_account"
	OutcomeRoleMismatch       OutcomeKind = "role_mismatch"
	OutcomeUnknownIdentity    OutcomeKind = "unknown_identity"
	OutcomeBackendUnavailable OutcomeKind = "backend_unavailable"
)

// LoginOutcome is the typed result of AuthService.Login.
type LoginOutcome struct {
	Kind OutcomeKind

	// EmployeeID and Role are set only on success.
	EmployeeID string
	Role       Role

	// AttemptsRemaining is set on invalid_credential and role_mismatch.
	AttemptsRemaining int

	// RetryAfter is set on locked_out.
	RetryAfter time.Duration
}

// Granted reports whether the outcome authorizes access.
func (o LoginOutcome) Granted() bool {
	return o.Kind == OutcomeSuccess
}

func SuccessOutcome(employeeID string, role Role) LoginOutcome {
	return LoginOutcome{Kind: OutcomeSuccess, EmployeeID: employeeID, Role: role}
}

func InvalidCredentialOutcome(attemptsRemaining int) LoginOutcome {
	return LoginOutcome{Kind: OutcomeInvalidCredential, AttemptsRemaining: attemptsRemaining}
}

func RoleMismatchOutcome(attemptsRemaining int) LoginOutcome {
	return LoginOutcome{Kind: OutcomeRoleMismatch, AttemptsRemaining: attemptsRemaining}
}

func LockedOutOutcome(retryAfter time.Duration) LoginOutcome {
	return LoginOutcome{Kind: OutcomeLockedOut, RetryAfter: retryAfter}
}

func InactiveAccountOutcome() LoginOutcome {
	return LoginOutcome{Kind: OutcomeInactiveAccount}
}

func UnknownIdentityOutcome() LoginOutcome {
	return LoginOutcome{Kind: OutcomeUnknownIdentity}
}

func BackendUnavailableOutcome() LoginOutcome {
	return LoginOutcome{Kind: OutcomeBackendUnavailable}
}
