package ports

import (
	"context"

	"github.com/rollertrack/access-api/internal/core/domain"
)

// AuthService evaluates login attempts. Expected denials (bad secret,
// lockout, inactive account, role mismatch, unknown identity) are returned
// as outcomes with a nil error; the error is non-nil only when the outcome
// is OutcomeBackendUnavailable and carries the underlying cause.
type AuthService interface {
	Login(ctx context.Context, email, secretText string, claimedRole domain.Role) (domain.LoginOutcome, error)
}
