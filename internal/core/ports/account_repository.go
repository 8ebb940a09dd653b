package ports

import (
	"context"

	"github.com/rollertrack/access-api/internal/core/domain"
)

// AccountRepository is the persistence collaborator the core depends on.
// All calls are atomic at single-record granularity. Multi-record invariants
// (super-admin uniqueness) are enforced by the implementation itself — a
// partial unique index in the Mongo implementation — so the in-core
// existence check is a fast-fail, not the sole guarantor.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*domain.Account, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	List(ctx context.Context) ([]*domain.Account, error)

	// Search matches employee id, email, or role by substring.
	Search(ctx context.Context, term string) ([]*domain.Account, error)

	// Insert persists a new account and fills in its storage ID.
	// Uniqueness violations surface as *domain.ConflictError.
	Insert(ctx context.Context, account *domain.Account) error

	// Update persists the account conditionally on its Version field and
	// bumps the version on success. A concurrent-writer race surfaces as
	// domain.ErrVersionConflict; the record is never silently overwritten.
	Update(ctx context.Context, account *domain.Account) error

	Delete(ctx context.Context, employeeID string) error
}
