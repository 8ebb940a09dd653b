package ports

import (
	"context"

	"github.com/rollertrack/access-api/internal/core/domain"
)

// CreateAccountInput carries the fields for a new account.
type CreateAccountInput struct {
	EmployeeID string
	Email      string
	Password   string
	Role       domain.Role
	Active     bool
}

// UpdateAccountInput carries the mutable identity fields of an account.
// Credential and lockout fields are managed by ChangePassword and the
// authentication service, never here.
type UpdateAccountInput struct {
	EmployeeID string
	Email      string
	Role       domain.Role
	Active     bool
}

// DirectoryService gates every create/read/update/delete of accounts.
// The acting identity is passed explicitly; expected denials surface as
// domain.ErrPermissionDenied, *domain.ConflictError, *domain.ValidationError,
// or domain.ErrAccountNotFound.
type DirectoryService interface {
	List(ctx context.Context, actor domain.Actor) ([]*domain.Account, error)
	Search(ctx context.Context, actor domain.Actor, term string) ([]*domain.Account, error)
	Get(ctx context.Context, actor domain.Actor, employeeID string) (*domain.Account, error)
	Create(ctx context.Context, actor domain.Actor, in CreateAccountInput) (*domain.Account, error)
	Update(ctx context.Context, actor domain.Actor, employeeID string, in UpdateAccountInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, actor domain.Actor, employeeID, newSecret string) error
	Delete(ctx context.Context, actor domain.Actor, employeeID string) error
}
