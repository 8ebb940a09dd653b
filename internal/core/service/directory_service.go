package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/rollertrack/access-api/internal/core/domain"
	"github.com/rollertrack/access-api/internal/core/ports"
	"github.com/rollertrack/access-api/internal/core/secret"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// PasswordPolicy validates a candidate password before it is hashed.
// Implementations return a *domain.ValidationError describing the failure.
type PasswordPolicy func(secretText string) error

// DefaultPasswordPolicy requires at least 6 characters with at least one
// letter and one digit.
func DefaultPasswordPolicy(secretText string) error {
	if len(secretText) < 6 {
		return &domain.ValidationError{Field: "password", Reason: "must be at least 6 characters long"}
	}
	var hasLetter, hasDigit bool
	for _, r := range secretText {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return &domain.ValidationError{Field: "password", Reason: "must contain at least one letter and one number"}
	}
	return nil
}

// DirectoryService enforces the cross-record invariants on account
// mutations: at most one super admin, super-admin records touchable only by
// a super admin, no self-delete, identity and email uniqueness. Gate checks
// are pure predicates over (acting role, target record, proposed change);
// the unique indexes at the persistence layer remain the race-proof
// guarantor behind the in-core fast-fail checks.
type DirectoryService struct {
	repo       ports.AccountRepository
	codec      secret.Codec
	passPolicy PasswordPolicy
	locks      LockCache           // optional
	audit      ports.AuditRecorder // optional
	logger     zerolog.Logger
	now        func() time.Time
}

func NewDirectoryService(
	repo ports.AccountRepository,
	codec secret.Codec,
	passPolicy PasswordPolicy,
	locks LockCache,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *DirectoryService {
	if passPolicy == nil {
		passPolicy = DefaultPasswordPolicy
	}
	return &DirectoryService{
		repo:       repo,
		codec:      codec,
		passPolicy: passPolicy,
		locks:      locks,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns all accounts. Requires the user-management capability.
func (s *DirectoryService) List(ctx context.Context, actor domain.Actor) ([]*domain.Account, error) {
	if !domain.CapUserManagement.AllowedFor(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Search matches accounts by employee id, email, or role substring.
func (s *DirectoryService) Search(ctx context.Context, actor domain.Actor, term string) ([]*domain.Account, error) {
	if !domain.CapUserManagement.AllowedFor(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	accounts, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	return accounts, nil
}

// Get returns one account by employee id.
func (s *DirectoryService) Get(ctx context.Context, actor domain.Actor, employeeID string) (*domain.Account, error) {
	if !domain.CapUserManagement.AllowedFor(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	account, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Create inserts a new account. Creating a super admin requires the
// manage-super-admin capability and an empty super-admin slot.
func (s *DirectoryService) Create(ctx context.Context, actor domain.Actor, in ports.CreateAccountInput) (*domain.Account, error) {
	if !domain.CapUserManagement.AllowedFor(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	in.Email = normalizeEmail(in.Email)
	if err := validateIdentity(in.EmployeeID, in.Email); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Reason: "unknown role"}
	}
	if err := s.passPolicy(in.Password); err != nil {
		return nil, err
	}

	if in.Role == domain.RoleSuperAdmin {
		if err := s.checkSuperAdminSlot(ctx, actor); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(ctx, in.EmployeeID, in.Email, ""); err != nil {
		return nil, err
	}

	digest, salt, err := s.codec.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		EmployeeID:   in.EmployeeID,
		Email:        in.Email,
		Role:         in.Role,
		Active:       in.Active,
		PasswordHash: digest,
		PasswordSalt: salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, account); err != nil {
		return nil, err
	}

	s.record(domain.AuditEvent{EmployeeID: account.EmployeeID, Email: account.Email, ActorID: actor.EmployeeID, Action: domain.AuditAccountCreated, Outcome: "ok", At: now})
	s.logger.Info().Str("employee_id", account.EmployeeID).Str("role", string(account.Role)).Msg("account created")
	return account, nil
}

// Update rewrites the identity fields of an existing account. Touching a
// super-admin record, or promoting to super admin, requires the
// manage-super-admin capability; promotion also requires an empty slot.
func (s *DirectoryService) Update(ctx context.Context, actor domain.Actor, employeeID string, in ports.UpdateAccountInput) (*domain.Account, error) {
	if !domain.CapUserManagement.AllowedFor(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	in.Email = normalizeEmail(in.Email)
	if err := validateIdentity(in.EmployeeID, in.Email); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Reason: "unknown role"}
	}

	target, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if target.Role == domain.RoleSuperAdmin && !domain.CapManageSuperAdmin.AllowedFor(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	if in.Role == domain.RoleSuperAdmin && target.Role != domain.RoleSuperAdmin {
		if err := s.checkSuperAdminSlot(ctx, actor); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(ctx, in.EmployeeID, in.Email, target.ID); err != nil {
		return nil, err
	}

	target.EmployeeID = in.EmployeeID
	target.Email = in.Email
	target.Role = in.Role
	target.Active = in.Active
	target.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}

	s.record(domain.AuditEvent{EmployeeID: target.EmployeeID, Email: target.Email, ActorID: actor.EmployeeID, Action: domain.AuditAccountUpdated, Outcome: "ok", At: target.UpdatedAt})
	return target, nil
}

// ChangePassword writes a new credential. The new secret must differ from
// the current one and satisfy the password policy; on success the failure
// counter resets and any lock clears.
func (s *DirectoryService) ChangePassword(ctx context.Context, actor domain.Actor, employeeID, newSecret string) error {
	if !domain.CapUserManagement.AllowedFor(actor.Role) {
		return domain.ErrPermissionDenied
	}

	target, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleSuperAdmin && !domain.CapManageSuperAdmin.AllowedFor(actor.Role) {
		return domain.ErrPermissionDenied
	}

	if err := s.passPolicy(newSecret); err != nil {
		return err
	}
	if s.codec.Verify(newSecret, target.PasswordHash, target.PasswordSalt) {
		return &domain.ValidationError{Field: "password", Reason: "must differ from the current password"}
	}

	digest, salt, err := s.codec.Hash(newSecret)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	now := s.now().UTC()
	target.PasswordHash = digest
	target.PasswordSalt = salt
	target.FailedAttempts = 0
	target.LockedUntil = nil
	target.UpdatedAt = now
	if err := s.repo.Update(ctx, target); err != nil {
		return err
	}

	if s.locks != nil {
		if err := s.locks.Clear(ctx, target.Email); err != nil {
			s.logger.Warn().Err(err).Msg("lock cache clear failed")
		}
	}
	s.record(domain.AuditEvent{EmployeeID: target.EmployeeID, Email: target.Email, ActorID: actor.EmployeeID, Action: domain.AuditPasswordChanged, Outcome: "ok", At: now})
	return nil
}

// Delete removes an account. The currently authenticated identity can never
// delete itself, regardless of role.
func (s *DirectoryService) Delete(ctx context.Context, actor domain.Actor, employeeID string) error {
	if !domain.CapUserManagement.AllowedFor(actor.Role) {
		return domain.ErrPermissionDenied
	}

	target, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return err
	}
	if target.EmployeeID == actor.EmployeeID {
		return domain.ErrPermissionDenied
	}
	if target.Role == domain.RoleSuperAdmin && !domain.CapManageSuperAdmin.AllowedFor(actor.Role) {
		return domain.ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, employeeID); err != nil {
		return err
	}

	s.record(domain.AuditEvent{EmployeeID: target.EmployeeID, Email: target.Email, ActorID: actor.EmployeeID, Action: domain.AuditAccountDeleted, Outcome: "ok", At: s.now().UTC()})
	s.logger.Info().Str("employee_id", employeeID).Str("actor", actor.EmployeeID).Msg("account deleted")
	return nil
}

// checkSuperAdminSlot fast-fails a super-admin assignment: the actor must
// hold manage-super-admin and no super-admin record may already exist. The
// repository's partial unique index closes the remaining race window.
func (s *DirectoryService) checkSuperAdminSlot(ctx context.Context, actor domain.Actor) error {
	if !domain.CapManageSuperAdmin.AllowedFor(actor.Role) {
		return domain.ErrPermissionDenied
	}
	n, err := s.repo.CountByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("count super admins: %w", err)
	}
	if n > 0 {
		return &domain.ConflictError{Field: "role", Message: "a super admin account already exists"}
	}
	return nil
}

// checkUnique fast-fails employee-id and email collisions against all
// records other than excludeID.
func (s *DirectoryService) checkUnique(ctx context.Context, employeeID, email, excludeID string) error {
	existing, err := s.repo.FindByEmployeeID(ctx, employeeID)
	switch {
	case err == nil:
		if existing.ID != excludeID {
			return &domain.ConflictError{Field: "employee_id"}
		}
	case !errors.Is(err, domain.ErrAccountNotFound):
		return fmt.Errorf("check employee id: %w", err)
	}

	existing, err = s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != excludeID {
			return &domain.ConflictError{Field: "email"}
		}
	case !errors.Is(err, domain.ErrAccountNotFound):
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

// normalizeEmail canonicalizes an email to the form Login looks up:
// trimmed and lowercased. Stored emails must match that form or the
// account can never authenticate.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateIdentity(employeeID, email string) error {
	if employeeID == "" {
		return &domain.ValidationError{Field: "employee_id", Reason: "must not be empty"}
	}
	if email == "" {
		return &domain.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if !emailPattern.MatchString(email) {
		return &domain.ValidationError{Field: "email", Reason: "malformed address"}
	}
	return nil
}

func (s *DirectoryService) record(event domain.AuditEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}
