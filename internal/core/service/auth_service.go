package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rollertrack/access-api/internal/core/domain"
	"github.com/rollertrack/access-api/internal/core/ports"
	"github.com/rollertrack/access-api/internal/core/secret"
)

// LockCache is a best-effort fast path for answering locked_out without a
// repository round trip (Redis). The repository remains the source of truth;
// cache errors are logged and ignored.
type LockCache interface {
	// Get returns the remaining lock window for the identity, if cached.
	Get(ctx context.Context, key string) (time.Duration, bool, error)
	// Set caches a lock for the given remaining window.
	Set(ctx context.Context, key string, remaining time.Duration) error
	// Clear drops the cached lock.
	Clear(ctx context.Context, key string) error
}

// AuthService orchestrates one login evaluation: fetch the account, apply
// the lockout policy, verify the secret and role claim, persist the lockout
// transition, and return a typed outcome. Side effects are confined to the
// single account under evaluation; there are no global counters.
type AuthService struct {
	repo   ports.AccountRepository
	codec  secret.Codec
	policy LockoutPolicy
	locks  LockCache           // optional
	audit  ports.AuditRecorder // optional
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(
	repo ports.AccountRepository,
	codec secret.Codec,
	policy LockoutPolicy,
	locks LockCache,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:   repo,
		codec:  codec,
		policy: policy,
		locks:  locks,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// Login evaluates one (email, secret, claimed role) triple.
//
// A role mismatch consumes a failed attempt exactly like a wrong secret:
// both are unauthorized attempts against the identity and share one counter.
// Every transition that mutates lockout fields is persisted before the call
// returns; a persistence failure surfaces as backend_unavailable, never as
// a silent success or failure.
func (s *AuthService) Login(ctx context.Context, email, secretText string, claimedRole domain.Role) (domain.LoginOutcome, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || secretText == "" {
		// Constant response shape: malformed input is indistinguishable
		// from an identity that does not exist.
		return domain.UnknownIdentityOutcome(), nil
	}

	now := s.now().UTC()

	// The cache holds lock state only, so an account deactivated while a
	// lock entry is live answers locked_out instead of inactive_account
	// until the entry expires with the lock window. Nothing mutates on
	// this path and the window is bounded by the lock duration.
	if s.locks != nil {
		if remaining, ok, err := s.locks.Get(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("lock cache read failed, falling through to repository")
		} else if ok && remaining > 0 {
			return domain.LockedOutOutcome(remaining), nil
		}
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		s.record(domain.AuditEvent{Email: email, Action: domain.AuditLogin, Outcome: string(domain.OutcomeUnknownIdentity), At: now})
		return domain.UnknownIdentityOutcome(), nil
	}
	if err != nil {
		return domain.BackendUnavailableOutcome(), fmt.Errorf("%w: find account: %v", domain.ErrBackendUnavailable, err)
	}

	// Inactive accounts are rejected before any lockout-state mutation and
	// do not consume an attempt.
	if !account.Active {
		s.record(s.attemptEvent(account, domain.OutcomeInactiveAccount, now))
		return domain.InactiveAccountOutcome(), nil
	}

	if locked, remaining := s.policy.Locked(account, now); locked {
		s.cacheLock(ctx, account.Email, remaining)
		s.record(s.attemptEvent(account, domain.OutcomeLockedOut, now))
		return domain.LockedOutOutcome(remaining), nil
	}

	// Lazy unlock: an expired lock is cleared here and evaluation continues
	// in the same call.
	s.policy.ClearExpired(account, now)

	if account.Role != claimedRole {
		return s.fail(ctx, account, now, domain.OutcomeRoleMismatch)
	}

	if !s.codec.Verify(secretText, account.PasswordHash, account.PasswordSalt) {
		return s.fail(ctx, account, now, domain.OutcomeInvalidCredential)
	}

	s.policy.RecordSuccess(account)
	account.UpdatedAt = now
	if err := s.repo.Update(ctx, account); err != nil {
		return domain.BackendUnavailableOutcome(), fmt.Errorf("%w: persist success: %v", domain.ErrBackendUnavailable, err)
	}
	s.clearLock(ctx, account.Email)
	s.record(s.attemptEvent(account, domain.OutcomeSuccess, now))
	s.logger.Info().Str("employee_id", account.EmployeeID).Str("role", string(account.Role)).Msg("login granted")

	return domain.SuccessOutcome(account.EmployeeID, account.Role), nil
}

// fail applies the shared failure transition and persists it.
func (s *AuthService) fail(ctx context.Context, account *domain.Account, now time.Time, reason domain.OutcomeKind) (domain.LoginOutcome, error) {
	outcome := s.policy.RecordFailure(account, now)
	if reason == domain.OutcomeRoleMismatch && outcome.Kind == domain.OutcomeInvalidCredential {
		outcome = domain.RoleMismatchOutcome(outcome.AttemptsRemaining)
	}

	account.UpdatedAt = now
	if err := s.repo.Update(ctx, account); err != nil {
		return domain.BackendUnavailableOutcome(), fmt.Errorf("%w: persist failed attempt: %v", domain.ErrBackendUnavailable, err)
	}

	if outcome.Kind == domain.OutcomeLockedOut {
		s.cacheLock(ctx, account.Email, outcome.RetryAfter)
		s.logger.Warn().
			Str("employee_id", account.EmployeeID).
			Dur("lock_duration", outcome.RetryAfter).
			Msg("account locked after repeated failures")
	}
	s.record(s.attemptEvent(account, reason, now))

	return outcome, nil
}

func (s *AuthService) attemptEvent(account *domain.Account, outcome domain.OutcomeKind, at time.Time) domain.AuditEvent {
	return domain.AuditEvent{
		EmployeeID: account.EmployeeID,
		Email:      account.Email,
		Action:     domain.AuditLogin,
		Outcome:    string(outcome),
		At:         at,
	}
}

func (s *AuthService) record(event domain.AuditEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}

func (s *AuthService) cacheLock(ctx context.Context, email string, remaining time.Duration) {
	if s.locks == nil || remaining <= 0 {
		return
	}
	if err := s.locks.Set(ctx, email, remaining); err != nil {
		s.logger.Warn().Err(err).Msg("lock cache write failed")
	}
}

func (s *AuthService) clearLock(ctx context.Context, email string) {
	if s.locks == nil {
		return
	}
	if err := s.locks.Clear(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("lock cache clear failed")
	}
}
