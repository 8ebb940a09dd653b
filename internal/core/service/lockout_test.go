package service

import (
	"testing"
	"time"

	"github.com/rollertrack/access-api/internal/core/domain"
)

func TestLockoutPolicy_Defaults(t *testing.T) {
	p := NewLockoutPolicy(0, 0)
	if p.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("expected %d max attempts, got %d", DefaultMaxAttempts, p.MaxAttempts)
	}
	if p.LockDuration != DefaultLockDuration {
		t.Fatalf("expected %v lock duration, got %v", DefaultLockDuration, p.LockDuration)
	}
}

func TestLockoutPolicy_RecordFailure_CountsDown(t *testing.T) {
	p := NewLockoutPolicy(3, 5*time.Minute)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	acct := &domain.Account{Active: true}

	out := p.RecordFailure(acct, now)
	if out.Kind != domain.OutcomeInvalidCredential || out.AttemptsRemaining != 2 {
		t.Fatalf("unexpected outcome after first failure: %+v", out)
	}
	out = p.RecordFailure(acct, now)
	if out.Kind != domain.OutcomeInvalidCredential || out.AttemptsRemaining != 1 {
		t.Fatalf("unexpected outcome after second failure: %+v", out)
	}
	if acct.LockedUntil != nil {
		t.Fatalf("account should not be locked yet")
	}
}

func TestLockoutPolicy_ThirdFailureLocks(t *testing.T) {
	p := NewLockoutPolicy(3, 5*time.Minute)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	acct := &domain.Account{Active: true, FailedAttempts: 2}

	out := p.RecordFailure(acct, now)
	if out.Kind != domain.OutcomeLockedOut {
		t.Fatalf("expected locked_out, got %s", out.Kind)
	}
	if out.RetryAfter != 5*time.Minute {
		t.Fatalf("expected 5m retry window, got %v", out.RetryAfter)
	}
	want := now.Add(5 * time.Minute)
	if acct.LockedUntil == nil || !acct.LockedUntil.Equal(want) {
		t.Fatalf("expected lock until %v, got %v", want, acct.LockedUntil)
	}
}

func TestLockoutPolicy_Locked_ReportsRemaining(t *testing.T) {
	p := NewLockoutPolicy(3, 5*time.Minute)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	until := now.Add(90 * time.Second)
	acct := &domain.Account{LockedUntil: &until}

	locked, remaining := p.Locked(acct, now)
	if !locked || remaining != 90*time.Second {
		t.Fatalf("expected locked with 90s remaining, got %v %v", locked, remaining)
	}
}

func TestLockoutPolicy_ClearExpired(t *testing.T) {
	p := NewLockoutPolicy(3, 5*time.Minute)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	until := now.Add(-time.Second)
	acct := &domain.Account{FailedAttempts: 3, LockedUntil: &until}

	if !p.ClearExpired(acct, now) {
		t.Fatalf("expected expired lock to be cleared")
	}
	if acct.LockedUntil != nil || acct.FailedAttempts != 0 {
		t.Fatalf("expected clean state after clear, got %+v", acct)
	}

	// A live lock must not clear.
	liveUntil := now.Add(time.Minute)
	acct = &domain.Account{FailedAttempts: 3, LockedUntil: &liveUntil}
	if p.ClearExpired(acct, now) {
		t.Fatalf("live lock must not be cleared")
	}
}

func TestLockoutPolicy_RecordSuccess_Resets(t *testing.T) {
	p := NewLockoutPolicy(3, 5*time.Minute)
	until := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)
	acct := &domain.Account{FailedAttempts: 2, LockedUntil: &until}

	p.RecordSuccess(acct)
	if acct.FailedAttempts != 0 || acct.LockedUntil != nil {
		t.Fatalf("expected reset state, got %+v", acct)
	}
}
