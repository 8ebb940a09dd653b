package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rollertrack/access-api/internal/core/domain"
)

// stubAccountRepo is an in-memory AccountRepository that mirrors the Mongo
// implementation's contract: clone-on-read, version CAS on Update, and the
// unique indexes (email, employee_id, at most one super_admin).
type stubAccountRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Account
	nextID int

	findErr   error // if set, finders return this error
	updateErr error // if set, Update returns this error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.Email == email {
			return a.Clone(), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmployeeID(_ context.Context, employeeID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.EmployeeID == employeeID {
			return a.Clone(), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return 0, r.findErr
	}
	var n int64
	for _, a := range r.byID {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*domain.Account
	for _, a := range r.byID {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (r *stubAccountRepo) Search(_ context.Context, term string) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	term = strings.ToLower(term)
	var out []*domain.Account
	for _, a := range r.byID {
		if strings.Contains(strings.ToLower(a.EmployeeID), term) ||
			strings.Contains(strings.ToLower(a.Email), term) ||
			strings.Contains(strings.ToLower(string(a.Role)), term) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (r *stubAccountRepo) Insert(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == account.Email {
			return &domain.ConflictError{Field: "email"}
		}
		if a.EmployeeID == account.EmployeeID {
			return &domain.ConflictError{Field: "employee_id"}
		}
		if account.Role == domain.RoleSuperAdmin && a.Role == domain.RoleSuperAdmin {
			return &domain.ConflictError{Field: "role", Message: "a super admin account already exists"}
		}
	}
	r.nextID++
	account.ID = fmt.Sprintf("id-%d", r.nextID)
	account.Version = 1
	r.byID[account.ID] = account.Clone()
	return nil
}

func (r *stubAccountRepo) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.byID[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if stored.Version != account.Version {
		return domain.ErrVersionConflict
	}
	account.Version++
	r.byID[account.ID] = account.Clone()
	return nil
}

func (r *stubAccountRepo) Delete(_ context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.byID {
		if a.EmployeeID == employeeID {
			delete(r.byID, id)
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

// get returns the stored record for assertions, bypassing the port.
func (r *stubAccountRepo) get(employeeID string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.EmployeeID == employeeID {
			return a.Clone()
		}
	}
	return nil
}

// stubAudit collects recorded audit events synchronously.
type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *stubAudit) Record(event domain.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *stubAudit) outcomes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.events {
		out = append(out, e.Outcome)
	}
	return out
}

// stubLockCache records lock cache traffic.
type stubLockCache struct {
	mu      sync.Mutex
	entries map[string]time.Duration
	sets    int
	clears  int
}

func newStubLockCache() *stubLockCache {
	return &stubLockCache{entries: make(map[string]time.Duration)}
}

func (c *stubLockCache) Get(_ context.Context, key string) (time.Duration, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[key]
	return d, ok, nil
}

func (c *stubLockCache) Set(_ context.Context, key string, remaining time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = remaining
	c.sets++
	return nil
}

func (c *stubLockCache) Clear(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.clears++
	return nil
}

var errBackendDown = errors.New("backend down")
