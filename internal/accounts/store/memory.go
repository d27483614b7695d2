package store

import (
	"context"
	"sort"
	"sync"

	"finbank/internal/accounts/models"
	"finbank/pkg/domain"
	"finbank/pkg/platform/sentinel"
)

// record pairs the live account with its own mutex so operations on distinct
// accounts never contend. The map mutex only guards membership.
type record struct {
	mu      sync.Mutex
	account *models.Account
}

// InMemory keeps accounts in a map keyed by account number. Soft-deleted
// rows stay in the map forever: numbers are never reused and the visibility
// predicate is applied uniformly at this boundary.
type InMemory struct {
	mu       sync.RWMutex
	byNumber map[string]*record
	nextID   int64
}

func NewInMemory() *InMemory {
	return &InMemory{byNumber: make(map[string]*record)}
}

func cloneAccount(a *models.Account) *models.Account {
	cp := *a
	return &cp
}

// Create inserts the account and assigns its internal ID. A taken number
// (active or deleted) fails with ErrConflict, mirroring the unique
// constraint of the SQL store.
func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byNumber[account.Number]; taken {
		return sentinel.ErrConflict
	}
	s.nextID++
	account.ID = s.nextID
	s.byNumber[account.Number] = &record{account: cloneAccount(account)}
	return nil
}

// NumberInUse reports whether a number is taken, deleted accounts included.
func (s *InMemory) NumberInUse(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.byNumber[number]
	return taken, nil
}

// FindByNumber returns the active account with that number.
func (s *InMemory) FindByNumber(_ context.Context, number string) (*models.Account, error) {
	s.mu.RLock()
	rec, ok := s.byNumber[number]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.account.Deleted {
		return nil, sentinel.ErrNotFound
	}
	return cloneAccount(rec.account), nil
}

// ListByOwner returns the principal's active accounts in creation order.
func (s *InMemory) ListByOwner(_ context.Context, owner domain.UserID) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Account
	for _, rec := range s.byNumber {
		rec.mu.Lock()
		if !rec.account.Deleted && rec.account.OwnerID == owner {
			out = append(out, cloneAccount(rec.account))
		}
		rec.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CountByOwner counts the principal's active accounts.
func (s *InMemory) CountByOwner(ctx context.Context, owner domain.UserID) (int, error) {
	accounts, err := s.ListByOwner(ctx, owner)
	if err != nil {
		return 0, err
	}
	return len(accounts), nil
}

// WithAccount runs fn with the active account locked. Mutations fn makes are
// persisted when fn returns nil; when fn errors the account may not have
// been mutated (callers validate before mutating). The ledger store builds
// its atomic apply on this hook.
func (s *InMemory) WithAccount(_ context.Context, number string, fn func(account *models.Account) error) error {
	s.mu.RLock()
	rec, ok := s.byNumber[number]
	s.mu.RUnlock()
	if !ok {
		return sentinel.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.account.Deleted {
		return sentinel.ErrNotFound
	}
	return fn(rec.account)
}

// Execute atomically runs validate then mutate with the account locked,
// returning the updated account. The lock spans both callbacks so a
// concurrent mutation cannot slip between precondition and write.
func (s *InMemory) Execute(ctx context.Context, number string, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	var updated *models.Account
	err := s.WithAccount(ctx, number, func(account *models.Account) error {
		if err := validate(account); err != nil {
			return err
		}
		mutate(account)
		updated = cloneAccount(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
