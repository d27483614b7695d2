package store

import (
	"context"
	"sync"

	accmodels "finbank/internal/accounts/models"
	accstore "finbank/internal/accounts/store"
	"finbank/internal/ledger/models"
	"finbank/pkg/domain"
	"finbank/pkg/platform/sentinel"
)

// InMemory keeps transactions per account number. Atomicity comes from the
// account store's per-account lock: Apply runs its callback and the append
// inside WithAccount, so a transaction is never observable without its
// balance effect.
type InMemory struct {
	accounts *accstore.InMemory

	mu        sync.Mutex
	byAccount map[string][]*models.Transaction
	nextID    int64
}

func NewInMemory(accounts *accstore.InMemory) *InMemory {
	return &InMemory{
		accounts:  accounts,
		byAccount: make(map[string][]*models.Transaction),
	}
}

func cloneTransaction(t *models.Transaction) *models.Transaction {
	cp := *t
	return &cp
}

// Apply runs fn with the account locked. fn validates, mutates the balance,
// and returns the transaction to append; any error leaves both the account
// and the ledger untouched.
func (s *InMemory) Apply(ctx context.Context, accountNumber string, fn func(account *accmodels.Account) (*models.Transaction, error)) (*models.Transaction, error) {
	var applied *models.Transaction
	err := s.accounts.WithAccount(ctx, accountNumber, func(account *accmodels.Account) error {
		txn, err := fn(account)
		if err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.nextID++
		txn.ID = domain.TransactionID(s.nextID)
		s.byAccount[accountNumber] = append(s.byAccount[accountNumber], cloneTransaction(txn))
		applied = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// ListByAccount returns the account's transactions in creation order.
func (s *InMemory) ListByAccount(_ context.Context, accountNumber string) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.byAccount[accountNumber]
	out := make([]*models.Transaction, 0, len(entries))
	for _, t := range entries {
		out = append(out, cloneTransaction(t))
	}
	return out, nil
}

// FindByID returns the transaction only when it belongs to that account; a
// transaction reached through another account's path does not exist.
func (s *InMemory) FindByID(_ context.Context, accountNumber string, id domain.TransactionID) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.byAccount[accountNumber] {
		if t.ID == id {
			return cloneTransaction(t), nil
		}
	}
	return nil, sentinel.ErrNotFound
}
