package service

import (
	"context"
	"errors"
	"log/slog"

	accmetrics "finbank/internal/accounts/metrics"
	"finbank/internal/accounts/models"
	"finbank/internal/audit"
	"finbank/internal/ownership"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
	"finbank/pkg/platform/sentinel"
	"finbank/pkg/requestcontext"
)

// createRetries bounds how many times a create is retried after the store
// rejects the candidate number. Each retry allocates a fresh number, so a
// conflict here means the allocator raced another create.
const createRetries = 3

// Store is the persistence collaborator for account records.
type Store interface {
	Create(ctx context.Context, account *models.Account) error
	FindByNumber(ctx context.Context, number string) (*models.Account, error)
	ListByOwner(ctx context.Context, owner domain.UserID) ([]*models.Account, error)
	Execute(ctx context.Context, number string, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error)
}

// NumberAllocator hands out unused account numbers.
type NumberAllocator interface {
	Allocate(ctx context.Context) (string, error)
}

// Cache is an optional read cache for account lookups. Get returns
// (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, number string) (*models.Account, error)
	Set(ctx context.Context, account *models.Account) error
	Invalidate(ctx context.Context, number string) error
}

// Service orchestrates the account registry.
type Service struct {
	store     Store
	allocator NumberAllocator
	cache     Cache
	logger    *slog.Logger
	metrics   *accmetrics.Metrics
	audit     audit.Recorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *accmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditRecorder(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithCache enables the read cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func New(store Store, alloc NumberAllocator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		allocator: alloc,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new account for the principal. The allocated number is
// only provisional until the insert lands; a unique-constraint conflict
// means another create claimed it first, and the whole allocate-insert pair
// is retried with a fresh number.
func (s *Service) Create(ctx context.Context, principal domain.UserID, name string, accountType models.Type) (*models.Account, error) {
	if principal.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	var account *models.Account
	for attempt := 0; attempt <= createRetries; attempt++ {
		number, err := s.allocator.Allocate(ctx)
		if err != nil {
			return nil, err
		}

		account, err = models.NewAccount(principal, name, accountType, number, requestcontext.Now(ctx))
		if err != nil {
			return nil, err
		}

		err = s.store.Create(ctx, account)
		if err == nil {
			break
		}
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementAllocationCollisions()
			s.logger.WarnContext(ctx, "account number conflicted on insert, retrying", "attempt", attempt+1)
			account = nil
			continue
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}
	if account == nil {
		return nil, dErrors.New(dErrors.CodeAllocationExhausted, "could not allocate a free account number")
	}

	s.logger.InfoContext(ctx, "account created", "account_number", account.Number, "owner_id", principal)
	s.metrics.IncrementAccountsCreated()
	audit.Emit(ctx, s.audit, audit.Event{
		Actor:    principal.String(),
		Action:   audit.ActionAccountCreated,
		Resource: account.Number,
	})
	return account, nil
}

// Get returns the account with that number. Existence is checked before
// ownership: a missing account is not_found even when the caller would not
// have been allowed to see it, and someone else's account is forbidden.
func (s *Service) Get(ctx context.Context, principal domain.UserID, number string) (*models.Account, error) {
	account, err := s.find(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := ownership.RequireOwner(principal, account.OwnerID); err != nil {
		return nil, err
	}
	return account, nil
}

// List returns the principal's accounts in creation order.
func (s *Service) List(ctx context.Context, principal domain.UserID) ([]*models.Account, error) {
	if principal.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	accounts, err := s.store.ListByOwner(ctx, principal)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return accounts, nil
}

// Update applies a partial update to the principal's own account. Ownership
// is validated inside the store's critical section so the owner cannot
// change between check and write.
func (s *Service) Update(ctx context.Context, principal domain.UserID, number string, update models.AccountUpdate) (*models.Account, error) {
	if err := models.ValidateNumber(number); err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	account, err := s.store.Execute(ctx, number,
		func(a *models.Account) error {
			return ownership.RequireOwner(principal, a.OwnerID)
		},
		func(a *models.Account) {
			a.ApplyUpdate(update, requestcontext.Now(ctx))
		},
	)
	if err != nil {
		return nil, s.translate(err, "failed to update account")
	}
	s.invalidate(ctx, number)

	audit.Emit(ctx, s.audit, audit.Event{
		Actor:    principal.String(),
		Action:   audit.ActionAccountUpdated,
		Resource: number,
	})
	return account, nil
}

// Delete soft-deletes the principal's own account. Requires a zero balance;
// the precondition holds under the same lock as the write.
func (s *Service) Delete(ctx context.Context, principal domain.UserID, number string) error {
	if err := models.ValidateNumber(number); err != nil {
		return err
	}

	_, err := s.store.Execute(ctx, number,
		func(a *models.Account) error {
			if err := ownership.RequireOwner(principal, a.OwnerID); err != nil {
				return err
			}
			return a.CanDelete()
		},
		func(a *models.Account) {
			a.ApplyDelete(requestcontext.Now(ctx))
		},
	)
	if err != nil {
		return s.translate(err, "failed to delete account")
	}
	s.invalidate(ctx, number)

	s.logger.InfoContext(ctx, "account deleted", "account_number", number)
	s.metrics.IncrementAccountsDeleted()
	audit.Emit(ctx, s.audit, audit.Event{
		Actor:    principal.String(),
		Action:   audit.ActionAccountDeleted,
		Resource: number,
	})
	return nil
}

func (s *Service) find(ctx context.Context, number string) (*models.Account, error) {
	if err := models.ValidateNumber(number); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, number)
		if err != nil {
			s.logger.WarnContext(ctx, "account cache read failed", "error", err)
		} else if cached != nil {
			s.metrics.IncrementCacheHits()
			return cached, nil
		} else {
			s.metrics.IncrementCacheMisses()
		}
	}

	account, err := s.store.FindByNumber(ctx, number)
	if err != nil {
		return nil, s.translate(err, "failed to look up account")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, account); err != nil {
			s.logger.WarnContext(ctx, "account cache write failed", "error", err)
		}
	}
	return account, nil
}

func (s *Service) invalidate(ctx context.Context, number string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, number); err != nil {
		s.logger.WarnContext(ctx, "account cache invalidation failed", "account_number", number, "error", err)
	}
}

// translate maps store sentinels to domain errors; coded errors from
// validation callbacks pass through untouched.
func (s *Service) translate(err error, internalMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "bank account was not found")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	default:
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
	}
}
