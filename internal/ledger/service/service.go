package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	accmodels "finbank/internal/accounts/models"
	"finbank/internal/audit"
	ledgermetrics "finbank/internal/ledger/metrics"
	"finbank/internal/ledger/models"
	"finbank/internal/ownership"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
	"finbank/pkg/platform/sentinel"
	"finbank/pkg/requestcontext"
)

// Store is the persistence collaborator for ledger entries. Apply must make
// the balance write and the entry insert a single atomic unit.
type Store interface {
	Apply(ctx context.Context, accountNumber string, fn func(account *accmodels.Account) (*models.Transaction, error)) (*models.Transaction, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]*models.Transaction, error)
	FindByID(ctx context.Context, accountNumber string, id domain.TransactionID) (*models.Transaction, error)
}

// AccountFinder resolves active accounts for read paths.
type AccountFinder interface {
	FindByNumber(ctx context.Context, number string) (*accmodels.Account, error)
}

// CacheInvalidator drops a cached account projection after its balance
// changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, number string) error
}

// Service orchestrates ledger movements against the account registry.
type Service struct {
	store    Store
	accounts AccountFinder
	cache    CacheInvalidator
	logger   *slog.Logger
	metrics  *ledgermetrics.Metrics
	audit    audit.Recorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditRecorder(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

func WithCacheInvalidator(c CacheInvalidator) Option {
	return func(s *Service) { s.cache = c }
}

func New(store Store, accounts AccountFinder, opts ...Option) *Service {
	s := &Service{
		store:    store,
		accounts: accounts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyParams carries the fields of a transaction request.
type ApplyParams struct {
	Amount    decimal.Decimal
	Currency  string
	Type      models.Type
	Reference string
}

// Apply posts a movement to the account. Ownership, currency, and funds are
// all checked inside the store's critical section, so a failed withdrawal
// leaves no trace and a successful one is never observable without its
// balance effect. Currency must match the account's, compared
// case-insensitively.
func (s *Service) Apply(ctx context.Context, principal domain.UserID, accountNumber string, params ApplyParams) (*models.Transaction, error) {
	if err := accmodels.ValidateNumber(accountNumber); err != nil {
		return nil, err
	}

	txn, err := s.store.Apply(ctx, accountNumber, func(account *accmodels.Account) (*models.Transaction, error) {
		if err := ownership.RequireOwner(principal, account.OwnerID); err != nil {
			return nil, err
		}
		if !currencyMatches(params.Currency, account.Currency) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "currency must match the account currency")
		}

		now := requestcontext.Now(ctx)
		txn, err := models.NewTransaction(accountNumber, principal, params.Amount, account.Currency, params.Type, params.Reference, now)
		if err != nil {
			return nil, err
		}

		switch params.Type {
		case models.TypeDeposit:
			account.Deposit(params.Amount, now)
		case models.TypeWithdrawal:
			if err := account.Withdraw(params.Amount, now); err != nil {
				return nil, err
			}
		}
		return txn, nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInsufficientFunds) {
			s.metrics.IncrementInsufficientFunds()
		}
		return nil, s.translate(err, "failed to apply transaction")
	}

	s.invalidate(ctx, accountNumber)
	s.logger.InfoContext(ctx, "transaction applied",
		"account_number", accountNumber,
		"transaction_id", txn.ID,
		"type", txn.Type,
	)
	s.metrics.IncrementApplied(string(txn.Type))
	audit.Emit(ctx, s.audit, audit.Event{
		Actor:    principal.String(),
		Action:   audit.ActionTransactionApplied,
		Resource: accountNumber,
		Detail:   txn.ID.String(),
	})
	return txn, nil
}

// List returns the account's transactions in creation order. The account is
// resolved first so missing accounts are not_found before any ownership
// failure.
func (s *Service) List(ctx context.Context, principal domain.UserID, accountNumber string) ([]*models.Transaction, error) {
	if err := s.guard(ctx, principal, accountNumber); err != nil {
		return nil, err
	}
	txns, err := s.store.ListByAccount(ctx, accountNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transactions")
	}
	return txns, nil
}

// Get returns one transaction. A transaction that exists under a different
// account is not_found, never revealed.
func (s *Service) Get(ctx context.Context, principal domain.UserID, accountNumber string, id domain.TransactionID) (*models.Transaction, error) {
	if err := s.guard(ctx, principal, accountNumber); err != nil {
		return nil, err
	}
	txn, err := s.store.FindByID(ctx, accountNumber, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "transaction was not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up transaction")
	}
	return txn, nil
}

func (s *Service) guard(ctx context.Context, principal domain.UserID, accountNumber string) error {
	if err := accmodels.ValidateNumber(accountNumber); err != nil {
		return err
	}
	account, err := s.accounts.FindByNumber(ctx, accountNumber)
	if err != nil {
		return s.translate(err, "failed to look up account")
	}
	return ownership.RequireOwner(principal, account.OwnerID)
}

func (s *Service) invalidate(ctx context.Context, number string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, number); err != nil {
		s.logger.WarnContext(ctx, "account cache invalidation failed", "account_number", number, "error", err)
	}
}

func currencyMatches(requested, actual string) bool {
	return strings.EqualFold(strings.TrimSpace(requested), actual)
}

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
