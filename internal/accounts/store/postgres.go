package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"finbank/internal/accounts/models"
	"finbank/pkg/domain"
	"finbank/pkg/platform/sentinel"
)

// PostgresStore persists accounts in PostgreSQL. The UNIQUE constraint on
// account_number is the uniqueness guarantee the allocator's pre-check only
// approximates; a violation surfaces as ErrConflict and the registry retries.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, account_number, sort_code, name, account_type, balance, currency, owner_id, is_deleted, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a       models.Account
		balance string
		ownerID string
		accType string
	)
	err := row.Scan(&a.ID, &a.Number, &a.SortCode, &a.Name, &accType, &balance, &a.Currency, &ownerID, &a.Deleted, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Type = models.Type(accType)
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	owner, err := domain.ParseUserID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	a.OwnerID = owner
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Create inserts the account and fills in its assigned ID.
func (s *PostgresStore) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO bank_accounts (account_number, sort_code, name, account_type, balance, currency, owner_id, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		account.Number, account.SortCode, account.Name, string(account.Type),
		account.Balance.StringFixed(2), account.Currency, account.OwnerID.String(),
		account.Deleted, account.CreatedAt, account.UpdatedAt,
	).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// NumberInUse checks all rows, soft-deleted included.
func (s *PostgresStore) NumberInUse(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bank_accounts WHERE account_number = $1)`, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check account number: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM bank_accounts WHERE account_number = $1 AND is_deleted = FALSE`
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner domain.UserID) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM bank_accounts WHERE owner_id = $1 AND is_deleted = FALSE ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) CountByOwner(ctx context.Context, owner domain.UserID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bank_accounts WHERE owner_id = $1 AND is_deleted = FALSE`, owner.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

// Execute atomically runs validate then mutate against the account row,
// holding a row lock (SELECT ... FOR UPDATE) for the duration so concurrent
// mutations of the same account serialize.
func (s *PostgresStore) Execute(ctx context.Context, number string, validate func(*models.Account) error, mutate func(*models.Account)) (account *models.Account, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `SELECT ` + accountColumns + ` FROM bank_accounts WHERE account_number = $1 AND is_deleted = FALSE FOR UPDATE`
	account, err = scanAccount(tx.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock account: %w", err)
	}

	if err = validate(account); err != nil {
		return nil, err
	}
	mutate(account)

	_, err = tx.ExecContext(ctx, `
		UPDATE bank_accounts
		SET name = $2, account_type = $3, balance = $4, is_deleted = $5, updated_at = $6
		WHERE id = $1
	`, account.ID, account.Name, string(account.Type), account.Balance.StringFixed(2), account.Deleted, account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return account, nil
}
