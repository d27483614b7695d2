package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	accmodels "finbank/internal/accounts/models"
	"finbank/internal/ledger/models"
	"finbank/pkg/domain"
	"finbank/pkg/platform/sentinel"
)

// PostgresStore persists ledger entries. Balance update and transaction
// insert commit together; the row lock taken on the account serializes
// concurrent movements on the same account.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const transactionColumns = `id, account_number, user_id, amount, currency, transaction_type, reference, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t      models.Transaction
		id     int64
		amount string
		userID string
		txType string
	)
	err := row.Scan(&id, &t.AccountNumber, &userID, &amount, &t.Currency, &txType, &t.Reference, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.ID = domain.TransactionID(id)
	t.Type = models.Type(txType)
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	owner, err := domain.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	t.UserID = owner
	return &t, nil
}

// Apply locks the account row, runs fn, then writes the new balance and the
// ledger entry in the same transaction.
func (s *PostgresStore) Apply(ctx context.Context, accountNumber string, fn func(account *accmodels.Account) (*models.Transaction, error)) (txn *models.Transaction, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	account, err := lockAccount(ctx, tx, accountNumber)
	if err != nil {
		return nil, err
	}

	txn, err = fn(account)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bank_accounts SET balance = $2, updated_at = $3 WHERE id = $1`,
		account.ID, account.Balance.StringFixed(2), account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO account_transactions (account_number, user_id, amount, currency, transaction_type, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, txn.AccountNumber, txn.UserID.String(), txn.Amount.StringFixed(2), txn.Currency, string(txn.Type), txn.Reference, txn.CreatedAt).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	txn.ID = domain.TransactionID(id)

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return txn, nil
}

func lockAccount(ctx context.Context, tx *sql.Tx, accountNumber string) (*accmodels.Account, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, account_number, sort_code, name, account_type, balance, currency, owner_id, is_deleted, created_at, updated_at
		FROM bank_accounts
		WHERE account_number = $1 AND is_deleted = FALSE
		FOR UPDATE
	`, accountNumber)

	var (
		a       accmodels.Account
		balance string
		ownerID string
		accType string
	)
	err := row.Scan(&a.ID, &a.Number, &a.SortCode, &a.Name, &accType, &balance, &a.Currency, &ownerID, &a.Deleted, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	a.Type = accmodels.Type(accType)
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

// ListByAccount returns the account's transactions in creation order.
func (s *PostgresStore) ListByAccount(ctx context.Context, accountNumber string) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM account_transactions WHERE account_number = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

// FindByID scopes the lookup to the account so an ID reached through the
// wrong account resolves to not-found.
func (s *PostgresStore) FindByID(ctx context.Context, accountNumber string, id domain.TransactionID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM account_transactions WHERE account_number = $1 AND id = $2`
	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, accountNumber, int64(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return txn, nil
}
