package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
)

// Type classifies a ledger movement.
type Type string

const (
	TypeDeposit    Type = "DEPOSIT"
	TypeWithdrawal Type = "WITHDRAWAL"
)

// ParseType validates a transaction type string.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeDeposit:
		return TypeDeposit, nil
	case TypeWithdrawal:
		return TypeWithdrawal, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "transaction type must be DEPOSIT or WITHDRAWAL")
	}
}

const maxReferenceLength = 255

// amountCap is one above the largest representable amount: 10 integer
// digits, matching the NUMERIC(12,2) ledger column.
var amountCap = decimal.New(1, 10)

// ValidateAmount enforces the boundary rules for a movement amount:
// strictly positive, at most two decimal places, at most ten integer digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	if amount.Exponent() < -2 {
		return dErrors.New(dErrors.CodeValidation, "amount cannot have more than 2 decimal places")
	}
	if amount.GreaterThanOrEqual(amountCap) {
		return dErrors.New(dErrors.CodeValidation, "amount cannot have more than 10 integer digits")
	}
	return nil
}

// Transaction is an append-only ledger entry. Once created it is never
// updated or deleted; the account balance is the signed sum of its entries.
type Transaction struct {
	ID            domain.TransactionID
	AccountNumber string
	UserID        domain.UserID
	Amount        decimal.Decimal
	Currency      string
	Type          Type
	Reference     string
	CreatedAt     time.Time
}

// NewTransaction constructs a validated, unpersisted transaction. The store
// assigns ID on insert.
func NewTransaction(accountNumber string, userID domain.UserID, amount decimal.Decimal, currency string, txType Type, reference string, now time.Time) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if txType != TypeDeposit && txType != TypeWithdrawal {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "transaction type must be DEPOSIT or WITHDRAWAL")
	}
	reference = strings.TrimSpace(reference)
	if len(reference) > maxReferenceLength {
		return nil, dErrors.New(dErrors.CodeValidation, "reference cannot exceed 255 characters")
	}

	return &Transaction{
		AccountNumber: accountNumber,
		UserID:        userID,
		Amount:        amount,
		Currency:      strings.ToUpper(strings.TrimSpace(currency)),
		Type:          txType,
		Reference:     reference,
		CreatedAt:     now,
	}, nil
}

// Signed returns the amount with the sign of its balance effect.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TypeWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}
