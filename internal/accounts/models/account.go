package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
)

// Every account carries the same sort code and currency; neither is
// configurable at creation.
const (
	SortCode = "10-10-10"
	Currency = "GBP"
)

// AccountNumberLength is the fixed width of the zero-padded external
// account identifier.
const AccountNumberLength = 8

// Type classifies an account.
type Type string

const (
	TypePersonal Type = "PERSONAL"
	TypeBusiness Type = "BUSINESS"
)

// ParseType validates an account type string.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case TypePersonal:
		return TypePersonal, nil
	case TypeBusiness:
		return TypeBusiness, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "account type must be PERSONAL or BUSINESS")
	}
}

// ValidateNumber checks the shape of an external account number.
func ValidateNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return dErrors.New(dErrors.CodeValidation, "account number cannot be empty")
	}
	if len(number) != AccountNumberLength {
		return dErrors.New(dErrors.CodeValidation, "account number must be 8 digits")
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return dErrors.New(dErrors.CodeValidation, "account number must be 8 digits")
		}
	}
	return nil
}

// Account is the ledger aggregate.
//
// Invariants:
//   - Number is globally unique, deleted accounts included; never reused
//   - Balance equals the signed sum of applied transactions and is never negative
//   - OwnerID is immutable after construction
//   - A deleted account is invisible to lookups, takes no transactions, and
//     cannot be un-deleted
//   - Deletion requires a zero balance
type Account struct {
	ID        int64
	Number    string
	SortCode  string
	Name      string
	Type      Type
	Balance   decimal.Decimal
	Currency  string
	OwnerID   domain.UserID
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount constructs an account with a zero balance. The store assigns ID
// on insert.
func NewAccount(owner domain.UserID, name string, accountType Type, number string, now time.Time) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "account name cannot be empty")
	}
	if len(name) > 255 {
		return nil, dErrors.New(dErrors.CodeValidation, "account name cannot exceed 255 characters")
	}
	if accountType != TypePersonal && accountType != TypeBusiness {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "account type must be PERSONAL or BUSINESS")
	}
	if err := ValidateNumber(number); err != nil {
		return nil, err
	}
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "account owner is required")
	}

	return &Account{
		Number:    number,
		SortCode:  SortCode,
		Name:      name,
		Type:      accountType,
		Balance:   decimal.Zero,
		Currency:  Currency,
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AccountUpdate carries the optional fields of a partial account update.
// Nil means "leave unchanged". A blank or whitespace-only name is silently
// skipped rather than rejected, preserving the API's permissive behavior.
type AccountUpdate struct {
	Name *string
	Type *Type
}

// Validate rejects update payloads that could not produce a valid account.
// A blank name is not an error (it is skipped at apply time), but a supplied
// name is held to the same length cap as at creation.
func (u AccountUpdate) Validate() error {
	if u.Name != nil && len(strings.TrimSpace(*u.Name)) > 255 {
		return dErrors.New(dErrors.CodeValidation, "account name cannot exceed 255 characters")
	}
	return nil
}

// ApplyUpdate mutates the account with the supplied fields.
func (a *Account) ApplyUpdate(update AccountUpdate, now time.Time) {
	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		a.Name = strings.TrimSpace(*update.Name)
	}
	if update.Type != nil {
		a.Type = *update.Type
	}
	a.UpdatedAt = now
}

// CanDelete checks the zero-balance precondition for soft deletion.
func (a *Account) CanDelete() error {
	if !a.Balance.IsZero() {
		return dErrors.New(dErrors.CodeNonZeroBalance, "account cannot be deleted if the balance is not zero")
	}
	return nil
}

// ApplyDelete soft-deletes the account. Call CanDelete first.
func (a *Account) ApplyDelete(now time.Time) {
	a.Deleted = true
	a.UpdatedAt = now
}

// Deposit credits the balance. Amount validation happens at the boundary;
// this only applies the arithmetic.
func (a *Account) Deposit(amount decimal.Decimal, now time.Time) {
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = now
}

// Withdraw debits the balance, failing without mutation when funds are
// insufficient.
func (a *Account) Withdraw(amount decimal.Decimal, now time.Time) error {
	if a.Balance.LessThan(amount) {
		return dErrors.New(dErrors.CodeInsufficientFunds, "insufficient funds to process transaction, current balance: "+a.Balance.StringFixed(2))
	}
	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = now
	return nil
}
