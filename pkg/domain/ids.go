// Package domain holds identifier types shared across verticals. Typed IDs
// keep the compiler from mixing a user ID with anything else.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "finbank/pkg/domain-errors"
)

// UserID identifies a registered user. Underlying representation is a UUID.
type UserID uuid.UUID

// NewUserID generates a fresh random user ID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

func (id UserID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero UUID.
func (id UserID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText renders the ID in canonical UUID form so the type serializes
// cleanly in JSON and log output.
func (id UserID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseUserID validates and converts a string into a UserID.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "user id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user id must not be the nil UUID")
	}
	return UserID(parsed), nil
}

// TransactionID identifies a ledger transaction. Transaction IDs are numeric
// and allocated by the store in creation order.
type TransactionID int64

func (id TransactionID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseTransactionID validates and converts a string into a TransactionID.
// Non-numeric input is invalid, not merely absent.
func ParseTransactionID(s string) (TransactionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "transaction id is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "transaction id must be numeric")
	}
	// Zero and negative values parse fine; the store never allocates them,
	// so a scoped lookup reports them as not found.
	return TransactionID(n), nil
}
