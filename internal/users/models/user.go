package models

import (
	"strings"
	"time"

	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
)

// Address is the postal address embedded in a user record.
type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Line3    string `json:"line3,omitempty"`
	Town     string `json:"town"`
	County   string `json:"county"`
	Postcode string `json:"postcode"`
}

func (a Address) validate() error {
	switch {
	case strings.TrimSpace(a.Line1) == "":
		return dErrors.New(dErrors.CodeValidation, "address line 1 cannot be empty")
	case len(a.Line1) > 100 || len(a.Line2) > 100 || len(a.Line3) > 100:
		return dErrors.New(dErrors.CodeValidation, "address lines cannot exceed 100 characters")
	case strings.TrimSpace(a.Town) == "":
		return dErrors.New(dErrors.CodeValidation, "town cannot be empty")
	case len(a.Town) > 50:
		return dErrors.New(dErrors.CodeValidation, "town cannot exceed 50 characters")
	case strings.TrimSpace(a.County) == "":
		return dErrors.New(dErrors.CodeValidation, "county cannot be empty")
	case len(a.County) > 50:
		return dErrors.New(dErrors.CodeValidation, "county cannot exceed 50 characters")
	case strings.TrimSpace(a.Postcode) == "":
		return dErrors.New(dErrors.CodeValidation, "postcode cannot be empty")
	case len(a.Postcode) > 20:
		return dErrors.New(dErrors.CodeValidation, "postcode cannot exceed 20 characters")
	}
	return nil
}

// User is the identity anchor owning zero or more accounts. The password
// credential is stored as a bcrypt hash and never leaves this package except
// for comparison.
//
// Invariants:
//   - Email is unique case-insensitively across all users
//   - PasswordHash, Name, Phone and the address are non-empty
//   - CreatedAt is immutable after construction
type User struct {
	ID           domain.UserID
	Email        string
	PasswordHash string
	Name         string
	Address      Address
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser constructs a user, enforcing field invariants. The caller supplies
// an already-hashed credential.
func NewUser(id domain.UserID, email, passwordHash, name string, address Address, phone string, now time.Time) (*User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email address is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password credential is required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "phone number cannot be empty")
	}
	if err := address.validate(); err != nil {
		return nil, err
	}

	return &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Address:      address,
		Phone:        phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UserUpdate carries the optional fields of a partial user update. Nil means
// "leave unchanged"; blank or whitespace-only values are silently skipped,
// matching the permissive partial-update behavior of the API.
type UserUpdate struct {
	Email   *string
	Name    *string
	Phone   *string
	Address *Address
}

// Validate rejects update payloads that could not produce a valid user.
// Blank scalar fields are not errors (they are skipped), but a supplied
// address must be complete.
func (u UserUpdate) Validate() error {
	if u.Email != nil {
		if email := strings.TrimSpace(*u.Email); email != "" && !strings.Contains(email, "@") {
			return dErrors.New(dErrors.CodeValidation, "a valid email address is required")
		}
	}
	if u.Address != nil {
		return u.Address.validate()
	}
	return nil
}

// EmailChange returns the new email if the update actually changes it.
func (u UserUpdate) EmailChange(current string) (string, bool) {
	if u.Email == nil {
		return "", false
	}
	email := strings.TrimSpace(*u.Email)
	if email == "" || strings.EqualFold(email, current) {
		return "", false
	}
	return email, true
}

// ApplyUpdate mutates the user with the supplied fields. Uniqueness of an
// email change is the store's concern; the caller checks it first.
func (u *User) ApplyUpdate(update UserUpdate, now time.Time) {
	if email, ok := update.EmailChange(u.Email); ok {
		u.Email = email
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		u.Name = strings.TrimSpace(*update.Name)
	}
	if update.Phone != nil && strings.TrimSpace(*update.Phone) != "" {
		u.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Address != nil {
		u.Address = *update.Address
	}
	u.UpdatedAt = now
}
