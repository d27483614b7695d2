package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
)

func validAddress() Address {
	return Address{
		Line1:    "1 High Street",
		Town:     "London",
		County:   "Greater London",
		Postcode: "SW1A 1AA",
	}
}

func TestNewUser(t *testing.T) {
	now := time.Now()
	id := domain.NewUserID()

	t.Run("constructs a valid user", func(t *testing.T) {
		user, err := NewUser(id, "alice@example.com", "hash", "Alice", validAddress(), "+441234567890", now)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, now, user.CreatedAt)
		assert.Equal(t, now, user.UpdatedAt)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		user, err := NewUser(id, "  alice@example.com  ", "hash", "  Alice  ", validAddress(), " +44 ", now)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "+44", user.Phone)
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		cases := map[string]func() (*User, error){
			"missing email": func() (*User, error) {
				return NewUser(id, "", "hash", "Alice", validAddress(), "+44", now)
			},
			"email without at sign": func() (*User, error) {
				return NewUser(id, "alice.example.com", "hash", "Alice", validAddress(), "+44", now)
			},
			"missing name": func() (*User, error) {
				return NewUser(id, "alice@example.com", "hash", "  ", validAddress(), "+44", now)
			},
			"missing phone": func() (*User, error) {
				return NewUser(id, "alice@example.com", "hash", "Alice", validAddress(), "", now)
			},
			"missing credential": func() (*User, error) {
				return NewUser(id, "alice@example.com", "", "Alice", validAddress(), "+44", now)
			},
		}
		for name, build := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := build()
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			})
		}
	})

	t.Run("rejects incomplete address", func(t *testing.T) {
		addr := validAddress()
		addr.Town = ""
		_, err := NewUser(id, "alice@example.com", "hash", "Alice", addr, "+44", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects overlong address fields", func(t *testing.T) {
		addr := validAddress()
		addr.Postcode = string(make([]byte, 21))
		_, err := NewUser(id, "alice@example.com", "hash", "Alice", addr, "+44", now)
		require.Error(t, err)
	})
}

func TestApplyUpdate(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)

	newUser := func(t *testing.T) *User {
		t.Helper()
		user, err := NewUser(domain.NewUserID(), "alice@example.com", "hash", "Alice", validAddress(), "+44", now)
		require.NoError(t, err)
		return user
	}

	t.Run("applies supplied fields", func(t *testing.T) {
		user := newUser(t)
		name := "Alicia"
		phone := "+45"
		user.ApplyUpdate(UserUpdate{Name: &name, Phone: &phone}, later)
		assert.Equal(t, "Alicia", user.Name)
		assert.Equal(t, "+45", user.Phone)
		assert.Equal(t, later, user.UpdatedAt)
		assert.Equal(t, now, user.CreatedAt)
	})

	t.Run("skips blank fields silently", func(t *testing.T) {
		user := newUser(t)
		blank := "   "
		user.ApplyUpdate(UserUpdate{Name: &blank, Email: &blank}, later)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("skips case-only email change", func(t *testing.T) {
		user := newUser(t)
		upper := "ALICE@EXAMPLE.COM"
		user.ApplyUpdate(UserUpdate{Email: &upper}, later)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("applies a real email change", func(t *testing.T) {
		user := newUser(t)
		changed := "alice2@example.com"
		user.ApplyUpdate(UserUpdate{Email: &changed}, later)
		assert.Equal(t, "alice2@example.com", user.Email)
	})
}

func TestUserUpdateValidate(t *testing.T) {
	t.Run("accepts empty update", func(t *testing.T) {
		assert.NoError(t, UserUpdate{}.Validate())
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		bad := "not-an-email"
		err := UserUpdate{Email: &bad}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects incomplete address", func(t *testing.T) {
		addr := Address{Line1: "1 High Street"}
		err := UserUpdate{Address: &addr}.Validate()
		require.Error(t, err)
	})
}
