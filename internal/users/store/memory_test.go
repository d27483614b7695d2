package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"finbank/internal/users/models"
	"finbank/pkg/domain"
	"finbank/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) newUser(email string) *models.User {
	user, err := models.NewUser(domain.NewUserID(), email, "hash", "Alice", models.Address{
		Line1:    "1 High Street",
		Town:     "London",
		County:   "Greater London",
		Postcode: "SW1A 1AA",
	}, "+441234567890", time.Now())
	s.Require().NoError(err)
	return user
}

func (s *UserStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds user by ID and email", func() {
		user := s.newUser("alice@example.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, user))

		byID, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(user.Email, byID.Email)

		byEmail, err := s.store.FindByEmail(s.ctx, "alice@example.com")
		s.Require().NoError(err)
		s.Equal(user.ID, byEmail.ID)
	})

	s.Run("finds by email case-insensitively", func() {
		user := s.newUser("bob@example.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, user))

		found, err := s.store.FindByEmail(s.ctx, "BOB@EXAMPLE.COM")
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown user", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned user is a copy", func() {
		user := s.newUser("carol@example.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, user))

		found, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		found.Name = "mutated"

		again, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal("Alice", again.Name)
	})
}

func (s *UserStoreSuite) TestEmailUniqueness() {
	s.Run("rejects duplicate email case-insensitively", func() {
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, s.newUser("dup@example.com")))

		err := s.store.CreateIfEmailAvailable(s.ctx, s.newUser("DUP@example.com"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})
}

func (s *UserStoreSuite) TestUpdate() {
	s.Run("persists changes and re-indexes email", func() {
		user := s.newUser("old@example.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, user))

		user.Email = "new@example.com"
		user.Name = "Renamed"
		s.Require().NoError(s.store.Update(s.ctx, user))

		found, err := s.store.FindByEmail(s.ctx, "new@example.com")
		s.Require().NoError(err)
		s.Equal("Renamed", found.Name)

		_, err = s.store.FindByEmail(s.ctx, "old@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects email change colliding with another user", func() {
		a := s.newUser("a@example.com")
		b := s.newUser("b@example.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, a))
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, b))

		b.Email = "A@example.com"
		s.Require().ErrorIs(s.store.Update(s.ctx, b), sentinel.ErrAlreadyUsed)
	})

	s.Run("rejects update of unknown user", func() {
		s.Require().ErrorIs(s.store.Update(s.ctx, s.newUser("ghost@example.com")), sentinel.ErrNotFound)
	})
}

func (s *UserStoreSuite) TestDelete() {
	s.Run("removes the user and frees the email", func() {
		user := s.newUser("gone@example.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, user))
		s.Require().NoError(s.store.Delete(s.ctx, user.ID))

		_, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, s.newUser("gone@example.com")))
	})

	s.Run("rejects delete of unknown user", func() {
		s.Require().ErrorIs(s.store.Delete(s.ctx, domain.NewUserID()), sentinel.ErrNotFound)
	})
}
