package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"finbank/internal/users/models"
	"finbank/internal/users/store"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
)

// stubCounter reports a fixed number of owned accounts.
type stubCounter struct {
	count int
}

func (c *stubCounter) CountByOwner(context.Context, domain.UserID) (int, error) {
	return c.count, nil
}

type UserServiceSuite struct {
	suite.Suite
	service *Service
	counter *stubCounter
	ctx     context.Context
}

func (s *UserServiceSuite) SetupTest() {
	s.counter = &stubCounter{}
	s.service = New(store.NewInMemory(), s.counter)
	s.ctx = context.Background()
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) register(email string) *models.User {
	user, err := s.service.Register(s.ctx, RegisterParams{
		Email:    email,
		Password: "correct-horse",
		Name:     "Alice",
		Address: models.Address{
			Line1:    "1 High Street",
			Town:     "London",
			County:   "Greater London",
			Postcode: "SW1A 1AA",
		},
		Phone: "+441234567890",
	})
	s.Require().NoError(err)
	return user
}

func (s *UserServiceSuite) TestRegister() {
	s.Run("registers a user and hashes the password", func() {
		user := s.register("alice@example.com")
		s.False(user.ID.IsNil())
		s.NotEqual("correct-horse", user.PasswordHash)
		s.NotEmpty(user.PasswordHash)
	})

	s.Run("rejects short passwords", func() {
		_, err := s.service.Register(s.ctx, RegisterParams{Email: "short@example.com", Password: "short"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects duplicate email with conflict", func() {
		s.register("dup@example.com")
		_, err := s.service.Register(s.ctx, RegisterParams{
			Email:    "DUP@example.com",
			Password: "correct-horse",
			Name:     "Bob",
			Address:  models.Address{Line1: "2 Low Street", Town: "Leeds", County: "West Yorkshire", Postcode: "LS1 1AA"},
			Phone:    "+44",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *UserServiceSuite) TestAuthenticate() {
	s.Run("accepts correct credentials", func() {
		registered := s.register("auth@example.com")
		user, err := s.service.Authenticate(s.ctx, "auth@example.com", "correct-horse")
		s.Require().NoError(err)
		s.Equal(registered.ID, user.ID)
	})

	s.Run("returns identical error for wrong password and unknown email", func() {
		s.register("probe@example.com")

		_, wrongPassword := s.service.Authenticate(s.ctx, "probe@example.com", "wrong")
		_, unknownEmail := s.service.Authenticate(s.ctx, "nobody@example.com", "correct-horse")

		s.Require().Error(wrongPassword)
		s.Require().Error(unknownEmail)
		s.True(dErrors.HasCode(wrongPassword, dErrors.CodeUnauthorized))
		s.Equal(wrongPassword.Error(), unknownEmail.Error())
	})
}

func (s *UserServiceSuite) TestGet() {
	s.Run("returns own record", func() {
		user := s.register("self@example.com")
		found, err := s.service.Get(s.ctx, user.ID, user.ID)
		s.Require().NoError(err)
		s.Equal(user.Email, found.Email)
	})

	s.Run("forbids reading another user's record", func() {
		alice := s.register("alice2@example.com")
		bob := s.register("bob2@example.com")

		_, err := s.service.Get(s.ctx, alice.ID, bob.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown target is not found before any ownership check", func() {
		alice := s.register("alice3@example.com")
		_, err := s.service.Get(s.ctx, alice.ID, domain.NewUserID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *UserServiceSuite) TestUpdate() {
	s.Run("applies partial update", func() {
		user := s.register("update@example.com")
		name := "Alicia"
		updated, err := s.service.Update(s.ctx, user.ID, user.ID, models.UserUpdate{Name: &name})
		s.Require().NoError(err)
		s.Equal("Alicia", updated.Name)
		s.Equal(user.Email, updated.Email)
	})

	s.Run("email change to a taken address conflicts", func() {
		alice := s.register("taken@example.com")
		bob := s.register("mover@example.com")

		email := "taken@example.com"
		_, err := s.service.Update(s.ctx, bob.ID, bob.ID, models.UserUpdate{Email: &email})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		// Alice is untouched.
		found, err := s.service.Get(s.ctx, alice.ID, alice.ID)
		s.Require().NoError(err)
		s.Equal("taken@example.com", found.Email)
	})

	s.Run("forbids updating another user", func() {
		alice := s.register("victim@example.com")
		bob := s.register("attacker@example.com")

		name := "Hijacked"
		_, err := s.service.Update(s.ctx, bob.ID, alice.ID, models.UserUpdate{Name: &name})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *UserServiceSuite) TestDelete() {
	s.Run("deletes a user with no accounts", func() {
		user := s.register("deleteme@example.com")
		s.Require().NoError(s.service.Delete(s.ctx, user.ID, user.ID))

		_, err := s.service.Get(s.ctx, user.ID, user.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("refuses while the user owns accounts", func() {
		user := s.register("owner@example.com")
		s.counter.count = 2

		err := s.service.Delete(s.ctx, user.ID, user.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.counter.count = 0
	})

	s.Run("forbids deleting another user", func() {
		alice := s.register("alice4@example.com")
		bob := s.register("bob4@example.com")

		err := s.service.Delete(s.ctx, bob.ID, alice.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// expiredStore simulates a store whose context deadline has passed.
type expiredStore struct {
	Store
}

func (expiredStore) FindByID(context.Context, domain.UserID) (*models.User, error) {
	return nil, context.DeadlineExceeded
}

func TestStoreDeadlineSurfacesAsTimeout(t *testing.T) {
	svc := New(expiredStore{Store: store.NewInMemory()}, &stubCounter{})
	id := domain.NewUserID()

	_, err := svc.Get(context.Background(), id, id)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}
