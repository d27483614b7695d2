package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbank/internal/accounts/models"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
	"finbank/pkg/platform/sentinel"
)

type AccountStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	owner domain.UserID
}

func (s *AccountStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.owner = domain.NewUserID()
}

func TestAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(AccountStoreSuite))
}

func (s *AccountStoreSuite) newAccount(number string, owner domain.UserID) *models.Account {
	account, err := models.NewAccount(owner, "Main", models.TypePersonal, number, time.Now())
	s.Require().NoError(err)
	return account
}

func (s *AccountStoreSuite) create(number string, owner domain.UserID) *models.Account {
	account := s.newAccount(number, owner)
	s.Require().NoError(s.store.Create(s.ctx, account))
	return account
}

func (s *AccountStoreSuite) TestCreate() {
	s.Run("assigns sequential internal IDs", func() {
		first := s.create("00000001", s.owner)
		second := s.create("00000002", s.owner)
		s.Less(first.ID, second.ID)
	})

	s.Run("rejects a taken number", func() {
		s.create("00000010", s.owner)
		err := s.store.Create(s.ctx, s.newAccount("00000010", s.owner))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("rejects a number held by a deleted account", func() {
		account := s.create("00000011", s.owner)
		_, err := s.store.Execute(s.ctx, account.Number,
			func(a *models.Account) error { return a.CanDelete() },
			func(a *models.Account) { a.ApplyDelete(time.Now()) },
		)
		s.Require().NoError(err)

		err = s.store.Create(s.ctx, s.newAccount("00000011", s.owner))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *AccountStoreSuite) TestVisibility() {
	s.Run("deleted accounts are invisible to lookups but keep their number", func() {
		account := s.create("00000020", s.owner)
		_, err := s.store.Execute(s.ctx, account.Number,
			func(a *models.Account) error { return nil },
			func(a *models.Account) { a.ApplyDelete(time.Now()) },
		)
		s.Require().NoError(err)

		_, err = s.store.FindByNumber(s.ctx, account.Number)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		inUse, err := s.store.NumberInUse(s.ctx, account.Number)
		s.Require().NoError(err)
		s.True(inUse)

		list, err := s.store.ListByOwner(s.ctx, s.owner)
		s.Require().NoError(err)
		s.Empty(list)
	})

	s.Run("list returns only the owner's accounts in creation order", func() {
		other := domain.NewUserID()
		first := s.create("00000030", s.owner)
		s.create("00000031", other)
		second := s.create("00000032", s.owner)

		list, err := s.store.ListByOwner(s.ctx, s.owner)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(first.Number, list[0].Number)
		s.Equal(second.Number, list[1].Number)

		count, err := s.store.CountByOwner(s.ctx, s.owner)
		s.Require().NoError(err)
		s.Equal(2, count)
	})
}

func (s *AccountStoreSuite) TestExecute() {
	s.Run("validation failure leaves the account untouched", func() {
		account := s.create("00000040", s.owner)

		_, err := s.store.Execute(s.ctx, account.Number,
			func(a *models.Account) error {
				return dErrors.New(dErrors.CodeForbidden, "nope")
			},
			func(a *models.Account) { a.Name = "mutated" },
		)
		s.Require().Error(err)

		found, err := s.store.FindByNumber(s.ctx, account.Number)
		s.Require().NoError(err)
		s.Equal("Main", found.Name)
	})

	s.Run("unknown number is not found", func() {
		_, err := s.store.Execute(s.ctx, "99999999",
			func(a *models.Account) error { return nil },
			func(a *models.Account) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("concurrent mutations serialize per account", func() {
		account := s.create("00000050", s.owner)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.store.Execute(s.ctx, account.Number,
					func(a *models.Account) error { return nil },
					func(a *models.Account) {
						a.Balance = a.Balance.Add(decimal.NewFromInt(1))
					},
				)
				s.NoError(err)
			}()
		}
		wg.Wait()

		found, err := s.store.FindByNumber(s.ctx, account.Number)
		s.Require().NoError(err)
		s.True(found.Balance.Equal(decimal.NewFromInt(50)))
	})
}
