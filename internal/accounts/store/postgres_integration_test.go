//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbank/internal/accounts/models"
	"finbank/internal/accounts/store"
	usermodels "finbank/internal/users/models"
	userstore "finbank/internal/users/store"
	"finbank/pkg/domain"
	"finbank/pkg/platform/sentinel"
	"finbank/pkg/testutil/containers"
)

type PostgresAccountStoreSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	store  *store.PostgresStore
	owner  domain.UserID
	ctx    context.Context
	nextNo int
}

func TestPostgresAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresAccountStoreSuite))
}

func (s *PostgresAccountStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresAccountStoreSuite) SetupTest() {
	s.pg.Truncate(s.T())
	s.owner = s.createOwner("owner@example.com")
}

// createOwner inserts a user row to satisfy the ownership foreign key.
func (s *PostgresAccountStoreSuite) createOwner(email string) domain.UserID {
	s.T().Helper()
	user, err := usermodels.NewUser(domain.NewUserID(), email, "bcrypt-hash", "Account Owner", usermodels.Address{
		Line1:    "1 Bank Street",
		Town:     "London",
		County:   "Greater London",
		Postcode: "E14 4BB",
	}, "+447700900000", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(userstore.NewPostgres(s.pg.DB).CreateIfEmailAvailable(s.ctx, user))
	return user.ID
}

func (s *PostgresAccountStoreSuite) createAccount(owner domain.UserID) *models.Account {
	s.T().Helper()
	s.nextNo++
	number := fmt.Sprintf("%08d", s.nextNo)
	account, err := models.NewAccount(owner, "Savings", models.TypePersonal, number, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, account))
	return account
}

func (s *PostgresAccountStoreSuite) TestCreateAssignsIDAndFind() {
	account := s.createAccount(s.owner)
	s.NotZero(account.ID)

	found, err := s.store.FindByNumber(s.ctx, account.Number)
	s.Require().NoError(err)
	s.Equal(account.Number, found.Number)
	s.Equal(s.owner, found.OwnerID)
	s.True(found.Balance.IsZero())
}

func (s *PostgresAccountStoreSuite) TestCreateConflictOnTakenNumber() {
	account := s.createAccount(s.owner)

	dup, err := models.NewAccount(s.owner, "Duplicate", models.TypePersonal, account.Number, time.Now().UTC())
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresAccountStoreSuite) TestDeletedAccountsStayInvisibleButReserveNumber() {
	account := s.createAccount(s.owner)

	_, err := s.store.Execute(s.ctx, account.Number,
		func(a *models.Account) error { return a.CanDelete() },
		func(a *models.Account) { a.ApplyDelete(time.Now().UTC()) },
	)
	s.Require().NoError(err)

	_, err = s.store.FindByNumber(s.ctx, account.Number)
	s.ErrorIs(err, sentinel.ErrNotFound)

	inUse, err := s.store.NumberInUse(s.ctx, account.Number)
	s.Require().NoError(err)
	s.True(inUse, "deleted account numbers are never reused")

	dup, err := models.NewAccount(s.owner, "Reuse", models.TypePersonal, account.Number, time.Now().UTC())
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresAccountStoreSuite) TestListAndCountByOwner() {
	other := s.createOwner("other@example.com")
	first := s.createAccount(s.owner)
	second := s.createAccount(s.owner)
	s.createAccount(other)

	accounts, err := s.store.ListByOwner(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Equal(first.Number, accounts[0].Number)
	s.Equal(second.Number, accounts[1].Number)

	count, err := s.store.CountByOwner(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresAccountStoreSuite) TestExecutePersistsMutation() {
	account := s.createAccount(s.owner)

	updated, err := s.store.Execute(s.ctx, account.Number,
		func(*models.Account) error { return nil },
		func(a *models.Account) { a.Deposit(decimal.RequireFromString("12.50"), time.Now().UTC()) },
	)
	s.Require().NoError(err)
	s.True(updated.Balance.Equal(decimal.RequireFromString("12.50")))

	found, err := s.store.FindByNumber(s.ctx, account.Number)
	s.Require().NoError(err)
	s.True(found.Balance.Equal(decimal.RequireFromString("12.50")))
}

func (s *PostgresAccountStoreSuite) TestExecuteValidationFailureLeavesRowUntouched() {
	account := s.createAccount(s.owner)
	wantErr := fmt.Errorf("rejected")

	_, err := s.store.Execute(s.ctx, account.Number,
		func(*models.Account) error { return wantErr },
		func(a *models.Account) { a.Name = "should not persist" },
	)
	s.ErrorIs(err, wantErr)

	found, err := s.store.FindByNumber(s.ctx, account.Number)
	s.Require().NoError(err)
	s.Equal("Savings", found.Name)
}

func (s *PostgresAccountStoreSuite) TestExecuteUnknownNumber() {
	_, err := s.store.Execute(s.ctx, "99999999",
		func(*models.Account) error { return nil },
		func(*models.Account) {},
	)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
