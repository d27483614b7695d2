package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbank/internal/accounts/allocator"
	"finbank/internal/accounts/models"
	"finbank/internal/accounts/service"
	"finbank/internal/accounts/store"
	"finbank/pkg/domain"
	"finbank/pkg/testutil"
)

func newRouter(t *testing.T) (chi.Router, *service.Service) {
	t.Helper()
	mem := store.NewInMemory()
	svc := service.New(mem, allocator.New(mem))
	r := chi.NewRouter()
	New(svc, slog.Default()).Register(r)
	return r, svc
}

func createAccount(t *testing.T, router chi.Router, owner domain.UserID) *AccountResponse {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/accounts", map[string]string{
		"name":        "Main",
		"accountType": "PERSONAL",
	})
	rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return testutil.UnmarshalResponse[AccountResponse](t, rr)
}

func TestCreateAccount(t *testing.T) {
	router, _ := newRouter(t)
	owner := domain.NewUserID()

	t.Run("creates an account", func(t *testing.T) {
		resp := createAccount(t, router, owner)
		assert.Len(t, resp.AccountNumber, 8)
		assert.Equal(t, models.SortCode, resp.SortCode)
		assert.Equal(t, "GBP", resp.Currency)
		assert.Zero(t, resp.Balance)
	})

	t.Run("requires authentication", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/accounts", map[string]string{
			"name": "Main", "accountType": "PERSONAL",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("rejects an unknown account type", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/accounts", map[string]string{
			"name": "Main", "accountType": "SAVINGS",
		})
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/accounts", "{not json")
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestGetAccount(t *testing.T) {
	router, _ := newRouter(t)
	owner := domain.NewUserID()
	created := createAccount(t, router, owner)

	t.Run("returns own account", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodGet, "/accounts/"+created.AccountNumber, nil)
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[AccountResponse](t, rr)
		assert.Equal(t, created.AccountNumber, resp.AccountNumber)
	})

	t.Run("missing account is 404", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodGet, "/accounts/99999999", nil)
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("someone else's account is 403", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodGet, "/accounts/"+created.AccountNumber, nil)
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, domain.NewUserID()))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("malformed number is 400", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodGet, "/accounts/abc", nil)
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestListAccounts(t *testing.T) {
	router, _ := newRouter(t)
	owner := domain.NewUserID()
	first := createAccount(t, router, owner)
	second := createAccount(t, router, owner)
	createAccount(t, router, domain.NewUserID())

	req := testutil.NewJSONRequest(t, http.MethodGet, "/accounts", nil)
	rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[ListAccountsResponse](t, rr)
	require.Len(t, resp.Accounts, 2)
	assert.Equal(t, first.AccountNumber, resp.Accounts[0].AccountNumber)
	assert.Equal(t, second.AccountNumber, resp.Accounts[1].AccountNumber)
}

func TestUpdateAccount(t *testing.T) {
	router, _ := newRouter(t)
	owner := domain.NewUserID()
	created := createAccount(t, router, owner)

	t.Run("updates the name", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/accounts/"+created.AccountNumber, map[string]string{
			"name": "Bills",
		})
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[AccountResponse](t, rr)
		assert.Equal(t, "Bills", resp.Name)
	})

	t.Run("rejects an invalid type", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/accounts/"+created.AccountNumber, map[string]string{
			"accountType": "SAVINGS",
		})
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestDeleteAccount(t *testing.T) {
	router, _ := newRouter(t)
	owner := domain.NewUserID()
	created := createAccount(t, router, owner)

	t.Run("deletes and subsequent reads are 404", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodDelete, "/accounts/"+created.AccountNumber, nil)
		rr := testutil.DoRequest(router, testutil.WithPrincipal(req, owner))
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		get := testutil.NewJSONRequest(t, http.MethodGet, "/accounts/"+created.AccountNumber, nil)
		rr = testutil.DoRequest(router, testutil.WithPrincipal(get, owner))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}
