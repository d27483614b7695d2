package handler

import (
	"time"

	"finbank/internal/accounts/models"
)

// AccountResponse is the HTTP projection of an account. Internal row IDs,
// the owner reference, and the deletion flag never leave the service.
type AccountResponse struct {
	AccountNumber    string    `json:"accountNumber"`
	SortCode         string    `json:"sortCode"`
	Name             string    `json:"name"`
	AccountType      string    `json:"accountType"`
	Balance          float64   `json:"balance"`
	Currency         string    `json:"currency"`
	CreatedTimestamp time.Time `json:"createdTimestamp"`
	UpdatedTimestamp time.Time `json:"updatedTimestamp"`
}

// ListAccountsResponse is the HTTP response for GET /v1/accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
}

// FromAccount converts a domain account to its HTTP projection.
func FromAccount(a *models.Account) *AccountResponse {
	return &AccountResponse{
		AccountNumber:    a.Number,
		SortCode:         a.SortCode,
		Name:             a.Name,
		AccountType:      string(a.Type),
		Balance:          a.Balance.InexactFloat64(),
		Currency:         a.Currency,
		CreatedTimestamp: a.CreatedAt,
		UpdatedTimestamp: a.UpdatedAt,
	}
}

func FromAccounts(accounts []*models.Account) *ListAccountsResponse {
	out := &ListAccountsResponse{Accounts: make([]*AccountResponse, 0, len(accounts))}
	for _, a := range accounts {
		out.Accounts = append(out.Accounts, FromAccount(a))
	}
	return out
}
