package handler

import (
	"time"

	"finbank/internal/ledger/models"
)

// TransactionResponse is the HTTP projection of a ledger entry.
type TransactionResponse struct {
	ID               int64     `json:"id"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Type             string    `json:"type"`
	Reference        string    `json:"reference,omitempty"`
	UserID           string    `json:"userId"`
	CreatedTimestamp time.Time `json:"createdTimestamp"`
}

// ListTransactionsResponse is the HTTP response for GET
// /v1/accounts/{accountNumber}/transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
}

// FromTransaction converts a domain transaction to its HTTP projection.
func FromTransaction(t *models.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               int64(t.ID),
		Amount:           t.Amount.InexactFloat64(),
		Currency:         t.Currency,
		Type:             string(t.Type),
		Reference:        t.Reference,
		UserID:           t.UserID.String(),
		CreatedTimestamp: t.CreatedAt,
	}
}

func FromTransactions(txns []*models.Transaction) *ListTransactionsResponse {
	out := &ListTransactionsResponse{Transactions: make([]*TransactionResponse, 0, len(txns))}
	for _, t := range txns {
		out.Transactions = append(out.Transactions, FromTransaction(t))
	}
	return out
}
