package handler

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"finbank/internal/ledger/models"
	"finbank/internal/ledger/service"
	dErrors "finbank/pkg/domain-errors"
)

// CreateTransactionRequest is the HTTP request body for POST
// /v1/accounts/{accountNumber}/transactions. Amount is decoded as
// json.Number so "10.555" can be rejected for excess precision instead of
// silently rounding through a float.
type CreateTransactionRequest struct {
	Amount    json.Number `json:"amount"`
	Currency  string      `json:"currency"`
	Type      string      `json:"type"`
	Reference string      `json:"reference"`

	parsedAmount decimal.Decimal
	parsedType   models.Type
}

// Validate validates and parses the request.
func (r *CreateTransactionRequest) Validate() error {
	if r.Amount == "" {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	amount, err := decimal.NewFromString(string(r.Amount))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "amount must be a number")
	}
	if err := models.ValidateAmount(amount); err != nil {
		return err
	}
	r.parsedAmount = amount

	if strings.TrimSpace(r.Currency) == "" {
		return dErrors.New(dErrors.CodeValidation, "currency is required")
	}

	parsed, err := models.ParseType(r.Type)
	if err != nil {
		return err
	}
	r.parsedType = parsed

	if len(strings.TrimSpace(r.Reference)) > 255 {
		return dErrors.New(dErrors.CodeValidation, "reference cannot exceed 255 characters")
	}
	return nil
}

// ToParams converts the request to the domain parameters.
func (r *CreateTransactionRequest) ToParams() service.ApplyParams {
	return service.ApplyParams{
		Amount:    r.parsedAmount,
		Currency:  r.Currency,
		Type:      r.parsedType,
		Reference: strings.TrimSpace(r.Reference),
	}
}
