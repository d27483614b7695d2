package handler

import (
	"strings"

	"finbank/internal/accounts/models"
	dErrors "finbank/pkg/domain-errors"
)

// CreateAccountRequest is the HTTP request body for POST /v1/accounts.
type CreateAccountRequest struct {
	Name        string `json:"name"`
	AccountType string `json:"accountType"`

	parsedType models.Type
}

// Validate validates and parses the request.
func (r *CreateAccountRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(r.AccountType) == "" {
		return dErrors.New(dErrors.CodeValidation, "accountType is required")
	}
	parsed, err := models.ParseType(r.AccountType)
	if err != nil {
		return err
	}
	r.parsedType = parsed
	return nil
}

func (r *CreateAccountRequest) ParsedType() models.Type {
	return r.parsedType
}

// UpdateAccountRequest is the HTTP request body for PATCH
// /v1/accounts/{accountNumber}. Absent fields are left unchanged.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	AccountType *string `json:"accountType"`

	parsedType *models.Type
}

// Validate parses the optional account type. A blank name is accepted here
// and skipped at apply time.
func (r *UpdateAccountRequest) Validate() error {
	if r.AccountType != nil {
		parsed, err := models.ParseType(*r.AccountType)
		if err != nil {
			return err
		}
		r.parsedType = &parsed
	}
	return nil
}

// ToUpdate converts the request to the domain update.
func (r *UpdateAccountRequest) ToUpdate() models.AccountUpdate {
	return models.AccountUpdate{
		Name: r.Name,
		Type: r.parsedType,
	}
}
