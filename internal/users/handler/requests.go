package handler

import (
	"strings"

	"finbank/internal/users/models"
	"finbank/internal/users/service"
	dErrors "finbank/pkg/domain-errors"
)

// AddressPayload is the wire shape of a postal address.
type AddressPayload struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Line3    string `json:"line3"`
	Town     string `json:"town"`
	County   string `json:"county"`
	Postcode string `json:"postcode"`
}

func (a AddressPayload) toAddress() models.Address {
	return models.Address{
		Line1:    a.Line1,
		Line2:    a.Line2,
		Line3:    a.Line3,
		Town:     a.Town,
		County:   a.County,
		Postcode: a.Postcode,
	}
}

// CreateUserRequest is the HTTP request body for POST /v1/users.
type CreateUserRequest struct {
	Email       string         `json:"email"`
	Password    string         `json:"password"`
	Name        string         `json:"name"`
	PhoneNumber string         `json:"phoneNumber"`
	Address     AddressPayload `json:"address"`
}

// Validate checks the presence of required fields. Field-level rules live in
// the user model and the service.
func (r *CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return dErrors.New(dErrors.CodeValidation, "phoneNumber is required")
	}
	return nil
}

func (r *CreateUserRequest) ToParams() service.RegisterParams {
	return service.RegisterParams{
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Address:  r.Address.toAddress(),
		Phone:    r.PhoneNumber,
	}
}

// UpdateUserRequest is the HTTP request body for PATCH /v1/users/{userId}.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	Email       *string         `json:"email"`
	Name        *string         `json:"name"`
	PhoneNumber *string         `json:"phoneNumber"`
	Address     *AddressPayload `json:"address"`
}

func (r *UpdateUserRequest) ToUpdate() models.UserUpdate {
	update := models.UserUpdate{
		Email: r.Email,
		Name:  r.Name,
		Phone: r.PhoneNumber,
	}
	if r.Address != nil {
		addr := r.Address.toAddress()
		update.Address = &addr
	}
	return update
}
