package handler

import (
	"time"

	"finbank/internal/users/models"
)

// UserResponse is the HTTP projection of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Name             string         `json:"name"`
	PhoneNumber      string         `json:"phoneNumber"`
	Address          models.Address `json:"address"`
	CreatedTimestamp time.Time      `json:"createdTimestamp"`
	UpdatedTimestamp time.Time      `json:"updatedTimestamp"`
}

// FromUser converts a domain user to its HTTP projection.
func FromUser(u *models.User) *UserResponse {
	return &UserResponse{
		ID:               u.ID.String(),
		Email:            u.Email,
		Name:             u.Name,
		PhoneNumber:      u.Phone,
		Address:          u.Address,
		CreatedTimestamp: u.CreatedAt,
		UpdatedTimestamp: u.UpdatedAt,
	}
}
