package dto

import (
	"time"

	"github.com/bugtracker-api/models"
)

// UserSummary is the populated form of a user reference
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserResponse is the outward representation of a user. It never carries the password.
type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// UserListResponse represents a paginated user list
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserSummary returns nil when the user was not loaded
func NewUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}
