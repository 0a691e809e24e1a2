package dto

import (
	"time"

	"github.com/bugtracker-api/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents our custom JWT claims
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to a request
type Identity struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// IdentityFromUser strips everything but the public identity fields
func IdentityFromUser(u models.User) Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// AuthResponse represents the response after authentication
type AuthResponse struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
