package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents user role types
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"` // Password is not exposed in JSON
	Role      Role      `json:"role" gorm:"type:varchar(10);default:'user'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not provide one
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
