package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCommentLength bounds Comment.Content
const MaxCommentLength = 1000

// Comment is a note left on an issue
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Content   string    `json:"content" gorm:"not null;size:1000"`
	IssueID   string    `json:"issue" gorm:"type:uuid;not null;index"`
	AuthorID  string    `json:"author" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author *User `json:"-" gorm:"foreignKey:AuthorID"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
