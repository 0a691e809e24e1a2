package dto

import (
	"time"

	"github.com/bugtracker-api/models"
)

// CommentRequest is used for both creating and editing a comment
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	Issue     string       `json:"issue"`
	Author    *UserSummary `json:"author"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func NewCommentResponse(c models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Issue:     c.IssueID,
		Author:    NewUserSummary(c.Author),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if resp.Author == nil {
		resp.Author = &UserSummary{ID: c.AuthorID}
	}
	return resp
}
