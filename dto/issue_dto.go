package dto

import (
	"time"

	"github.com/bugtracker-api/models"
)

// IssueFilter represents the list query for issues. Empty fields do not filter.
type IssueFilter struct {
	Pagination
	ProjectID  string
	Status     models.IssueStatus
	Priority   models.Priority
	Type       models.IssueType
	AssignedTo string
	Search     string
	SortBy     string
	Order      string
	// VisibleTo restricts results to projects the user created or belongs to
	VisibleTo string
}

// CreateIssueRequest represents the request payload for creating an issue
type CreateIssueRequest struct {
	Title       string             `json:"title" binding:"required,max=200"`
	Description string             `json:"description"`
	Status      models.IssueStatus `json:"status"`
	Priority    models.Priority    `json:"priority"`
	Type        models.IssueType   `json:"type"`
	Project     string             `json:"project" binding:"required"`
	AssignedTo  *string            `json:"assignedTo"`
	DueDate     *time.Time         `json:"dueDate"`
}

// UpdateIssueRequest is a partial update. ClearAssignee and ClearDueDate unset the nullable fields.
type UpdateIssueRequest struct {
	Title         *string             `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string             `json:"description"`
	Status        *models.IssueStatus `json:"status"`
	Priority      *models.Priority    `json:"priority"`
	Type          *models.IssueType   `json:"type"`
	AssignedTo    *string             `json:"assignedTo"`
	ClearAssignee bool                `json:"clearAssignee"`
	DueDate       *time.Time          `json:"dueDate"`
	ClearDueDate  bool                `json:"clearDueDate"`
}

// IssueResponse represents an issue with its references populated
type IssueResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      models.IssueStatus `json:"status"`
	Priority    models.Priority    `json:"priority"`
	Type        models.IssueType   `json:"type"`
	Project     *ProjectSummary    `json:"project"`
	CreatedBy   *UserSummary       `json:"createdBy"`
	AssignedTo  *UserSummary       `json:"assignedTo"`
	DueDate     *time.Time         `json:"dueDate"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// IssueListResponse represents paginated issue list response
type IssueListResponse struct {
	Issues     []IssueResponse `json:"issues"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

func NewIssueResponse(i models.Issue) IssueResponse {
	resp := IssueResponse{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      i.Status,
		Priority:    i.Priority,
		Type:        i.Type,
		Project:     NewProjectSummary(i.Project),
		CreatedBy:   NewUserSummary(i.CreatedBy),
		AssignedTo:  NewUserSummary(i.AssignedTo),
		DueDate:     i.DueDate,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if resp.Project == nil {
		resp.Project = &ProjectSummary{ID: i.ProjectID}
	}
	if resp.CreatedBy == nil {
		resp.CreatedBy = &UserSummary{ID: i.CreatedByID}
	}
	if resp.AssignedTo == nil && i.AssignedToID != nil {
		resp.AssignedTo = &UserSummary{ID: *i.AssignedToID}
	}
	return resp
}
