package dto

import (
	"time"

	"github.com/bugtracker-api/models"
)

// ProjectFilter represents filter criteria for projects
type ProjectFilter struct {
	Pagination
	UserID    string
	IsAdmin   bool
	Search    string
	Status    models.ProjectStatus
	SortBy    string
	SortOrder string
}

// MemberRequest adds or replaces a single membership
type MemberRequest struct {
	User string            `json:"user" binding:"required,uuid"`
	Role models.MemberRole `json:"role" binding:"required"`
}

// CreateProjectRequest represents the request payload for creating a new project
type CreateProjectRequest struct {
	Name        string               `json:"name" binding:"required,max=100"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Priority    models.Priority      `json:"priority"`
	Members     []MemberRequest      `json:"members" binding:"dive"`
}

// UpdateProjectRequest is a partial update; nil fields are left unchanged
type UpdateProjectRequest struct {
	Name        *string               `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string               `json:"description"`
	Status      *models.ProjectStatus `json:"status"`
	Priority    *models.Priority      `json:"priority"`
	Members     *[]MemberRequest      `json:"members" binding:"omitempty,dive"`
}

// ProjectSummary is the populated form of a project reference
type ProjectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemberResponse is a membership with the user populated when loaded
type MemberResponse struct {
	User     string            `json:"user"`
	Role     models.MemberRole `json:"role"`
	UserInfo *UserSummary      `json:"userInfo,omitempty"`
}

// ProjectResponse represents the standard response format for a project
type ProjectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Priority    models.Priority      `json:"priority"`
	CreatedBy   *UserSummary         `json:"createdBy"`
	Members     []MemberResponse     `json:"members"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ProjectListResponse represents paginated project list response
type ProjectListResponse struct {
	Projects   []ProjectResponse `json:"projects"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

func NewProjectResponse(p models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		CreatedBy:   NewUserSummary(p.CreatedBy),
		Members:     make([]MemberResponse, 0, len(p.Members)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if resp.CreatedBy == nil {
		resp.CreatedBy = &UserSummary{ID: p.CreatedByID}
	}
	for _, m := range p.Members {
		resp.Members = append(resp.Members, MemberResponse{
			User:     m.UserID,
			Role:     m.Role,
			UserInfo: NewUserSummary(m.User),
		})
	}
	return resp
}

func NewProjectSummary(p *models.Project) *ProjectSummary {
	if p == nil {
		return nil
	}
	return &ProjectSummary{ID: p.ID, Name: p.Name}
}
