package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueStatus represents the state of an issue
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "Open"
	IssueStatusInProgress IssueStatus = "In Progress"
	IssueStatusResolved   IssueStatus = "Resolved"
	IssueStatusClosed     IssueStatus = "Closed"
	IssueStatusReopened   IssueStatus = "Reopened"
)

func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed, IssueStatusReopened:
		return true
	}
	return false
}

// IssueType represents the kind of work an issue tracks
type IssueType string

const (
	IssueTypeBug         IssueType = "Bug"
	IssueTypeFeature     IssueType = "Feature"
	IssueTypeTask        IssueType = "Task"
	IssueTypeImprovement IssueType = "Improvement"
)

func (t IssueType) IsValid() bool {
	switch t {
	case IssueTypeBug, IssueTypeFeature, IssueTypeTask, IssueTypeImprovement:
		return true
	}
	return false
}

// Issue is a tracked unit of work that belongs to exactly one project
type Issue struct {
	ID           string      `json:"id" gorm:"primaryKey;type:uuid"`
	Title        string      `json:"title" gorm:"not null;size:200"`
	Description  string      `json:"description"`
	Status       IssueStatus `json:"status" gorm:"type:varchar(20);default:'Open';index"`
	Priority     Priority    `json:"priority" gorm:"type:varchar(20);default:'Medium';index"`
	Type         IssueType   `json:"type" gorm:"type:varchar(20);default:'Bug';index"`
	ProjectID    string      `json:"project" gorm:"type:uuid;not null;index"`
	CreatedByID  string      `json:"createdBy" gorm:"type:uuid;not null;index"`
	AssignedToID *string     `json:"assignedTo" gorm:"type:uuid;index"`
	DueDate      *time.Time  `json:"dueDate"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	// Relations
	Project    *Project `json:"-" gorm:"foreignKey:ProjectID"`
	CreatedBy  *User    `json:"-" gorm:"foreignKey:CreatedByID"`
	AssignedTo *User    `json:"-" gorm:"foreignKey:AssignedToID"`
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = IssueStatusOpen
	}
	if i.Priority == "" {
		i.Priority = PriorityMedium
	}
	if i.Type == "" {
		i.Type = IssueTypeBug
	}
	return nil
}

// IsAssignedTo reports whether userID is the current assignee
func (i *Issue) IsAssignedTo(userID string) bool {
	return i.AssignedToID != nil && *i.AssignedToID == userID
}
