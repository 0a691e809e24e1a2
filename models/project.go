package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusCompleted ProjectStatus = "Completed"
	ProjectStatusOnHold    ProjectStatus = "On Hold"
	ProjectStatusArchived  ProjectStatus = "Archived"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusArchived:
		return true
	}
	return false
}

// Priority is shared by projects and issues
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// MemberRole is the role a user holds inside a single project
type MemberRole string

const (
	MemberRoleDeveloper MemberRole = "developer"
	MemberRoleQA        MemberRole = "qa"
	MemberRoleManager   MemberRole = "manager"
)

func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleDeveloper, MemberRoleQA, MemberRoleManager:
		return true
	}
	return false
}

// Project represents a container of issues
type Project struct {
	ID          string        `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string        `json:"name" gorm:"not null;size:100"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);default:'Active'"`
	Priority    Priority      `json:"priority" gorm:"type:varchar(20);default:'Medium'"`
	CreatedByID string        `json:"createdBy" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Relations
	CreatedBy *User           `json:"-" gorm:"foreignKey:CreatedByID"`
	Members   []ProjectMember `json:"members" gorm:"foreignKey:ProjectID"`
}

// BeforeCreate assigns a UUID and the default enum values
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	return nil
}

// HasMember reports whether userID appears in the member list
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberRoleOf returns the role userID holds in the project, if any
func (p *Project) MemberRoleOf(userID string) (MemberRole, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// EnsureCreatorMember keeps the creator in the member list, adding them as manager when missing
func (p *Project) EnsureCreatorMember() {
	if p.CreatedByID == "" || p.HasMember(p.CreatedByID) {
		return
	}
	p.Members = append(p.Members, ProjectMember{
		ProjectID: p.ID,
		UserID:    p.CreatedByID,
		Role:      MemberRoleManager,
	})
}

// ProjectMember pairs a user with a project role. Position keeps the list ordered.
type ProjectMember struct {
	ID        uint       `json:"-" gorm:"primaryKey;autoIncrement"`
	ProjectID string     `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_project_member"`
	UserID    string     `json:"user" gorm:"type:uuid;not null;uniqueIndex:idx_project_member"`
	Role      MemberRole `json:"role" gorm:"type:varchar(20);not null"`
	Position  int        `json:"-" gorm:"not null;default:0"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}
