package repositories

import (
	"context"
	"time"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var projectSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"status":    "status",
	"priority":  "priority",
}

// ProjectRepository handles database operations for projects and their members
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

func (r *ProjectRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc").Order("id asc")
		}).
		Preload("Members.User")
}

// Create inserts a project together with its member list
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	for i := range project.Members {
		project.Members[i].Position = i
	}
	return translateError(r.db.WithContext(ctx).Create(project).Error, "Project", project.Name)
}

// FindByID retrieves a project with creator and members populated
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (models.Project, error) {
	var project models.Project
	err := r.preloaded(ctx).First(&project, "id = ?", id).Error
	return project, translateError(err, "Project", id)
}

// Exists reports whether a project id resolves
func (r *ProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translateError(err, "Project", id)
}

// Lock takes a row lock on the project for the surrounding transaction.
// NotFound when the project no longer exists.
func (r *ProjectRepository) Lock(ctx context.Context, id string) error {
	var project models.Project
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").First(&project, "id = ?", id).Error
	return translateError(err, "Project", id)
}

// FindWithPagination retrieves projects with pagination, filtering and sorting.
// Non-admin callers only see projects they created or are members of.
func (r *ProjectRepository) FindWithPagination(ctx context.Context, filter dto.ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&models.Project{})

	if !filter.IsAdmin {
		memberOf := r.db.WithContext(ctx).Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", filter.UserID)
		db = db.Where("created_by_id = ? OR id IN (?)", filter.UserID, memberOf)
	}

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, translateError(err, "Project", "")
	}

	db = orderBy(db, projectSortColumns, filter.SortBy, filter.SortOrder)
	err := db.Preload("CreatedBy").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc").Order("id asc")
		}).
		Preload("Members.User").
		Limit(filter.Limit).Offset(filter.Offset()).Find(&projects).Error
	if err != nil {
		return nil, 0, translateError(err, "Project", "")
	}

	return projects, totalCount, nil
}

// Update writes the scalar fields of project
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", project.ID).
		Select("name", "description", "status", "priority", "updated_at").
		Updates(map[string]interface{}{
			"name":        project.Name,
			"description": project.Description,
			"status":      project.Status,
			"priority":    project.Priority,
			"updated_at":  project.UpdatedAt,
		})
	if res.Error != nil {
		return translateError(res.Error, "Project", project.ID)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Project", project.ID)
	}
	return nil
}

// ReplaceMembers swaps the whole member list, keeping the given order
func (r *ProjectRepository) ReplaceMembers(ctx context.Context, projectID string, members []models.ProjectMember) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
		return translateError(err, "Project member", projectID)
	}
	if len(members) == 0 {
		return nil
	}
	rows := make([]models.ProjectMember, len(members))
	for i, m := range members {
		rows[i] = models.ProjectMember{ProjectID: projectID, UserID: m.UserID, Role: m.Role, Position: i}
	}
	return translateError(db.Omit(clause.Associations).Create(&rows).Error, "Project member", projectID)
}

// UpsertMember appends a member or changes the role of an existing one
func (r *ProjectRepository) UpsertMember(ctx context.Context, projectID, userID string, role models.MemberRole) error {
	db := r.db.WithContext(ctx)

	res := db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if res.Error != nil {
		return translateError(res.Error, "Project member", userID)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var maxPosition struct{ Max *int }
	if err := db.Model(&models.ProjectMember{}).Select("MAX(position) AS max").
		Where("project_id = ?", projectID).Scan(&maxPosition).Error; err != nil {
		return translateError(err, "Project member", userID)
	}
	position := 0
	if maxPosition.Max != nil {
		position = *maxPosition.Max + 1
	}

	member := models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role, Position: position}
	return translateError(db.Omit(clause.Associations).Create(&member).Error, "Project member", userID)
}

// RemoveMember deletes a single membership
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	res := r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.ProjectMember{})
	if res.Error != nil {
		return translateError(res.Error, "Project member", userID)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Project member", userID)
	}
	return nil
}

// DeleteMembers removes every membership of a project and returns how many were removed
func (r *ProjectRepository) DeleteMembers(ctx context.Context, projectID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectMember{})
	return res.RowsAffected, translateError(res.Error, "Project member", projectID)
}

// Delete removes a project row. It only succeeds for the caller that actually
// removed the row, so concurrent deletes of the same id see NotFound.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{})
	if res.Error != nil {
		return translateError(res.Error, "Project", id)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Project", id)
	}
	return nil
}
