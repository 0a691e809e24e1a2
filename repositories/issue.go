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

var issueSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
	"type":      "type",
	"dueDate":   "due_date",
}

// IssueRepository handles database operations for issues
type IssueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new issue repository instance
func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *IssueRepository) WithTx(tx *gorm.DB) *IssueRepository {
	return &IssueRepository{db: tx}
}

func (r *IssueRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Project").Preload("CreatedBy").Preload("AssignedTo")
}

// Create inserts a new issue
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	return translateError(r.db.WithContext(ctx).Omit("Project", "CreatedBy", "AssignedTo").Create(issue).Error, "Issue", issue.Title)
}

// FindByID retrieves an issue with project, creator and assignee populated
func (r *IssueRepository) FindByID(ctx context.Context, id string) (models.Issue, error) {
	var issue models.Issue
	err := r.preloaded(ctx).First(&issue, "id = ?", id).Error
	return issue, translateError(err, "Issue", id)
}

// Find applies the list filter and returns one page plus the total match count
func (r *IssueRepository) Find(ctx context.Context, filter dto.IssueFilter) ([]models.Issue, int64, error) {
	var issues []models.Issue
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Issue{})

	if filter.ProjectID != "" {
		db = db.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		db = db.Where("priority = ?", filter.Priority)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.AssignedTo != "" {
		db = db.Where("assigned_to_id = ?", filter.AssignedTo)
	}
	if filter.VisibleTo != "" {
		owned := r.db.WithContext(ctx).Model(&models.Project{}).Select("id").Where("created_by_id = ?", filter.VisibleTo)
		memberOf := r.db.WithContext(ctx).Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", filter.VisibleTo)
		db = db.Where("(project_id IN (?) OR project_id IN (?))", owned, memberOf)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "Issue", "")
	}

	db = orderBy(db, issueSortColumns, filter.SortBy, filter.Order)
	err := db.Preload("Project").Preload("CreatedBy").Preload("AssignedTo").
		Limit(filter.Limit).Offset(filter.Offset()).Find(&issues).Error
	if err != nil {
		return nil, 0, translateError(err, "Issue", "")
	}
	return issues, total, nil
}

// Update writes every mutable field of issue, including cleared nullable ones
func (r *IssueRepository) Update(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Issue{}).Where("id = ?", issue.ID).
		Select("title", "description", "status", "priority", "type", "assigned_to_id", "due_date", "updated_at").
		Updates(map[string]interface{}{
			"title":          issue.Title,
			"description":    issue.Description,
			"status":         issue.Status,
			"priority":       issue.Priority,
			"type":           issue.Type,
			"assigned_to_id": issue.AssignedToID,
			"due_date":       issue.DueDate,
			"updated_at":     issue.UpdatedAt,
		})
	if res.Error != nil {
		return translateError(res.Error, "Issue", issue.ID)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Issue", issue.ID)
	}
	return nil
}

// IDsByProject lists the ids of every issue in a project and locks those rows
// until the surrounding transaction ends
func (r *IssueRepository) IDsByProject(ctx context.Context, projectID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Issue{}).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ?", projectID).Order("id").Pluck("id", &ids).Error
	return ids, translateError(err, "Issue", projectID)
}

// Lock takes a row lock on the issue for the surrounding transaction.
// NotFound when the issue no longer exists.
func (r *IssueRepository) Lock(ctx context.Context, id string) error {
	var issue models.Issue
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").First(&issue, "id = ?", id).Error
	return translateError(err, "Issue", id)
}

// CountByProject counts issues in a project
func (r *IssueRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Issue{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, translateError(err, "Issue", projectID)
}

// DeleteByIDs removes the listed issues
func (r *IssueRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Issue{})
	return res.RowsAffected, translateError(res.Error, "Issue", "")
}

// Delete removes one issue row; NotFound when nothing was deleted
func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Issue{})
	if res.Error != nil {
		return translateError(res.Error, "Issue", id)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Issue", id)
	}
	return nil
}
