package repositories

import (
	"context"
	"time"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"gorm.io/gorm"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository instance
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *CommentRepository) WithTx(tx *gorm.DB) *CommentRepository {
	return &CommentRepository{db: tx}
}

// Create inserts a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translateError(r.db.WithContext(ctx).Omit("Author").Create(comment).Error, "Comment", comment.IssueID)
}

// FindByID retrieves a comment with its author populated
func (r *CommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error
	return comment, translateError(err, "Comment", id)
}

// FindByIssue lists the comments of an issue, oldest first
func (r *CommentRepository) FindByIssue(ctx context.Context, issueID string, page dto.Pagination) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Comment{}).Where("issue_id = ?", issueID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "Comment", issueID)
	}
	err := db.Preload("Author").Order("created_at asc").Order("id asc").
		Limit(page.Limit).Offset(page.Offset()).Find(&comments).Error
	return comments, total, translateError(err, "Comment", issueID)
}

// UpdateContent rewrites the text of a comment
func (r *CommentRepository) UpdateContent(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", comment.ID).
		Updates(map[string]interface{}{"content": comment.Content, "updated_at": comment.UpdatedAt})
	if res.Error != nil {
		return translateError(res.Error, "Comment", comment.ID)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Comment", comment.ID)
	}
	return nil
}

// IDsByIssues lists the ids of every comment on the given issues
func (r *CommentRepository) IDsByIssues(ctx context.Context, issueIDs []string) ([]string, error) {
	if len(issueIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("issue_id IN ?", issueIDs).Order("id").Pluck("id", &ids).Error
	return ids, translateError(err, "Comment", "")
}

// CountByIssue counts comments on an issue
func (r *CommentRepository) CountByIssue(ctx context.Context, issueID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("issue_id = ?", issueID).Count(&count).Error
	return count, translateError(err, "Comment", issueID)
}

// DeleteByIDs removes the listed comments
func (r *CommentRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Comment{})
	return res.RowsAffected, translateError(res.Error, "Comment", "")
}

// Delete removes one comment row; NotFound when nothing was deleted
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return translateError(res.Error, "Comment", id)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Comment", id)
	}
	return nil
}
