package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/policy"
	"github.com/bugtracker-api/repositories"
	"gorm.io/gorm"
)

// CommentService handles business logic for comments
type CommentService struct {
	db       *gorm.DB
	comments *repositories.CommentRepository
	issues   *IssueService
	policy   *policy.Policy
}

// NewCommentService creates a new comment service instance. Issue lookups go
// through the issue service so the same project snapshot feeds the policy.
func NewCommentService(db *gorm.DB, comments *repositories.CommentRepository, issues *IssueService, p *policy.Policy) *CommentService {
	return &CommentService{db: db, comments: comments, issues: issues, policy: p}
}

// ListComments returns the comments of an issue, oldest first
func (s *CommentService) ListComments(ctx context.Context, id *dto.Identity, issueID string, page dto.Pagination) ([]models.Comment, int64, error) {
	page.Normalize()
	_, res, err := s.issues.load(ctx, issueID)
	if err != nil {
		return nil, 0, err
	}
	if err := authorize(s.policy, id, policy.ViewIssue, res); err != nil {
		return nil, 0, err
	}
	return s.comments.FindByIssue(ctx, issueID, page)
}

// CreateComment adds a comment to an existing issue
func (s *CommentService) CreateComment(ctx context.Context, id *dto.Identity, issueID string, req dto.CommentRequest) (models.Comment, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return models.Comment{}, err
	}

	_, res, err := s.issues.load(ctx, issueID)
	if err != nil {
		return models.Comment{}, err
	}
	if err := authorize(s.policy, id, policy.CreateComment, res); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{Content: content, IssueID: issueID, AuthorID: id.ID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.issues.issues.WithTx(tx).Lock(ctx, issueID); err != nil {
			return err
		}
		return s.comments.WithTx(tx).Create(ctx, &comment)
	})
	if err != nil {
		return models.Comment{}, err
	}
	return s.comments.FindByID(ctx, comment.ID)
}

// UpdateComment edits the text of a comment. Only its author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, id *dto.Identity, commentID string, req dto.CommentRequest) (models.Comment, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return models.Comment{}, err
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if err := authorize(s.policy, id, policy.UpdateComment, policy.Resource{Comment: &comment}); err != nil {
		return models.Comment{}, err
	}

	comment.Content = content
	if err := s.comments.UpdateContent(ctx, &comment); err != nil {
		return models.Comment{}, err
	}
	return s.comments.FindByID(ctx, comment.ID)
}

// DeleteComment removes a comment. Only its author may delete.
func (s *CommentService) DeleteComment(ctx context.Context, id *dto.Identity, commentID string) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := authorize(s.policy, id, policy.DeleteComment, policy.Resource{Comment: &comment}); err != nil {
		return err
	}
	return s.comments.Delete(ctx, comment.ID)
}

func validateContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", apperrors.Validation("comment content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return "", apperrors.Validation("comment cannot exceed 1000 characters")
	}
	return content, nil
}
