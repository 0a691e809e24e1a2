package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/policy"
	"github.com/bugtracker-api/repositories"
	"github.com/bugtracker-api/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IssueService handles business logic for issues
type IssueService struct {
	db       *gorm.DB
	issues   *repositories.IssueRepository
	projects *repositories.ProjectRepository
	users    *repositories.UserRepository
	cascade  *CascadeManager
	policy   *policy.Policy
	strict   bool
	log      *logrus.Logger
}

// NewIssueService creates a new issue service instance. strict scopes issue
// listings to the caller's projects, mirroring the strict policy table.
func NewIssueService(
	db *gorm.DB,
	issues *repositories.IssueRepository,
	projects *repositories.ProjectRepository,
	users *repositories.UserRepository,
	cascade *CascadeManager,
	p *policy.Policy,
	strict bool,
	log *logrus.Logger,
) *IssueService {
	return &IssueService{
		db:       db,
		issues:   issues,
		projects: projects,
		users:    users,
		cascade:  cascade,
		policy:   p,
		strict:   strict,
		log:      log,
	}
}

// ListIssues filters, sorts and pages issues
func (s *IssueService) ListIssues(ctx context.Context, id *dto.Identity, filter dto.IssueFilter) (dto.IssueListResponse, error) {
	filter.Normalize()

	if err := validateIssueFilter(filter); err != nil {
		return dto.IssueListResponse{}, err
	}

	switch {
	case filter.ProjectID != "" && s.strict:
		if err := s.authorizeProject(ctx, id, filter.ProjectID); err != nil {
			return dto.IssueListResponse{}, err
		}
	case s.strict && !id.IsAdmin():
		filter.VisibleTo = id.ID
	}

	return s.find(ctx, filter)
}

// ListProjectIssues lists the issues of one project. Unlike the project
// filter on ListIssues, a missing project is NotFound.
func (s *IssueService) ListProjectIssues(ctx context.Context, id *dto.Identity, projectID string, filter dto.IssueFilter) (dto.IssueListResponse, error) {
	filter.ProjectID = projectID
	filter.Normalize()

	if err := validateIssueFilter(filter); err != nil {
		return dto.IssueListResponse{}, err
	}
	if err := s.authorizeProject(ctx, id, projectID); err != nil {
		return dto.IssueListResponse{}, err
	}
	return s.find(ctx, filter)
}

func (s *IssueService) authorizeProject(ctx context.Context, id *dto.Identity, projectID string) error {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	return authorize(s.policy, id, policy.ViewIssue, policy.Resource{Project: &project})
}

func (s *IssueService) find(ctx context.Context, filter dto.IssueFilter) (dto.IssueListResponse, error) {
	issues, total, err := s.issues.Find(ctx, filter)
	if err != nil {
		return dto.IssueListResponse{}, err
	}

	response := dto.IssueListResponse{
		Issues:     make([]dto.IssueResponse, 0, len(issues)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: filter.TotalPages(total),
	}
	for _, issue := range issues {
		response.Issues = append(response.Issues, dto.NewIssueResponse(issue))
	}
	return response, nil
}

// GetIssue retrieves a single issue
func (s *IssueService) GetIssue(ctx context.Context, id *dto.Identity, issueID string) (models.Issue, error) {
	issue, res, err := s.load(ctx, issueID)
	if err != nil {
		return models.Issue{}, err
	}
	if err := authorize(s.policy, id, policy.ViewIssue, res); err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

// CreateIssue files a new issue in an existing project
func (s *IssueService) CreateIssue(ctx context.Context, id *dto.Identity, req dto.CreateIssueRequest) (models.Issue, error) {
	if err := utils.ValidateID("project id", req.Project); err != nil {
		return models.Issue{}, err
	}

	issue := models.Issue{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		Type:         req.Type,
		ProjectID:    req.Project,
		CreatedByID:  id.ID,
		AssignedToID: req.AssignedTo,
		DueDate:      req.DueDate,
	}
	if issue.Status == "" {
		issue.Status = models.IssueStatusOpen
	}
	if issue.Priority == "" {
		issue.Priority = models.PriorityMedium
	}
	if issue.Type == "" {
		issue.Type = models.IssueTypeBug
	}
	if err := validateIssue(issue); err != nil {
		return models.Issue{}, err
	}

	project, err := s.projects.FindByID(ctx, req.Project)
	if err != nil {
		return models.Issue{}, err
	}
	if err := authorize(s.policy, id, policy.CreateIssue, policy.Resource{Project: &project}); err != nil {
		return models.Issue{}, err
	}
	if err := s.checkAssignee(ctx, issue.AssignedToID); err != nil {
		return models.Issue{}, err
	}

	// The project row stays locked until the insert commits, so a concurrent
	// cascade either sees the new issue or runs first and leaves us NotFound.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.projects.WithTx(tx).Lock(ctx, req.Project); err != nil {
			return err
		}
		return s.issues.WithTx(tx).Create(ctx, &issue)
	})
	if err != nil {
		return models.Issue{}, err
	}

	s.log.WithFields(logrus.Fields{"issueId": issue.ID, "projectId": issue.ProjectID, "userId": id.ID}).Info("Issue created")
	return s.issues.FindByID(ctx, issue.ID)
}

// UpdateIssue applies a partial update
func (s *IssueService) UpdateIssue(ctx context.Context, id *dto.Identity, issueID string, req dto.UpdateIssueRequest) (models.Issue, error) {
	issue, res, err := s.load(ctx, issueID)
	if err != nil {
		return models.Issue{}, err
	}
	if err := authorize(s.policy, id, policy.UpdateIssue, res); err != nil {
		return models.Issue{}, err
	}

	if req.Title != nil {
		issue.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.Status != nil {
		issue.Status = *req.Status
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
	if req.Type != nil {
		issue.Type = *req.Type
	}
	if req.ClearAssignee {
		issue.AssignedToID = nil
	} else if req.AssignedTo != nil {
		issue.AssignedToID = req.AssignedTo
	}
	if req.ClearDueDate {
		issue.DueDate = nil
	} else if req.DueDate != nil {
		issue.DueDate = req.DueDate
	}

	if err := validateIssue(issue); err != nil {
		return models.Issue{}, err
	}
	if req.AssignedTo != nil && !req.ClearAssignee {
		if err := s.checkAssignee(ctx, issue.AssignedToID); err != nil {
			return models.Issue{}, err
		}
	}

	if err := s.issues.Update(ctx, &issue); err != nil {
		return models.Issue{}, err
	}
	return s.issues.FindByID(ctx, issue.ID)
}

// DeleteIssue removes an issue and its comments. Only the creator may delete.
func (s *IssueService) DeleteIssue(ctx context.Context, id *dto.Identity, issueID string) (*dto.CascadeResult, error) {
	_, res, err := s.load(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.policy, id, policy.DeleteIssue, res); err != nil {
		return nil, err
	}
	return s.cascade.DeleteIssue(ctx, issueID)
}

// load fetches an issue plus the project snapshot the policy needs
func (s *IssueService) load(ctx context.Context, issueID string) (models.Issue, policy.Resource, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return models.Issue{}, policy.Resource{}, err
	}
	res := policy.Resource{Issue: &issue}

	project, err := s.projects.FindByID(ctx, issue.ProjectID)
	switch {
	case err == nil:
		res.Project = &project
	case !apperrors.Is(err, apperrors.KindNotFound):
		return models.Issue{}, policy.Resource{}, err
	}
	return issue, res, nil
}

func (s *IssueService) checkAssignee(ctx context.Context, assignee *string) error {
	if assignee == nil {
		return nil
	}
	if err := utils.ValidateID("assignee id", *assignee); err != nil {
		return err
	}
	_, err := s.users.FindByID(ctx, *assignee)
	return err
}

func validateIssue(i models.Issue) error {
	if i.Title == "" {
		return apperrors.Validation("issue title is required")
	}
	if len(i.Title) > 200 {
		return apperrors.Validation("issue title cannot exceed 200 characters")
	}
	if !i.Status.IsValid() {
		return apperrors.Validation(fmt.Sprintf("invalid issue status: %s", i.Status))
	}
	if !i.Priority.IsValid() {
		return apperrors.Validation(fmt.Sprintf("invalid issue priority: %s", i.Priority))
	}
	if !i.Type.IsValid() {
		return apperrors.Validation(fmt.Sprintf("invalid issue type: %s", i.Type))
	}
	return nil
}

func validateIssueFilter(f dto.IssueFilter) error {
	if f.ProjectID != "" {
		if err := utils.ValidateID("project id", f.ProjectID); err != nil {
			return err
		}
	}
	if f.AssignedTo != "" {
		if err := utils.ValidateID("assignee id", f.AssignedTo); err != nil {
			return err
		}
	}
	if f.Status != "" && !f.Status.IsValid() {
		return apperrors.Validation(fmt.Sprintf("invalid issue status: %s", f.Status))
	}
	if f.Priority != "" && !f.Priority.IsValid() {
		return apperrors.Validation(fmt.Sprintf("invalid issue priority: %s", f.Priority))
	}
	if f.Type != "" && !f.Type.IsValid() {
		return apperrors.Validation(fmt.Sprintf("invalid issue type: %s", f.Type))
	}
	return nil
}
