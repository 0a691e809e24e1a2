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

// ProjectService handles business logic for projects
type ProjectService struct {
	db       *gorm.DB
	projects *repositories.ProjectRepository
	users    *repositories.UserRepository
	cascade  *CascadeManager
	policy   *policy.Policy
	log      *logrus.Logger
}

// NewProjectService creates a new project service instance
func NewProjectService(
	db *gorm.DB,
	projects *repositories.ProjectRepository,
	users *repositories.UserRepository,
	cascade *CascadeManager,
	p *policy.Policy,
	log *logrus.Logger,
) *ProjectService {
	return &ProjectService{
		db:       db,
		projects: projects,
		users:    users,
		cascade:  cascade,
		policy:   p,
		log:      log,
	}
}

// ListProjects retrieves projects with pagination, filtering and sorting.
// Admins see every project, everyone else the projects they created or belong to.
func (s *ProjectService) ListProjects(ctx context.Context, id *dto.Identity, filter dto.ProjectFilter) (dto.ProjectListResponse, error) {
	filter.Normalize()
	filter.UserID = id.ID
	filter.IsAdmin = id.IsAdmin()

	if filter.Status != "" && !filter.Status.IsValid() {
		return dto.ProjectListResponse{}, apperrors.Validation(fmt.Sprintf("invalid project status: %s", filter.Status))
	}

	projects, totalCount, err := s.projects.FindWithPagination(ctx, filter)
	if err != nil {
		return dto.ProjectListResponse{}, err
	}

	response := dto.ProjectListResponse{
		Projects:   make([]dto.ProjectResponse, 0, len(projects)),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: filter.TotalPages(totalCount),
	}
	for _, p := range projects {
		response.Projects = append(response.Projects, dto.NewProjectResponse(p))
	}
	return response, nil
}

// GetProject retrieves a project the caller may view
func (s *ProjectService) GetProject(ctx context.Context, id *dto.Identity, projectID string) (models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if err := authorize(s.policy, id, policy.ViewProject, policy.Resource{Project: &project}); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// CreateProject creates a project owned by the caller. The creator is always a member.
func (s *ProjectService) CreateProject(ctx context.Context, id *dto.Identity, req dto.CreateProjectRequest) (models.Project, error) {
	project := models.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedByID: id.ID,
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusActive
	}
	if project.Priority == "" {
		project.Priority = models.PriorityMedium
	}
	if err := validateProject(project); err != nil {
		return models.Project{}, err
	}

	members, err := s.resolveMembers(ctx, req.Members)
	if err != nil {
		return models.Project{}, err
	}
	project.Members = members
	project.EnsureCreatorMember()

	if err := s.projects.Create(ctx, &project); err != nil {
		return models.Project{}, err
	}

	s.log.WithFields(logrus.Fields{"projectId": project.ID, "userId": id.ID}).Info("Project created")
	return s.projects.FindByID(ctx, project.ID)
}

// UpdateProject applies a partial update. Only the creator or an admin may update.
func (s *ProjectService) UpdateProject(ctx context.Context, id *dto.Identity, projectID string, req dto.UpdateProjectRequest) (models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if err := authorize(s.policy, id, policy.UpdateProject, policy.Resource{Project: &project}); err != nil {
		return models.Project{}, err
	}

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Priority != nil {
		project.Priority = *req.Priority
	}
	if err := validateProject(project); err != nil {
		return models.Project{}, err
	}

	var members []models.ProjectMember
	if req.Members != nil {
		members, err = s.resolveMembers(ctx, *req.Members)
		if err != nil {
			return models.Project{}, err
		}
		project.Members = members
		project.EnsureCreatorMember()
		members = project.Members
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := s.projects.WithTx(tx)
		if err := projects.Update(ctx, &project); err != nil {
			return err
		}
		if req.Members != nil {
			return projects.ReplaceMembers(ctx, project.ID, members)
		}
		return nil
	})
	if err != nil {
		return models.Project{}, err
	}

	return s.projects.FindByID(ctx, project.ID)
}

// AddMember adds a user to the project or changes the role they hold
func (s *ProjectService) AddMember(ctx context.Context, id *dto.Identity, projectID string, req dto.MemberRequest) (models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if err := authorize(s.policy, id, policy.ManageMembers, policy.Resource{Project: &project}); err != nil {
		return models.Project{}, err
	}

	members, err := s.resolveMembers(ctx, []dto.MemberRequest{req})
	if err != nil {
		return models.Project{}, err
	}
	if err := s.projects.UpsertMember(ctx, project.ID, members[0].UserID, members[0].Role); err != nil {
		return models.Project{}, err
	}
	return s.projects.FindByID(ctx, project.ID)
}

// RemoveMember drops a membership. The creator cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, id *dto.Identity, projectID, userID string) (models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if err := authorize(s.policy, id, policy.ManageMembers, policy.Resource{Project: &project}); err != nil {
		return models.Project{}, err
	}
	if userID == project.CreatedByID {
		return models.Project{}, apperrors.Validation("the project creator cannot be removed from the project")
	}
	if err := s.projects.RemoveMember(ctx, project.ID, userID); err != nil {
		return models.Project{}, err
	}
	return s.projects.FindByID(ctx, project.ID)
}

// DeleteProject deletes a project together with its issues and their comments
func (s *ProjectService) DeleteProject(ctx context.Context, id *dto.Identity, projectID string) (*dto.CascadeResult, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.policy, id, policy.DeleteProject, policy.Resource{Project: &project}); err != nil {
		return nil, err
	}
	return s.cascade.DeleteProject(ctx, project.ID)
}

// resolveMembers validates requested memberships and checks the users exist
func (s *ProjectService) resolveMembers(ctx context.Context, reqs []dto.MemberRequest) ([]models.ProjectMember, error) {
	members := make([]models.ProjectMember, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	ids := make([]string, 0, len(reqs))

	for _, m := range reqs {
		if err := utils.ValidateID("member user id", m.User); err != nil {
			return nil, err
		}
		if !m.Role.IsValid() {
			return nil, apperrors.Validation(fmt.Sprintf("invalid member role: %s", m.Role))
		}
		if seen[m.User] {
			return nil, apperrors.Validation(fmt.Sprintf("user %s is listed more than once", m.User))
		}
		seen[m.User] = true
		ids = append(ids, m.User)
		members = append(members, models.ProjectMember{UserID: m.User, Role: m.Role})
	}

	if len(ids) > 0 {
		found, err := s.users.CountExisting(ctx, ids)
		if err != nil {
			return nil, err
		}
		if found != int64(len(ids)) {
			return nil, apperrors.New(apperrors.KindNotFound, "one or more member users were not found")
		}
	}
	return members, nil
}

func validateProject(p models.Project) error {
	if p.Name == "" {
		return apperrors.Validation("project name is required")
	}
	if len(p.Name) > 100 {
		return apperrors.Validation("project name cannot exceed 100 characters")
	}
	if !p.Status.IsValid() {
		return apperrors.Validation(fmt.Sprintf("invalid project status: %s", p.Status))
	}
	if !p.Priority.IsValid() {
		return apperrors.Validation(fmt.Sprintf("invalid project priority: %s", p.Priority))
	}
	return nil
}
