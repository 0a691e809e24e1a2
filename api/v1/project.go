package v1

import (
	"net/http"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/middleware"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/utils"
	"github.com/gin-gonic/gin"
)

// ListProjects godoc
// @Summary List projects with pagination and filtering
// @Description Get all projects for admin, or only the projects a user created or belongs to
// @Tags projects
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search term for project name/description"
// @Param status query string false "Project status"
// @Param sortBy query string false "Field to sort by (createdAt, updatedAt, name, priority, status)"
// @Param sortOrder query string false "Sort order (asc or desc)"
// @Success 200 {object} dto.ProjectListResponse
// @Router /projects [get]
func (h *Handler) ListProjects(c *gin.Context) {
	filter := dto.ProjectFilter{
		Pagination: pagination(c),
		Search:     c.Query("search"),
		Status:     models.ProjectStatus(c.Query("status")),
		SortBy:     c.DefaultQuery("sortBy", "createdAt"),
		SortOrder:  c.DefaultQuery("sortOrder", "desc"),
	}

	response, err := h.Projects.ListProjects(c.Request.Context(), middleware.CurrentIdentity(c), filter)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, response)
}

// GetProject godoc
// @Summary Get a project by ID
// @Description Get details of a project the caller created or belongs to
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [get]
func (h *Handler) GetProject(c *gin.Context) {
	projectID, ok := h.pathID(c, "id", "project id")
	if !ok {
		return
	}

	project, err := h.Projects.GetProject(c.Request.Context(), middleware.CurrentIdentity(c), projectID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, dto.NewProjectResponse(project))
}

// CreateProject godoc
// @Summary Create a new project
// @Description Create a new project for the authenticated user
// @Tags projects
// @Accept json
// @Produce json
// @Param project body dto.CreateProjectRequest true "Project Data"
// @Success 201 {object} dto.ProjectResponse
// @Router /projects [post]
func (h *Handler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	project, err := h.Projects.CreateProject(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, dto.NewProjectResponse(project))
}

// UpdateProject godoc
// @Summary Update a project
// @Description Update an existing project; only the creator or an admin may do so
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param project body dto.UpdateProjectRequest true "Project Data"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [put]
func (h *Handler) UpdateProject(c *gin.Context) {
	projectID, ok := h.pathID(c, "id", "project id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	project, err := h.Projects.UpdateProject(c.Request.Context(), middleware.CurrentIdentity(c), projectID, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, dto.NewProjectResponse(project))
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Delete a project together with its issues and their comments
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} dto.CascadeResult
// @Router /projects/{id} [delete]
func (h *Handler) DeleteProject(c *gin.Context) {
	projectID, ok := h.pathID(c, "id", "project id")
	if !ok {
		return
	}

	result, err := h.Projects.DeleteProject(c.Request.Context(), middleware.CurrentIdentity(c), projectID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, result)
}

// AddMember godoc
// @Summary Add or update a project member
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param member body dto.MemberRequest true "Membership"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id}/members [post]
func (h *Handler) AddMember(c *gin.Context) {
	projectID, ok := h.pathID(c, "id", "project id")
	if !ok {
		return
	}

	var req dto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	project, err := h.Projects.AddMember(c.Request.Context(), middleware.CurrentIdentity(c), projectID, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, dto.NewProjectResponse(project))
}

// RemoveMember godoc
// @Summary Remove a project member
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Param userId path string true "User ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	projectID, ok := h.pathID(c, "id", "project id")
	if !ok {
		return
	}
	userID, ok := h.pathID(c, "userId", "user id")
	if !ok {
		return
	}

	project, err := h.Projects.RemoveMember(c.Request.Context(), middleware.CurrentIdentity(c), projectID, userID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, dto.NewProjectResponse(project))
}
