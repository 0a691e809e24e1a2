package v1

import (
	"net/http"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/middleware"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/utils"
	"github.com/gin-gonic/gin"
)

func issueFilter(c *gin.Context) dto.IssueFilter {
	return dto.IssueFilter{
		Pagination: pagination(c),
		ProjectID:  c.Query("project"),
		Status:     models.IssueStatus(c.Query("status")),
		Priority:   models.Priority(c.Query("priority")),
		Type:       models.IssueType(c.Query("type")),
		AssignedTo: c.Query("assignedTo"),
		Search:     c.Query("search"),
		SortBy:     c.DefaultQuery("sortBy", "createdAt"),
		Order:      c.DefaultQuery("order", "desc"),
	}
}

// ListIssues godoc
// @Summary List issues with pagination and filtering
// @Description Get issues matching the query filters. An unknown project filter yields an empty page
// @Tags issues
// @Produce json
// @Param project query string false "Project ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Issue status"
// @Param priority query string false "Issue priority"
// @Param type query string false "Issue type"
// @Param assignedTo query string false "Assignee user ID"
// @Param search query string false "Search term for issue title/description"
// @Param sortBy query string false "Field to sort by (createdAt, updatedAt, title, priority, status, type, dueDate)"
// @Param order query string false "Sort order (asc or desc)"
// @Success 200 {object} dto.IssueListResponse
// @Router /issues [get]
func (h *Handler) ListIssues(c *gin.Context) {
	response, err := h.Issues.ListIssues(c.Request.Context(), middleware.CurrentIdentity(c), issueFilter(c))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, response)
}

// ListProjectIssues godoc
// @Summary List the issues of a project
// @Description Same filters as ListIssues, scoped to the project in the path
// @Tags issues
// @Produce json
// @Param id path string true "Project ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Issue status"
// @Param priority query string false "Issue priority"
// @Param type query string false "Issue type"
// @Param assignedTo query string false "Assignee user ID"
// @Param search query string false "Search term for issue title/description"
// @Param sortBy query string false "Field to sort by (createdAt, updatedAt, title, priority, status, type, dueDate)"
// @Param order query string false "Sort order (asc or desc)"
// @Success 200 {object} dto.IssueListResponse
// @Router /projects/{id}/issues [get]
func (h *Handler) ListProjectIssues(c *gin.Context) {
	projectID, ok := h.pathID(c, "id", "project id")
	if !ok {
		return
	}

	response, err := h.Issues.ListProjectIssues(c.Request.Context(), middleware.CurrentIdentity(c), projectID, issueFilter(c))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, response)
}

// GetIssue godoc
// @Summary Get an issue by ID
// @Tags issues
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} dto.IssueResponse
// @Router /issues/{id} [get]
func (h *Handler) GetIssue(c *gin.Context) {
	issueID, ok := h.pathID(c, "id", "issue id")
	if !ok {
		return
	}

	issue, err := h.Issues.GetIssue(c.Request.Context(), middleware.CurrentIdentity(c), issueID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, dto.NewIssueResponse(issue))
}

// CreateIssue godoc
// @Summary Create a new issue
// @Description File an issue in an existing project. Status, priority and type get defaults when omitted
// @Tags issues
// @Accept json
// @Produce json
// @Param issue body dto.CreateIssueRequest true "Issue data"
// @Success 201 {object} dto.IssueResponse
// @Router /issues [post]
func (h *Handler) CreateIssue(c *gin.Context) {
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	issue, err := h.Issues.CreateIssue(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, dto.NewIssueResponse(issue))
}

// UpdateIssue godoc
// @Summary Update an issue
// @Description Partial update; only the fields present in the body change
// @Tags issues
// @Accept json
// @Produce json
// @Param id path string true "Issue ID"
// @Param issue body dto.UpdateIssueRequest true "Fields to update"
// @Success 200 {object} dto.IssueResponse
// @Router /issues/{id} [put]
func (h *Handler) UpdateIssue(c *gin.Context) {
	issueID, ok := h.pathID(c, "id", "issue id")
	if !ok {
		return
	}

	var req dto.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	issue, err := h.Issues.UpdateIssue(c.Request.Context(), middleware.CurrentIdentity(c), issueID, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, dto.NewIssueResponse(issue))
}

// DeleteIssue godoc
// @Summary Delete an issue
// @Description Delete an issue and its comments. Only the creator may delete
// @Tags issues
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} dto.CascadeResult
// @Router /issues/{id} [delete]
func (h *Handler) DeleteIssue(c *gin.Context) {
	issueID, ok := h.pathID(c, "id", "issue id")
	if !ok {
		return
	}

	result, err := h.Issues.DeleteIssue(c.Request.Context(), middleware.CurrentIdentity(c), issueID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}
