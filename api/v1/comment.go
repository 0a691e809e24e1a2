package v1

import (
	"net/http"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/middleware"
	"github.com/bugtracker-api/utils"
	"github.com/gin-gonic/gin"
)

// CommentListResponse is a page of an issue's comments, oldest first
type CommentListResponse struct {
	Comments   []dto.CommentResponse `json:"comments"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"totalPages"`
}

// ListComments godoc
// @Summary List the comments of an issue
// @Description Comments are returned oldest first
// @Tags comments
// @Produce json
// @Param id path string true "Issue ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} CommentListResponse
// @Router /issues/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	issueID, ok := h.pathID(c, "id", "issue id")
	if !ok {
		return
	}

	page := pagination(c)
	comments, total, err := h.Comments.ListComments(c.Request.Context(), middleware.CurrentIdentity(c), issueID, page)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	response := CommentListResponse{
		Comments:   make([]dto.CommentResponse, 0, len(comments)),
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}
	for _, comment := range comments {
		response.Comments = append(response.Comments, dto.NewCommentResponse(comment))
	}
	utils.RespondSuccess(c, http.StatusOK, response)
}

// CreateComment godoc
// @Summary Comment on an issue
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Issue ID"
// @Param comment body dto.CommentRequest true "Comment content"
// @Success 201 {object} dto.CommentResponse
// @Router /issues/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	issueID, ok := h.pathID(c, "id", "issue id")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	comment, err := h.Comments.CreateComment(c.Request.Context(), middleware.CurrentIdentity(c), issueID, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, dto.NewCommentResponse(comment))
}

// UpdateComment godoc
// @Summary Edit a comment
// @Description Only the author may edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param comment body dto.CommentRequest true "Comment content"
// @Success 200 {object} dto.CommentResponse
// @Router /comments/{id} [put]
func (h *Handler) UpdateComment(c *gin.Context) {
	commentID, ok := h.pathID(c, "id", "comment id")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	comment, err := h.Comments.UpdateComment(c.Request.Context(), middleware.CurrentIdentity(c), commentID, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, dto.NewCommentResponse(comment))
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Only the author may delete a comment
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} map[string]string
// @Router /comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	commentID, ok := h.pathID(c, "id", "comment id")
	if !ok {
		return
	}

	if err := h.Comments.DeleteComment(c.Request.Context(), middleware.CurrentIdentity(c), commentID); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Comment deleted",
	})
}
