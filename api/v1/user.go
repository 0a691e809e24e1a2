package v1

import (
	"net/http"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/utils"
	"github.com/gin-gonic/gin"
)

// ListUsers pages through every account. Admin only.
func (h *Handler) ListUsers(c *gin.Context) {
	response, err := h.Users.ListUsers(c.Request.Context(), pagination(c))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, response)
}

// GetUser returns the public profile of a user
func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := h.pathID(c, "id", "user id")
	if !ok {
		return
	}

	user, err := h.Users.GetUser(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, dto.NewUserResponse(user))
}
