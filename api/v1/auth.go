package v1

import (
	"net/http"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/middleware"
	"github.com/bugtracker-api/utils"
	"github.com/gin-gonic/gin"
)

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest

	// Parse request body
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles user authentication
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest

	// Parse request body
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	authResponse, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	// Set token as HttpOnly cookie for the lifetime of the token
	middleware.SetSessionCookie(c, h.Cookies, authResponse.Token, int(h.TokenTTL.Seconds()))

	// Also return token in response body for clients that prefer Bearer auth
	utils.RespondSuccess(c, http.StatusOK, authResponse)
}

// GetCurrentUser returns the currently authenticated user's profile
func (h *Handler) GetCurrentUser(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	user, err := h.Users.GetUser(c.Request.Context(), identity.ID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, dto.NewUserResponse(user))
}
