package v1

import (
	"net/http"

	"github.com/bugtracker-api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logout revokes the presented token and overwrites the session cookie.
// It always succeeds from the client's point of view.
func (h *Handler) Logout(c *gin.Context) {
	token := middleware.ExtractToken(c, h.Cookies.Name)
	if err := h.Auth.Logout(c.Request.Context(), token); err != nil {
		h.Log.WithFields(logrus.Fields{"path": c.Request.URL.Path}).WithError(err).Warn("Token revocation failed")
	}

	middleware.ClearSessionCookie(c, h.Cookies)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged out successfully",
	})
}
