package utils

import (
	"errors"
	"net/http"

	"github.com/bugtracker-api/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RespondSuccess writes the standard success envelope
func RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

// RespondError maps err to its HTTP status and writes the error envelope.
// Server-side failures are logged with their cause; the client only sees the message.
func RespondError(c *gin.Context, log *logrus.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(kind)

	body := gin.H{
		"status":  "error",
		"kind":    kind,
		"message": apperrors.MessageOf(err),
	}

	var cascadeErr *apperrors.CascadeError
	if errors.As(err, &cascadeErr) {
		body["partiallyDeleted"] = cascadeErr.PartiallyDeleted
		body["rolledBack"] = cascadeErr.RolledBack
		body["step"] = cascadeErr.Step
	}

	if status >= 500 && log != nil {
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"kind":   kind,
		}).WithError(err).Error("Request failed")
	}

	c.AbortWithStatusJSON(status, body)
}

// RespondBindError reports a request body that failed to bind
func RespondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"kind":    apperrors.KindValidation,
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
