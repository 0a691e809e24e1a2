package v1

import (
	"strconv"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/utils"
	"github.com/gin-gonic/gin"
)

// pathID reads and validates a UUID path parameter, writing a 400 on failure
func (h *Handler) pathID(c *gin.Context, param, name string) (string, bool) {
	id := c.Param(param)
	if err := utils.ValidateID(name, id); err != nil {
		utils.RespondError(c, h.Log, err)
		return "", false
	}
	return id, true
}

// pagination parses page and limit; malformed values fall back to the defaults
func pagination(c *gin.Context) dto.Pagination {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = dto.DefaultPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		limit = dto.DefaultLimit
	}
	p := dto.Pagination{Page: page, Limit: limit}
	p.Normalize()
	return p
}
