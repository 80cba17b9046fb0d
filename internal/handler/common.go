package handler

import (
	"github.com/gin-gonic/gin"

	"autoshop/pkg/apperror"
	"autoshop/pkg/response"
)

// fail maps a service error onto the standard error envelope.
func fail(c *gin.Context, err error) {
	status := apperror.Status(err)
	c.JSON(status, response.Error(status, apperror.Message(err)))
}

// ListResponse wraps paginated collections.
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
